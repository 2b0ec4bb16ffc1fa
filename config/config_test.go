package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
http:
  address: ":9090"
database:
  host: localhost
  port: 5432
  user: airbook
  password: secret
  name: airbook
auth:
  jwt_secret: from-file
kafka:
  brokers: ["localhost:9092"]
  booking_events_topic: bookings
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Address)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "host=localhost port=5432 user=airbook password=secret dbname=airbook sslmode=", cfg.Database.DSN())
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("http: [unclosed"))
	assert.Error(t, err)
}

func TestApplyEnvAndDefaults(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	env := map[string]string{
		"JWT_SECRET":    "from-env",
		"KAFKA_BROKERS": "k1:9092,k2:9092",
	}
	cfg.applyEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	cfg.applyDefaults()

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL())
	assert.Equal(t, 10, cfg.Booking.ReferenceAttempts)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.Validate())

	cfg.Auth.JWTSecret = "s"
	assert.Error(t, cfg.Validate())

	cfg.Database.Host = "db"
	cfg.Database.Name = "airbook"
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Auth.JWTSecret)
	assert.Equal(t, 15, cfg.Worker.CompletionSweepMinutes)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
