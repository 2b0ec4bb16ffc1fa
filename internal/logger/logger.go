package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type Config struct {
	Level   string
	Format  string
	Output  io.Writer
	Service string
}

// New builds the process logger. Unknown levels fall back to info.
func New(cfg Config) *logrus.Entry {
	log := logrus.New()

	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	log.SetOutput(cfg.Output)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	entry := logrus.NewEntry(log)
	if cfg.Service != "" {
		entry = entry.WithField("service", cfg.Service)
	}
	return entry
}

// Discard returns a logger that drops everything; used by tests.
func Discard() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}
