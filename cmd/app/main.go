package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/airbook/api"
	"github.com/Domenick1991/airbook/config"
	"github.com/Domenick1991/airbook/internal/auth"
	"github.com/Domenick1991/airbook/internal/bootstrap"
	"github.com/Domenick1991/airbook/internal/cache"
	"github.com/Domenick1991/airbook/internal/database"
	"github.com/Domenick1991/airbook/internal/kafka"
	"github.com/Domenick1991/airbook/internal/logger"
	"github.com/Domenick1991/airbook/internal/repository"
	"github.com/Domenick1991/airbook/internal/service/account"
	"github.com/Domenick1991/airbook/internal/service/booking"
	"github.com/Domenick1991/airbook/internal/service/catalog"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.New(logger.Config{Service: "airbook-api"}).WithError(err).Fatal("load config")
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: "airbook-api"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("api stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Entry) error {
	pool, err := database.NewPool(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	db, err := database.NewGorm(pool, log)
	if err != nil {
		return fmt.Errorf("open gorm: %w", err)
	}
	if cfg.Database.Migrate {
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("schema migrated")
	}

	checks := map[string]api.HealthCheck{"postgres": pool.Ping}

	var destinationCache catalog.DestinationCache
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.DestinationsCacheTTL)*time.Second)
		defer redisCache.Close()
		destinationCache = redisCache
		checks["redis"] = redisCache.Ping
	} else {
		log.Warn("redis not configured, destination cache disabled")
	}

	var producer booking.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers, log)
		defer kafkaProducer.Close()
		producer = kafkaProducer
	} else {
		log.Warn("kafka not configured, booking events disabled")
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL())

	userRepo := repository.NewUserRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	destinationRepo := repository.NewDestinationRepository(db)

	bookingService := booking.NewBookingService(
		bookingRepo,
		destinationRepo,
		producer,
		cfg.Kafka.BookingEventsTopic,
		log,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithReferenceAttempts(cfg.Booking.ReferenceAttempts),
	)
	accountService := account.NewAccountService(userRepo, tokens, log)

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.RouterConfig{
		Log:        log,
		Tokens:     tokens,
		SwaggerDir: cfg.HTTP.SwaggerDir,
		Checks:     checks,
	}, api.Handlers{
		Auth:         api.NewAuthHandler(accountService),
		Bookings:     api.NewBookingHandler(bookingService),
		Countries:    api.NewCatalogHandler("country", catalog.NewCountryService(repository.NewCountryStore(db), destinationCache, log)),
		Cities:       api.NewCatalogHandler("city", catalog.NewCityService(repository.NewCityStore(db), destinationCache, log)),
		Airports:     api.NewCatalogHandler("airport", catalog.NewAirportService(repository.NewAirportStore(db), destinationCache, log)),
		Airlines:     api.NewCatalogHandler("airline", catalog.NewAirlineService(repository.NewAirlineStore(db), log)),
		Destinations: api.NewDestinationHandler(catalog.NewDestinationService(destinationRepo, destinationCache, log)),
		Schedules:    api.NewScheduleHandler(catalog.NewScheduleService(repository.NewScheduleRepository(db), log)),
		Promotions:   api.NewPromotionHandler(catalog.NewPromotionService(repository.NewPromotionRepository(db), log)),
	})

	return bootstrap.Run(ctx, cfg.HTTP, router, log)
}
