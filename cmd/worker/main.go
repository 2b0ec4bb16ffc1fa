package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Domenick1991/airbook/config"
	"github.com/Domenick1991/airbook/internal/database"
	"github.com/Domenick1991/airbook/internal/email"
	"github.com/Domenick1991/airbook/internal/kafka"
	"github.com/Domenick1991/airbook/internal/logger"
	"github.com/Domenick1991/airbook/internal/repository"
	"github.com/Domenick1991/airbook/internal/service/booking"
	"github.com/sirupsen/logrus"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.New(logger.Config{Service: "airbook-worker"}).WithError(err).Fatal("load config")
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: "airbook-worker"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("worker stopped")
	}
	log.Info("worker stopped")
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

	userRepo := repository.NewUserRepository(pool)

	var producer booking.Producer
	var wg sync.WaitGroup
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers, log)
		defer kafkaProducer.Close()
		producer = kafkaProducer

		topic := cfg.Kafka.NotificationsTopic
		if topic == "" {
			topic = cfg.Kafka.BookingEventsTopic
		}
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, topic, log.WithField("topic", topic))
		defer consumer.Close()

		sender := email.NewSender(userRepo, log.WithField("component", "email"))
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := consumer.Consume(ctx, func(ctx context.Context, event kafka.BookingEvent) error {
				if err := sender.Send(ctx, event); err != nil {
					log.WithError(err).WithField("booking_id", event.BookingID).Error("send notification")
				}
				return nil
			})
			if err != nil {
				log.WithError(err).Error("consumer stopped")
			}
		}()
	} else {
		log.Warn("kafka not configured, notifications disabled")
	}

	bookingService := booking.NewBookingService(
		repository.NewBookingRepository(pool),
		repository.NewDestinationRepository(db),
		producer,
		cfg.Kafka.BookingEventsTopic,
		log,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithReferenceAttempts(cfg.Booking.ReferenceAttempts),
	)

	sweep := func() {
		completed, err := bookingService.CompleteDepartedBookings(ctx)
		if err != nil {
			log.WithError(err).Error("complete departed bookings")
			return
		}
		if len(completed) > 0 {
			log.WithField("count", len(completed)).Info("bookings completed")
		}
	}

	ticker := time.NewTicker(time.Duration(cfg.Worker.CompletionSweepMinutes) * time.Minute)
	defer ticker.Stop()

	sweep()
	for {
		select {
		case <-ticker.C:
			sweep()
		case <-ctx.Done():
			log.Info("shutting down")
			wg.Wait()
			return nil
		}
	}
}
