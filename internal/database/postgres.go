package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/airbook/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// NewGorm opens gorm on top of the pgx pool so both share one set of connections.
func NewGorm(pool *pgxpool.Pool, log *logrus.Entry) (*gorm.DB, error) {
	sqlDB := stdlib.OpenDBFromPool(pool)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&domain.Promotion{}, "Destinations", &domain.PromotionDestination{}); err != nil {
		return fmt.Errorf("setup promotion join table: %w", err)
	}

	if err := db.AutoMigrate(
		&domain.Country{},
		&domain.City{},
		&domain.Airport{},
		&domain.Airline{},
		&domain.Destination{},
		&domain.FlightSchedule{},
		&domain.ScheduleClass{},
		&domain.Promotion{},
		&domain.User{},
		&domain.Booking{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
