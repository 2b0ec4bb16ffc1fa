package repository

import (
	"context"

	"github.com/Domenick1991/airbook/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScheduleRepository interface {
	Store[domain.FlightSchedule]
	Search(ctx context.Context, filter domain.ScheduleFilter) ([]domain.FlightSchedule, error)
}

// GormScheduleRepository writes a schedule and its class rows in one transaction.
type GormScheduleRepository struct {
	*GormStore[domain.FlightSchedule]
}

func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &GormScheduleRepository{
		GormStore: NewGormStore[domain.FlightSchedule](db, "departure_time ASC",
			"Airline", "OriginAirport", "DestinationAirport", "Classes"),
	}
}

func (r *GormScheduleRepository) Search(ctx context.Context, filter domain.ScheduleFilter) ([]domain.FlightSchedule, error) {
	q := r.query(ctx)
	if filter.AirlineID != nil {
		q = q.Where("airline_id = ?", *filter.AirlineID)
	}
	if filter.OriginAirportID != nil {
		q = q.Where("origin_airport_id = ?", *filter.OriginAirportID)
	}
	if filter.DestinationAirportID != nil {
		q = q.Where("destination_airport_id = ?", *filter.DestinationAirportID)
	}
	if filter.DepartureFrom != nil {
		q = q.Where("departure_time >= ?", *filter.DepartureFrom)
	}
	if filter.DepartureTo != nil {
		q = q.Where("departure_time <= ?", *filter.DepartureTo)
	}

	schedules := make([]domain.FlightSchedule, 0)
	if err := q.Order(r.order).Find(&schedules).Error; err != nil {
		return nil, translate(err)
	}
	return schedules, nil
}

func (r *GormScheduleRepository) Create(ctx context.Context, s *domain.FlightSchedule) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(s).Error; err != nil {
			return err
		}
		return insertClasses(tx, s.ID, s.Classes)
	}))
}

// Update replaces the schedule row and all of its class rows.
func (r *GormScheduleRepository) Update(ctx context.Context, id int64, s *domain.FlightSchedule) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateRow(tx, id, s); err != nil {
			return err
		}
		if err := tx.Where("schedule_id = ?", id).Delete(&domain.ScheduleClass{}).Error; err != nil {
			return err
		}
		return insertClasses(tx, id, s.Classes)
	}))
}

func insertClasses(tx *gorm.DB, scheduleID int64, classes []domain.ScheduleClass) error {
	if len(classes) == 0 {
		return nil
	}
	for i := range classes {
		classes[i].ID = 0
		classes[i].ScheduleID = scheduleID
	}
	return tx.Create(&classes).Error
}

var _ ScheduleRepository = (*GormScheduleRepository)(nil)
