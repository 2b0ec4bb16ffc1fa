package catalog

import (
	"context"

	"github.com/Domenick1991/airbook/internal/apperr"
	"github.com/Domenick1991/airbook/internal/domain"
	"github.com/Domenick1991/airbook/internal/repository"
	"github.com/sirupsen/logrus"
)

type ScheduleUseCase interface {
	CatalogUseCase[domain.FlightSchedule]
	Search(ctx context.Context, filter domain.ScheduleFilter) ([]domain.FlightSchedule, error)
}

type ScheduleService struct {
	*Resource[domain.FlightSchedule]
	repo repository.ScheduleRepository
}

func NewScheduleService(repo repository.ScheduleRepository, log *logrus.Entry) *ScheduleService {
	return &ScheduleService{
		Resource: NewResource("flight schedule", repository.Store[domain.FlightSchedule](repo),
			func(s *domain.FlightSchedule) int64 { return s.ID }, log,
			WithValidation(validateSchedule),
		),
		repo: repo,
	}
}

func (s *ScheduleService) Search(ctx context.Context, filter domain.ScheduleFilter) ([]domain.FlightSchedule, error) {
	if filter.DepartureFrom != nil && filter.DepartureTo != nil && filter.DepartureTo.Before(*filter.DepartureFrom) {
		return nil, apperr.InvalidInput("departureTo must not be before departureFrom")
	}
	schedules, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, apperr.Internal("failed to list flight schedules", err)
	}
	return schedules, nil
}

var _ ScheduleUseCase = (*ScheduleService)(nil)
