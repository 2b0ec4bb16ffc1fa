package catalog

import (
	"context"

	"github.com/Domenick1991/airbook/internal/apperr"
	"github.com/Domenick1991/airbook/internal/domain"
	"github.com/Domenick1991/airbook/internal/repository"
	"github.com/sirupsen/logrus"
)

type DestinationCache interface {
	GetDestinations(ctx context.Context, filter domain.DestinationFilter) ([]domain.Destination, error)
	SetDestinations(ctx context.Context, filter domain.DestinationFilter, destinations []domain.Destination) error
	InvalidateDestinations(ctx context.Context) error
}

type DestinationUseCase interface {
	CatalogUseCase[domain.Destination]
	Search(ctx context.Context, filter domain.DestinationFilter) ([]domain.Destination, error)
}

type DestinationService struct {
	*Resource[domain.Destination]
	repo  repository.DestinationRepository
	cache DestinationCache
	log   *logrus.Entry
}

// NewDestinationService serves listings through cache when it is not nil.
func NewDestinationService(repo repository.DestinationRepository, cache DestinationCache, log *logrus.Entry) *DestinationService {
	return &DestinationService{
		Resource: NewResource("destination", repository.Store[domain.Destination](repo),
			func(d *domain.Destination) int64 { return d.ID }, log,
			WithValidation(validateDestination),
			WithWriteHook[domain.Destination](invalidator(cache, log)),
		),
		repo:  repo,
		cache: cache,
		log:   log.WithField("resource", "destination"),
	}
}

// List is the unfiltered search so it shares the cache.
func (s *DestinationService) List(ctx context.Context) ([]domain.Destination, error) {
	return s.Search(ctx, domain.DestinationFilter{})
}

func (s *DestinationService) Search(ctx context.Context, filter domain.DestinationFilter) ([]domain.Destination, error) {
	if s.cache != nil {
		cached, err := s.cache.GetDestinations(ctx, filter)
		if err != nil {
			s.log.WithError(err).Warn("destination cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	destinations, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, apperr.Internal("failed to list destinations", err)
	}

	if s.cache != nil {
		if err := s.cache.SetDestinations(ctx, filter, destinations); err != nil {
			s.log.WithError(err).Warn("destination cache write failed")
		}
	}
	return destinations, nil
}

func invalidator(cache DestinationCache, log *logrus.Entry) func(ctx context.Context) {
	return func(ctx context.Context) {
		if cache == nil {
			return
		}
		if err := cache.InvalidateDestinations(ctx); err != nil {
			log.WithError(err).Warn("destination cache invalidation failed")
		}
	}
}

var _ DestinationUseCase = (*DestinationService)(nil)
