package catalog

import (
	"context"
	"time"

	"github.com/Domenick1991/airbook/internal/apperr"
	"github.com/Domenick1991/airbook/internal/domain"
	"github.com/Domenick1991/airbook/internal/repository"
	"github.com/sirupsen/logrus"
)

type PromotionUseCase interface {
	CatalogUseCase[domain.Promotion]
	Active(ctx context.Context) ([]domain.Promotion, error)
	SetDestinations(ctx context.Context, id int64, destinationIDs []int64) (*domain.Promotion, error)
}

type PromotionService struct {
	*Resource[domain.Promotion]
	repo repository.PromotionRepository
	now  func() time.Time
}

func NewPromotionService(repo repository.PromotionRepository, log *logrus.Entry) *PromotionService {
	return &PromotionService{
		Resource: NewResource("promotion", repository.Store[domain.Promotion](repo),
			func(p *domain.Promotion) int64 { return p.ID }, log,
			WithValidation(validatePromotion),
		),
		repo: repo,
		now:  time.Now,
	}
}

func (s *PromotionService) Active(ctx context.Context) ([]domain.Promotion, error) {
	promotions, err := s.repo.ListActive(ctx, s.now())
	if err != nil {
		return nil, apperr.Internal("failed to list active promotions", err)
	}
	return promotions, nil
}

// SetDestinations replaces the destinations a promotion applies to.
func (s *PromotionService) SetDestinations(ctx context.Context, id int64, destinationIDs []int64) (*domain.Promotion, error) {
	if err := s.repo.SetDestinations(ctx, id, destinationIDs); err != nil {
		return nil, s.storeError(err, false)
	}
	s.log.WithField("id", id).WithField("destinations", len(destinationIDs)).Info("promotion destinations replaced")
	return s.Get(ctx, id)
}

var _ PromotionUseCase = (*PromotionService)(nil)
