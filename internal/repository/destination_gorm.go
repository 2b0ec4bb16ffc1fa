package repository

import (
	"context"

	"github.com/Domenick1991/airbook/internal/domain"
	"gorm.io/gorm"
)

type DestinationRepository interface {
	Store[domain.Destination]
	Search(ctx context.Context, filter domain.DestinationFilter) ([]domain.Destination, error)
}

type GormDestinationRepository struct {
	*GormStore[domain.Destination]
}

func NewDestinationRepository(db *gorm.DB) DestinationRepository {
	return &GormDestinationRepository{
		GormStore: NewGormStore[domain.Destination](db, "name ASC", "City", "Country", "Airport"),
	}
}

func (r *GormDestinationRepository) Search(ctx context.Context, filter domain.DestinationFilter) ([]domain.Destination, error) {
	q := r.query(ctx)
	if filter.CountryID != nil {
		q = q.Where("country_id = ?", *filter.CountryID)
	}
	if filter.PopularOnly {
		q = q.Where("is_popular = ?", true)
	}

	destinations := make([]domain.Destination, 0)
	if err := q.Order(r.order).Find(&destinations).Error; err != nil {
		return nil, translate(err)
	}
	return destinations, nil
}

var _ DestinationRepository = (*GormDestinationRepository)(nil)
