package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/airbook/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PromotionRepository interface {
	Store[domain.Promotion]
	ListActive(ctx context.Context, at time.Time) ([]domain.Promotion, error)
	SetDestinations(ctx context.Context, promotionID int64, destinationIDs []int64) error
}

type GormPromotionRepository struct {
	*GormStore[domain.Promotion]
}

func NewPromotionRepository(db *gorm.DB) PromotionRepository {
	return &GormPromotionRepository{
		GormStore: NewGormStore[domain.Promotion](db, "valid_from DESC", "Destinations"),
	}
}

func (r *GormPromotionRepository) ListActive(ctx context.Context, at time.Time) ([]domain.Promotion, error) {
	promotions := make([]domain.Promotion, 0)
	err := r.query(ctx).
		Where("is_active = ? AND valid_from <= ? AND valid_until > ?", true, at, at).
		Order(r.order).
		Find(&promotions).Error
	if err != nil {
		return nil, translate(err)
	}
	return promotions, nil
}

// Create inserts the promotion and its destination links in one transaction.
func (r *GormPromotionRepository) Create(ctx context.Context, p *domain.Promotion) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return err
		}
		return linkDestinations(tx, p.ID, destinationIDs(p.Destinations))
	}))
}

func (r *GormPromotionRepository) Update(ctx context.Context, id int64, p *domain.Promotion) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateRow(tx, id, p); err != nil {
			return err
		}
		return linkDestinations(tx, id, destinationIDs(p.Destinations))
	}))
}

func (r *GormPromotionRepository) Delete(ctx context.Context, id int64) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("promotion_id = ?", id).Delete(&domain.PromotionDestination{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Promotion{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	}))
}

func (r *GormPromotionRepository) SetDestinations(ctx context.Context, promotionID int64, ids []int64) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Promotion{}).Where("id = ?", promotionID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return linkDestinations(tx, promotionID, ids)
	}))
}

func linkDestinations(tx *gorm.DB, promotionID int64, ids []int64) error {
	if err := tx.Where("promotion_id = ?", promotionID).Delete(&domain.PromotionDestination{}).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	links := make([]domain.PromotionDestination, 0, len(ids))
	for _, id := range ids {
		links = append(links, domain.PromotionDestination{PromotionID: promotionID, DestinationID: id})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
}

func destinationIDs(destinations []domain.Destination) []int64 {
	ids := make([]int64, 0, len(destinations))
	for _, d := range destinations {
		ids = append(ids, d.ID)
	}
	return ids
}

var _ PromotionRepository = (*GormPromotionRepository)(nil)
