package repository

import (
	"context"

	"github.com/Domenick1991/airbook/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the CRUD surface shared by every reference-data table.
type Store[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, v *T) error
	Update(ctx context.Context, id int64, v *T) error
	Delete(ctx context.Context, id int64) error
}

type GormStore[T any] struct {
	db      *gorm.DB
	preload []string
	order   string
}

func NewGormStore[T any](db *gorm.DB, order string, preload ...string) *GormStore[T] {
	if order == "" {
		order = "id ASC"
	}
	return &GormStore[T]{db: db, preload: preload, order: order}
}

func (s *GormStore[T]) query(ctx context.Context) *gorm.DB {
	q := s.db.WithContext(ctx)
	for _, p := range s.preload {
		q = q.Preload(p)
	}
	return q
}

func (s *GormStore[T]) List(ctx context.Context) ([]T, error) {
	items := make([]T, 0)
	if err := s.query(ctx).Order(s.order).Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}

func (s *GormStore[T]) Get(ctx context.Context, id int64) (*T, error) {
	var item T
	if err := s.query(ctx).First(&item, id).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (s *GormStore[T]) Create(ctx context.Context, v *T) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(v).Error)
}

// Update overwrites every column of row id with v, zero values included.
func (s *GormStore[T]) Update(ctx context.Context, id int64, v *T) error {
	return updateRow(s.db.WithContext(ctx), id, v)
}

func (s *GormStore[T]) Delete(ctx context.Context, id int64) error {
	var zero T
	res := s.db.WithContext(ctx).Delete(&zero, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func updateRow[T any](db *gorm.DB, id int64, v *T) error {
	var zero T
	res := db.Model(&zero).Where("id = ?", id).
		Select("*").Omit("id", "created_at", clause.Associations).
		Updates(v)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func NewCountryStore(db *gorm.DB) *GormStore[domain.Country] {
	return NewGormStore[domain.Country](db, "name ASC")
}

func NewCityStore(db *gorm.DB) *GormStore[domain.City] {
	return NewGormStore[domain.City](db, "name ASC", "Country")
}

func NewAirportStore(db *gorm.DB) *GormStore[domain.Airport] {
	return NewGormStore[domain.Airport](db, "iata_code ASC", "City", "City.Country")
}

func NewAirlineStore(db *gorm.DB) *GormStore[domain.Airline] {
	return NewGormStore[domain.Airline](db, "name ASC", "Country")
}

var (
	_ Store[domain.Country] = (*GormStore[domain.Country])(nil)
	_ Store[domain.City]    = (*GormStore[domain.City])(nil)
	_ Store[domain.Airport] = (*GormStore[domain.Airport])(nil)
	_ Store[domain.Airline] = (*GormStore[domain.Airline])(nil)
)
