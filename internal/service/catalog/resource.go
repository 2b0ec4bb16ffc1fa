package catalog

import (
	"context"
	"errors"

	"github.com/Domenick1991/airbook/internal/apperr"
	"github.com/Domenick1991/airbook/internal/repository"
	"github.com/sirupsen/logrus"
)

type CatalogUseCase[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, v *T) (*T, error)
	Update(ctx context.Context, id int64, v *T) (*T, error)
	Delete(ctx context.Context, id int64) error
}

// Resource is the admin-managed CRUD service for one reference-data table.
type Resource[T any] struct {
	name     string
	store    repository.Store[T]
	idOf     func(*T) int64
	validate func(*T) error
	onWrite  func(ctx context.Context)
	log      *logrus.Entry
}

type ResourceOption[T any] func(*Resource[T])

// WithValidation runs check on every create and update payload.
func WithValidation[T any](check func(*T) error) ResourceOption[T] {
	return func(r *Resource[T]) {
		r.validate = check
	}
}

// WithWriteHook is called after every successful create, update or delete.
func WithWriteHook[T any](hook func(ctx context.Context)) ResourceOption[T] {
	return func(r *Resource[T]) {
		r.onWrite = hook
	}
}

func NewResource[T any](name string, store repository.Store[T], idOf func(*T) int64, log *logrus.Entry, opts ...ResourceOption[T]) *Resource[T] {
	r := &Resource[T]{
		name:  name,
		store: store,
		idOf:  idOf,
		log:   log.WithField("resource", name),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	items, err := r.store.List(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list "+r.name+"s", err)
	}
	return items, nil
}

func (r *Resource[T]) Get(ctx context.Context, id int64) (*T, error) {
	item, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, r.storeError(err, false)
	}
	return item, nil
}

func (r *Resource[T]) Create(ctx context.Context, v *T) (*T, error) {
	if err := r.check(v); err != nil {
		return nil, err
	}
	if err := r.store.Create(ctx, v); err != nil {
		return nil, r.storeError(err, false)
	}

	id := r.idOf(v)
	r.log.WithField("id", id).Info("created")
	r.written(ctx)
	return r.reload(ctx, id, v), nil
}

func (r *Resource[T]) Update(ctx context.Context, id int64, v *T) (*T, error) {
	if err := r.check(v); err != nil {
		return nil, err
	}
	if err := r.store.Update(ctx, id, v); err != nil {
		return nil, r.storeError(err, false)
	}

	r.log.WithField("id", id).Info("updated")
	r.written(ctx)
	return r.reload(ctx, id, v), nil
}

func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return r.storeError(err, true)
	}
	r.log.WithField("id", id).Info("deleted")
	r.written(ctx)
	return nil
}

func (r *Resource[T]) check(v *T) error {
	if v == nil {
		return apperr.InvalidInput(r.name + " payload is required")
	}
	if r.validate == nil {
		return nil
	}
	return r.validate(v)
}

func (r *Resource[T]) written(ctx context.Context) {
	if r.onWrite != nil {
		r.onWrite(ctx)
	}
}

// reload fetches the stored row with its relations; the written value is
// returned as-is if that read fails.
func (r *Resource[T]) reload(ctx context.Context, id int64, fallback *T) *T {
	item, err := r.store.Get(ctx, id)
	if err != nil {
		r.log.WithError(err).WithField("id", id).Warn("reload after write failed")
		return fallback
	}
	return item
}

func (r *Resource[T]) storeError(err error, deleting bool) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(r.name)
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Conflict(r.name + " already exists")
	case errors.Is(err, repository.ErrForeignKey) && deleting:
		return apperr.Conflict(r.name + " is still referenced by other records")
	case errors.Is(err, repository.ErrForeignKey):
		return apperr.InvalidInput(r.name + " references a record that does not exist")
	default:
		return apperr.Internal("failed to store "+r.name, err)
	}
}
