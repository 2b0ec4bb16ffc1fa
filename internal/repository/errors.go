package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicate          = errors.New("record already exists")
	ErrDuplicateReference = errors.New("booking reference already exists")
	ErrForeignKey         = errors.New("foreign key violation")
	ErrStatusChanged      = errors.New("booking status changed concurrently")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	bookingReferenceIndex = "idx_bookings_booking_reference"
)

// translate maps driver errors onto the package sentinels, keeping the cause.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			if pgErr.ConstraintName == bookingReferenceIndex {
				return errors.Join(ErrDuplicateReference, err)
			}
			return errors.Join(ErrDuplicate, err)
		case pgForeignKeyViolation:
			return errors.Join(ErrForeignKey, err)
		}
	}
	return err
}
