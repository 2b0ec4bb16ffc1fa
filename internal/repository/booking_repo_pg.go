package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/airbook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int64, error)
	Update(ctx context.Context, booking *domain.Booking, expected domain.BookingStatus) error
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (*domain.Booking, error)
	FindActiveInWindow(ctx context.Context, userID, destinationID int64, from, to time.Time) ([]domain.Booking, error)
	CompleteEndedBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

// querier is the part of *pgxpool.Pool the booking queries run through.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGBookingRepository struct {
	db querier
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, user_id, destination_id, from_destination_id, departure_date, return_date,
	passenger_count, booking_class, total_price, status, booking_reference, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.UserID, &b.DestinationID, &b.FromDestinationID, &b.DepartureDate, &b.ReturnDate,
		&b.PassengerCount, &b.BookingClass, &b.TotalPrice, &b.Status, &b.BookingReference, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// Create inserts the booking. A clash on booking_reference surfaces as
// ErrDuplicateReference so the caller can draw a new reference and retry.
func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	err := r.db.QueryRow(ctx, `INSERT INTO bookings (user_id, destination_id, from_destination_id, departure_date, return_date,
		passenger_count, booking_class, total_price, status, booking_reference, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
		RETURNING id, created_at, updated_at`,
		booking.UserID, booking.DestinationID, booking.FromDestinationID, booking.DepartureDate, booking.ReturnDate,
		booking.PassengerCount, booking.BookingClass, booking.TotalPrice, booking.Status, booking.BookingReference).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	return translate(err)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return b, nil
}

func (r *PGBookingRepository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE booking_reference=$1`, reference))
	if err != nil {
		return nil, translate(err)
	}
	return b, nil
}

func (r *PGBookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int64, error) {
	filter.Normalize()
	where, args := bookingWhere(filter)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM bookings`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM bookings%s ORDER BY departure_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		bookingColumns, where, len(args)-1, len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func bookingWhere(filter domain.BookingFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.UserID != nil {
		add("user_id = $%d", *filter.UserID)
	}
	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}
	if filter.FromDate != nil {
		add("departure_date >= $%d", *filter.FromDate)
	}
	if filter.ToDate != nil {
		add("departure_date <= $%d", *filter.ToDate)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Update rewrites the mutable fields of a booking still in the expected status.
func (r *PGBookingRepository) Update(ctx context.Context, booking *domain.Booking, expected domain.BookingStatus) error {
	err := r.db.QueryRow(ctx, `UPDATE bookings SET departure_date=$1, return_date=$2, passenger_count=$3, booking_class=$4,
		total_price=$5, status=$6, updated_at=now() WHERE id=$7 AND status=$8 RETURNING updated_at`,
		booking.DepartureDate, booking.ReturnDate, booking.PassengerCount, booking.BookingClass,
		booking.TotalPrice, booking.Status, booking.ID, expected).Scan(&booking.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrStatusChanged
	}
	return translate(err)
}

// UpdateStatus moves the booking from one status to another only if it is
// still in the expected one.
func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2 AND status=$3 RETURNING `+bookingColumns, to, id, from)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStatusChanged
		}
		return nil, translate(err)
	}
	return b, nil
}

func (r *PGBookingRepository) FindActiveInWindow(ctx context.Context, userID, destinationID int64, from, to time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE user_id=$1 AND destination_id=$2 AND status IN ($3, $4) AND departure_date BETWEEN $5 AND $6`,
		userID, destinationID, domain.BookingStatusPending, domain.BookingStatusConfirmed, from, to)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) CompleteEndedBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings SET status=$1, updated_at=now()
		WHERE status=$2 AND COALESCE(return_date, departure_date) < $3 RETURNING `+bookingColumns,
		domain.BookingStatusCompleted, domain.BookingStatusConfirmed, deadline)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

var _ BookingRepository = (*PGBookingRepository)(nil)
