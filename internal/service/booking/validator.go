package booking

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/airbook/internal/apperr"
	"github.com/Domenick1991/airbook/internal/domain"
	"github.com/Domenick1991/airbook/internal/repository"
)

// ConflictWindow is how close two active departures of one user to one
// destination may be before the second booking is refused.
const ConflictWindow = 24 * time.Hour

type DestinationReader interface {
	Get(ctx context.Context, id int64) (*domain.Destination, error)
}

type conflictFinder interface {
	FindActiveInWindow(ctx context.Context, userID, destinationID int64, from, to time.Time) ([]domain.Booking, error)
}

type ValidationInput struct {
	UserID            int64
	DestinationID     int64
	FromDestinationID int64
	DepartureDate     time.Time
	ReturnDate        *time.Time
	ExcludeBookingID  int64
}

// Route holds the resolved endpoints of a validated booking.
type Route struct {
	Origin      *domain.Destination
	Destination *domain.Destination
}

type Validator struct {
	destinations DestinationReader
	bookings     conflictFinder
}

func NewValidator(destinations DestinationReader, bookings conflictFinder) *Validator {
	return &Validator{destinations: destinations, bookings: bookings}
}

func (v *Validator) Validate(ctx context.Context, in ValidationInput) (*Route, error) {
	if err := CheckDates(in.DepartureDate, in.ReturnDate); err != nil {
		return nil, err
	}

	destination, err := v.loadDestination(ctx, in.DestinationID, "destination")
	if err != nil {
		return nil, err
	}
	origin, err := v.loadDestination(ctx, in.FromDestinationID, "origin destination")
	if err != nil {
		return nil, err
	}

	existing, err := v.bookings.FindActiveInWindow(ctx, in.UserID, in.DestinationID,
		in.DepartureDate.Add(-ConflictWindow), in.DepartureDate.Add(ConflictWindow))
	if err != nil {
		return nil, apperr.Internal("failed to check booking conflicts", err)
	}
	for _, b := range existing {
		if b.ID != in.ExcludeBookingID {
			return nil, apperr.Conflict("you already have a booking to this destination within 24 hours of this departure")
		}
	}

	return &Route{Origin: origin, Destination: destination}, nil
}

func CheckDates(departure time.Time, ret *time.Time) error {
	if departure.IsZero() {
		return apperr.Validation("departure date is required", apperr.FieldError{Field: "departureDate", Message: "is required"})
	}
	if ret != nil && !ret.After(departure) {
		return apperr.InvalidInput("return date must be after departure date")
	}
	return nil
}

func (v *Validator) loadDestination(ctx context.Context, id int64, name string) (*domain.Destination, error) {
	d, err := v.destinations.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(name)
		}
		return nil, apperr.Internal("failed to load "+name, err)
	}
	return d, nil
}
