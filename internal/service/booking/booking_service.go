package booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/airbook/internal/apperr"
	"github.com/Domenick1991/airbook/internal/domain"
	"github.com/Domenick1991/airbook/internal/kafka"
	"github.com/Domenick1991/airbook/internal/repository"
	"github.com/sirupsen/logrus"
)

const (
	MinPassengers = 1
	MaxPassengers = 10

	defaultReferenceAttempts = 10
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, userID int64, input CreateBookingInput) (*domain.Booking, error)
	ListMyBookings(ctx context.Context, userID int64, filter domain.BookingFilter) (*domain.BookingPage, error)
	ListBookings(ctx context.Context, filter domain.BookingFilter) (*domain.BookingPage, error)
	GetBooking(ctx context.Context, actor domain.Actor, id int64) (*domain.Booking, error)
	GetBookingByReference(ctx context.Context, actor domain.Actor, reference string) (*domain.Booking, error)
	UpdateBooking(ctx context.Context, actor domain.Actor, id int64, input UpdateBookingInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, actor domain.Actor, id int64) (*domain.Booking, error)
	CompleteDepartedBookings(ctx context.Context) ([]domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	validator          *Validator
	references         ReferenceSource
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	referenceAttempts  int
	now                func() time.Time
	log                *logrus.Entry
}

type CreateBookingInput struct {
	DestinationID     int64
	FromDestinationID int64
	DepartureDate     time.Time
	ReturnDate        *time.Time
	Passengers        int
	BookingClass      domain.BookingClass
}

// UpdateBookingInput carries only the fields the caller wants to change.
type UpdateBookingInput struct {
	DepartureDate   *time.Time
	ReturnDate      *time.Time
	ClearReturnDate bool
	Passengers      *int
	BookingClass    *domain.BookingClass
	Status          *domain.BookingStatus
}

func (in UpdateBookingInput) changesTravel() bool {
	return in.DepartureDate != nil || in.ReturnDate != nil || in.ClearReturnDate ||
		in.Passengers != nil || in.BookingClass != nil
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithReferenceAttempts(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.referenceAttempts = n
		}
	}
}

func WithReferenceSource(src ReferenceSource) BookingServiceOption {
	return func(s *BookingService) {
		s.references = src
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	destinations DestinationReader,
	producer Producer,
	bookingTopic string,
	log *logrus.Entry,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:          bookings,
		validator:         NewValidator(destinations, bookings),
		references:        NewReferenceGenerator(),
		producer:          producer,
		bookingTopic:      bookingTopic,
		referenceAttempts: defaultReferenceAttempts,
		now:               time.Now,
		log:               log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, userID int64, input CreateBookingInput) (*domain.Booking, error) {
	if input.BookingClass == "" {
		input.BookingClass = domain.BookingClassEconomy
	}
	if err := checkPassengersAndClass(input.Passengers, input.BookingClass); err != nil {
		return nil, err
	}

	route, err := s.validator.Validate(ctx, ValidationInput{
		UserID:            userID,
		DestinationID:     input.DestinationID,
		FromDestinationID: input.FromDestinationID,
		DepartureDate:     input.DepartureDate,
		ReturnDate:        input.ReturnDate,
	})
	if err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		UserID:            userID,
		DestinationID:     input.DestinationID,
		FromDestinationID: input.FromDestinationID,
		DepartureDate:     input.DepartureDate,
		ReturnDate:        input.ReturnDate,
		PassengerCount:    input.Passengers,
		BookingClass:      input.BookingClass,
		TotalPrice:        CalculatePrice(input.Passengers, input.BookingClass, route.Origin.CountryName(), route.Destination.CountryName()),
		Status:            domain.BookingStatusPending,
	}

	if err := s.insertWithReference(ctx, booking); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"reference":  booking.BookingReference,
		"user_id":    userID,
	}).Info("booking created")
	s.publish(ctx, kafka.EventBookingCreated, booking)
	return booking, nil
}

// insertWithReference relies on the unique index on booking_reference: a
// clashing candidate is replaced and the insert retried.
func (s *BookingService) insertWithReference(ctx context.Context, booking *domain.Booking) error {
	for attempt := 1; attempt <= s.referenceAttempts; attempt++ {
		booking.BookingReference = s.references.Next()

		err := s.bookings.Create(ctx, booking)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateReference) {
			return apperr.Internal("failed to create booking", err)
		}
		s.log.WithFields(logrus.Fields{
			"reference": booking.BookingReference,
			"attempt":   attempt,
		}).Debug("booking reference collision")
	}
	return apperr.Conflict("could not allocate a unique booking reference, please retry")
}

func (s *BookingService) ListMyBookings(ctx context.Context, userID int64, filter domain.BookingFilter) (*domain.BookingPage, error) {
	filter.UserID = &userID
	return s.ListBookings(ctx, filter)
}

func (s *BookingService) ListBookings(ctx context.Context, filter domain.BookingFilter) (*domain.BookingPage, error) {
	filter.Normalize()
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apperr.Validation("invalid status filter", apperr.FieldError{Field: "status", Message: "must be one of PENDING CONFIRMED CANCELLED COMPLETED"})
	}
	if filter.FromDate != nil && filter.ToDate != nil && filter.ToDate.Before(*filter.FromDate) {
		return nil, apperr.InvalidInput("toDate must not be before fromDate")
	}

	bookings, total, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, apperr.Internal("failed to list bookings", err)
	}
	return &domain.BookingPage{
		Bookings: bookings,
		Total:    total,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}, nil
}

func (s *BookingService) GetBooking(ctx context.Context, actor domain.Actor, id int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, bookingLookupError(err)
	}
	if !actor.CanAccess(booking.UserID) {
		return nil, apperr.Forbidden("you do not have access to this booking")
	}
	return booking, nil
}

func (s *BookingService) GetBookingByReference(ctx context.Context, actor domain.Actor, reference string) (*domain.Booking, error) {
	reference = strings.ToUpper(strings.TrimSpace(reference))
	if !ValidReference(reference) {
		return nil, apperr.NotFound("booking")
	}

	booking, err := s.bookings.GetByReference(ctx, reference)
	if err != nil {
		return nil, bookingLookupError(err)
	}
	if !actor.CanAccess(booking.UserID) {
		return nil, apperr.Forbidden("you do not have access to this booking")
	}
	return booking, nil
}

func (s *BookingService) UpdateBooking(ctx context.Context, actor domain.Actor, id int64, input UpdateBookingInput) (*domain.Booking, error) {
	booking, err := s.GetBooking(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !input.changesTravel() && input.Status == nil {
		return nil, apperr.InvalidInput("nothing to update")
	}
	if input.Status != nil && !actor.IsAdmin() {
		return nil, apperr.Forbidden("only admins can change booking status")
	}

	expected := booking.Status

	if input.changesTravel() {
		if booking.Status != domain.BookingStatusPending {
			return nil, apperr.InvalidState(fmt.Sprintf("booking is %s, only pending bookings can be changed", booking.Status))
		}
		if err := s.applyTravelChanges(ctx, booking, input); err != nil {
			return nil, err
		}
	}

	if input.Status != nil && *input.Status != booking.Status {
		if !input.Status.Valid() {
			return nil, apperr.Validation("invalid status", apperr.FieldError{Field: "status", Message: "must be one of PENDING CONFIRMED CANCELLED COMPLETED"})
		}
		if !booking.Status.CanTransitionTo(*input.Status) {
			return nil, apperr.InvalidState(fmt.Sprintf("cannot change booking status from %s to %s", booking.Status, *input.Status))
		}
		booking.Status = *input.Status
	}

	if err := s.bookings.Update(ctx, booking, expected); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, apperr.InvalidState("booking was changed by another request, reload and retry")
		}
		return nil, apperr.Internal("failed to update booking", err)
	}

	s.log.WithFields(logrus.Fields{"booking_id": booking.ID, "status": booking.Status}).Info("booking updated")
	s.publish(ctx, updateEvent(expected, booking.Status), booking)
	return booking, nil
}

func (s *BookingService) applyTravelChanges(ctx context.Context, booking *domain.Booking, input UpdateBookingInput) error {
	if input.DepartureDate != nil {
		booking.DepartureDate = *input.DepartureDate
	}
	if input.ClearReturnDate {
		booking.ReturnDate = nil
	} else if input.ReturnDate != nil {
		booking.ReturnDate = input.ReturnDate
	}
	if input.Passengers != nil {
		booking.PassengerCount = *input.Passengers
	}
	if input.BookingClass != nil {
		booking.BookingClass = *input.BookingClass
	}
	if err := checkPassengersAndClass(booking.PassengerCount, booking.BookingClass); err != nil {
		return err
	}

	route, err := s.validator.Validate(ctx, ValidationInput{
		UserID:            booking.UserID,
		DestinationID:     booking.DestinationID,
		FromDestinationID: booking.FromDestinationID,
		DepartureDate:     booking.DepartureDate,
		ReturnDate:        booking.ReturnDate,
		ExcludeBookingID:  booking.ID,
	})
	if err != nil {
		return err
	}
	booking.TotalPrice = CalculatePrice(booking.PassengerCount, booking.BookingClass, route.Origin.CountryName(), route.Destination.CountryName())
	return nil
}

// CancelBooking is a status change; the row is kept.
func (s *BookingService) CancelBooking(ctx context.Context, actor domain.Actor, id int64) (*domain.Booking, error) {
	current, err := s.GetBooking(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(domain.BookingStatusCancelled) {
		return nil, apperr.InvalidState(fmt.Sprintf("booking is already %s and cannot be cancelled", strings.ToLower(string(current.Status))))
	}

	updated, err := s.bookings.UpdateStatus(ctx, id, current.Status, domain.BookingStatusCancelled)
	if err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, apperr.InvalidState("booking was changed by another request, reload and retry")
		}
		return nil, apperr.Internal("failed to cancel booking", err)
	}

	s.log.WithFields(logrus.Fields{"booking_id": updated.ID, "actor": actor.UserID}).Info("booking cancelled")
	s.publish(ctx, kafka.EventBookingCancelled, updated)
	return updated, nil
}

// CompleteDepartedBookings marks confirmed bookings whose trip has ended as completed.
func (s *BookingService) CompleteDepartedBookings(ctx context.Context) ([]domain.Booking, error) {
	completed, err := s.bookings.CompleteEndedBefore(ctx, s.now())
	if err != nil {
		return nil, apperr.Internal("failed to complete bookings", err)
	}
	for i := range completed {
		s.publish(ctx, kafka.EventBookingCompleted, &completed[i])
	}
	return completed, nil
}

// updateEvent names the event for an update; a status change into a terminal
// state is reported as that state's event.
func updateEvent(from, to domain.BookingStatus) string {
	if from != to {
		switch to {
		case domain.BookingStatusCancelled:
			return kafka.EventBookingCancelled
		case domain.BookingStatusCompleted:
			return kafka.EventBookingCompleted
		}
	}
	return kafka.EventBookingUpdated
}

// publish is best effort: a broker outage must not fail the booking call.
func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:             eventType,
		BookingID:        booking.ID,
		BookingReference: booking.BookingReference,
		UserID:           booking.UserID,
		DestinationID:    booking.DestinationID,
		Status:           string(booking.Status),
		DepartureDate:    booking.DepartureDate,
		ReturnDate:       booking.ReturnDate,
		TotalPrice:       booking.TotalPrice,
		OccurredAt:       s.now().UTC(),
	}
	key := strconv.FormatInt(booking.ID, 10)

	topics := []string{s.bookingTopic}
	if s.notificationsTopic != "" {
		topics = append(topics, s.notificationsTopic)
	}
	for _, topic := range topics {
		if err := s.producer.Publish(ctx, topic, key, event); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"event":      eventType,
				"booking_id": booking.ID,
				"topic":      topic,
			}).Warn("failed to publish booking event")
		}
	}
}

func checkPassengersAndClass(passengers int, class domain.BookingClass) error {
	var fields []apperr.FieldError
	if passengers < MinPassengers || passengers > MaxPassengers {
		fields = append(fields, apperr.FieldError{Field: "passengers", Message: fmt.Sprintf("must be between %d and %d", MinPassengers, MaxPassengers)})
	}
	if !class.Valid() {
		fields = append(fields, apperr.FieldError{Field: "bookingClass", Message: "must be one of ECONOMY BUSINESS FIRST"})
	}
	if len(fields) > 0 {
		return apperr.Validation("invalid booking request", fields...)
	}
	return nil
}

func bookingLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("booking")
	}
	return apperr.Internal("failed to load booking", err)
}

var _ BookingUseCase = (*BookingService)(nil)
