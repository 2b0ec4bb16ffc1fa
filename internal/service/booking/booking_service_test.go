package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/airbook/internal/apperr"
	"github.com/Domenick1991/airbook/internal/domain"
	"github.com/Domenick1991/airbook/internal/kafka"
	"github.com/Domenick1991/airbook/internal/logger"
	"github.com/Domenick1991/airbook/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Booking), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookingRepository) Update(ctx context.Context, booking *domain.Booking, expected domain.BookingStatus) error {
	args := m.Called(ctx, booking, expected)
	return args.Error(0)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (*domain.Booking, error) {
	args := m.Called(ctx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindActiveInWindow(ctx context.Context, userID, destinationID int64, from, to time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, userID, destinationID, from, to)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) CompleteEndedBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, deadline)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockDestinationReader struct {
	mock.Mock
}

func (m *MockDestinationReader) Get(ctx context.Context, id int64) (*domain.Destination, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Destination), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type fixedReferences struct {
	refs []string
	next int
}

func (f *fixedReferences) Next() string {
	ref := f.refs[f.next%len(f.refs)]
	f.next++
	return ref
}

var (
	departure = time.Date(2026, 12, 20, 7, 30, 0, 0, time.UTC)
	fixedNow  = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
)

func destination(id int64, country string) *domain.Destination {
	return &domain.Destination{ID: id, Name: country + " city", Country: &domain.Country{Name: country}}
}

type fixture struct {
	repo         *MockBookingRepository
	destinations *MockDestinationReader
	producer     *MockProducer
	refs         *fixedReferences
	service      *BookingService
}

func newFixture(opts ...BookingServiceOption) *fixture {
	f := &fixture{
		repo:         &MockBookingRepository{},
		destinations: &MockDestinationReader{},
		producer:     &MockProducer{},
		refs:         &fixedReferences{refs: []string{"AIR-20261017-0001"}},
	}
	opts = append([]BookingServiceOption{
		WithReferenceSource(f.refs),
		WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	f.service = NewBookingService(f.repo, f.destinations, f.producer, "booking_events", logger.Discard(), opts...)
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.repo.AssertExpectations(t)
	f.destinations.AssertExpectations(t)
	f.producer.AssertExpectations(t)
}

func (f *fixture) expectRoute(ctx context.Context, to, from *domain.Destination) {
	f.destinations.On("Get", ctx, to.ID).Return(to, nil).Once()
	f.destinations.On("Get", ctx, from.ID).Return(from, nil).Once()
}

func (f *fixture) expectNoConflict(ctx context.Context, userID, destinationID int64, dep time.Time) {
	f.repo.On("FindActiveInWindow", ctx, userID, destinationID, dep.Add(-ConflictWindow), dep.Add(ConflictWindow)).
		Return([]domain.Booking{}, nil).Once()
}

func kindOf(t *testing.T, err error) apperr.Kind {
	t.Helper()
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	return appErr.Kind
}

// ============================ Price calculator ============================

func TestCalculatePrice(t *testing.T) {
	tests := []struct {
		name       string
		passengers int
		class      domain.BookingClass
		from, to   string
		want       int64
	}{
		{"domestic economy pair", 2, domain.BookingClassEconomy, "Indonesia", "Indonesia", 2_000_000},
		{"international business", 1, domain.BookingClassBusiness, "Indonesia", "Singapore", 6_250_000},
		{"international first", 3, domain.BookingClassFirst, "Japan", "Indonesia", 37_500_000},
		{"domestic first max", 10, domain.BookingClassFirst, "Indonesia", "Indonesia", 50_000_000},
		{"foreign to foreign", 1, domain.BookingClassEconomy, "Malaysia", "Malaysia", 2_500_000},
		{"country name is case sensitive", 1, domain.BookingClassEconomy, "indonesia", "Indonesia", 2_500_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculatePrice(tt.passengers, tt.class, tt.from, tt.to))
		})
	}
}

func TestCalculatePrice_MatchesFormula(t *testing.T) {
	classes := []domain.BookingClass{domain.BookingClassEconomy, domain.BookingClassBusiness, domain.BookingClassFirst}
	for _, class := range classes {
		for passengers := MinPassengers; passengers <= MaxPassengers; passengers++ {
			base := float64(BaseFare(class) * int64(passengers))
			assert.Equal(t, int64(base), CalculatePrice(passengers, class, "Indonesia", "Indonesia"))
			assert.Equal(t, int64(base*2.5), CalculatePrice(passengers, class, "Indonesia", "Thailand"))
		}
	}
}

// ============================ Reference generator ============================

func TestReferenceGenerator_Format(t *testing.T) {
	g := &ReferenceGenerator{
		now:  func() time.Time { return time.Date(2026, 3, 5, 23, 0, 0, 0, time.FixedZone("WIB", 7*3600)) },
		intn: func(int) int { return 42 },
	}
	assert.Equal(t, "AIR-20260305-0042", g.Next())

	random := NewReferenceGenerator()
	for i := 0; i < 500; i++ {
		assert.True(t, ValidReference(random.Next()))
	}
}

func TestValidReference(t *testing.T) {
	assert.True(t, ValidReference("AIR-20261017-0001"))
	assert.False(t, ValidReference("AIR-2026101-0001"))
	assert.False(t, ValidReference("air-20261017-0001"))
	assert.False(t, ValidReference("AIR-20261017-00012"))
}

// ============================ CreateBooking ============================

func TestBookingService_CreateBooking_Success(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.expectRoute(ctx, destination(2, "Indonesia"), destination(1, "Indonesia"))
	f.expectNoConflict(ctx, 7, 2, departure)
	f.repo.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Booking).ID = 100
	}).Return(nil).Once()
	f.producer.On("Publish", ctx, "booking_events", "100", mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventBookingCreated && e.BookingReference == "AIR-20261017-0001"
	})).Return(nil).Once()

	booking, err := f.service.CreateBooking(ctx, 7, CreateBookingInput{
		DestinationID:     2,
		FromDestinationID: 1,
		DepartureDate:     departure,
		Passengers:        2,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(100), booking.ID)
	assert.Equal(t, domain.BookingStatusPending, booking.Status)
	assert.Equal(t, domain.BookingClassEconomy, booking.BookingClass)
	assert.Equal(t, int64(2_000_000), booking.TotalPrice)
	assert.Equal(t, "AIR-20261017-0001", booking.BookingReference)
	f.assertExpectations(t)
}

func TestBookingService_CreateBooking_InternationalPrice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ret := departure.Add(5 * 24 * time.Hour)

	f.expectRoute(ctx, destination(5, "Singapore"), destination(1, "Indonesia"))
	f.expectNoConflict(ctx, 7, 5, departure)
	f.repo.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()
	f.producer.On("Publish", ctx, "booking_events", mock.Anything, mock.Anything).Return(nil).Once()

	booking, err := f.service.CreateBooking(ctx, 7, CreateBookingInput{
		DestinationID:     5,
		FromDestinationID: 1,
		DepartureDate:     departure,
		ReturnDate:        &ret,
		Passengers:        1,
		BookingClass:      domain.BookingClassBusiness,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(6_250_000), booking.TotalPrice)
	assert.Equal(t, &ret, booking.ReturnDate)
	f.assertExpectations(t)
}

func TestBookingService_CreateBooking_RetriesReferenceCollision(t *testing.T) {
	f := newFixture()
	f.refs.refs = []string{"AIR-20261017-1111", "AIR-20261017-2222"}
	ctx := context.Background()

	f.expectRoute(ctx, destination(2, "Indonesia"), destination(1, "Indonesia"))
	f.expectNoConflict(ctx, 7, 2, departure)
	f.repo.On("Create", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.BookingReference == "AIR-20261017-1111"
	})).Return(repository.ErrDuplicateReference).Once()
	f.repo.On("Create", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.BookingReference == "AIR-20261017-2222"
	})).Return(nil).Once()
	f.producer.On("Publish", ctx, "booking_events", mock.Anything, mock.Anything).Return(nil).Once()

	booking, err := f.service.CreateBooking(ctx, 7, CreateBookingInput{
		DestinationID: 2, FromDestinationID: 1, DepartureDate: departure, Passengers: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, "AIR-20261017-2222", booking.BookingReference)
	f.assertExpectations(t)
}

func TestBookingService_CreateBooking_ReferenceAttemptsExhausted(t *testing.T) {
	f := newFixture(WithReferenceAttempts(3))
	ctx := context.Background()

	f.expectRoute(ctx, destination(2, "Indonesia"), destination(1, "Indonesia"))
	f.expectNoConflict(ctx, 7, 2, departure)
	f.repo.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicateReference).Times(3)

	booking, err := f.service.CreateBooking(ctx, 7, CreateBookingInput{
		DestinationID: 2, FromDestinationID: 1, DepartureDate: departure, Passengers: 1,
	})

	assert.Nil(t, booking)
	assert.Equal(t, apperr.KindConflict, kindOf(t, err))
	f.producer.AssertNotCalled(t, "Publish")
	f.assertExpectations(t)
}

func TestBookingService_CreateBooking_StorageError(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.expectRoute(ctx, destination(2, "Indonesia"), destination(1, "Indonesia"))
	f.expectNoConflict(ctx, 7, 2, departure)
	f.repo.On("Create", ctx, mock.Anything).Return(errors.New("connection reset")).Once()

	_, err := f.service.CreateBooking(ctx, 7, CreateBookingInput{
		DestinationID: 2, FromDestinationID: 1, DepartureDate: departure, Passengers: 1,
	})

	assert.Equal(t, apperr.KindInternal, kindOf(t, err))
	f.assertExpectations(t)
}

func TestBookingService_CreateBooking_ReturnBeforeDeparture(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for _, ret := range []time.Time{departure, departure.Add(-time.Hour)} {
		_, err := f.service.CreateBooking(ctx, 7, CreateBookingInput{
			DestinationID: 2, FromDestinationID: 1, DepartureDate: departure, ReturnDate: &ret, Passengers: 1,
		})
		assert.Equal(t, apperr.KindInvalidInput, kindOf(t, err))
	}

	f.destinations.AssertNotCalled(t, "Get")
	f.repo.AssertNotCalled(t, "Create")
}

func TestBookingService_CreateBooking_DestinationNotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.destinations.On("Get", ctx, int64(2)).Return(destination(2, "Indonesia"), nil).Once()
	f.destinations.On("Get", ctx, int64(99)).Return(nil, repository.ErrNotFound).Once()

	_, err := f.service.CreateBooking(ctx, 7, CreateBookingInput{
		DestinationID: 2, FromDestinationID: 99, DepartureDate: departure, Passengers: 1,
	})

	assert.Equal(t, apperr.KindNotFound, kindOf(t, err))
	assert.Contains(t, err.Error(), "origin destination not found")
	f.repo.AssertNotCalled(t, "Create")
	f.assertExpectations(t)
}

func TestBookingService_CreateBooking_ConflictWithin24Hours(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	existing := domain.Booking{ID: 55, UserID: 7, DestinationID: 2, DepartureDate: departure.Add(20 * time.Hour), Status: domain.BookingStatusConfirmed}
	f.expectRoute(ctx, destination(2, "Indonesia"), destination(1, "Indonesia"))
	f.repo.On("FindActiveInWindow", ctx, int64(7), int64(2), departure.Add(-ConflictWindow), departure.Add(ConflictWindow)).
		Return([]domain.Booking{existing}, nil).Once()

	_, err := f.service.CreateBooking(ctx, 7, CreateBookingInput{
		DestinationID: 2, FromDestinationID: 1, DepartureDate: departure, Passengers: 1,
	})

	assert.Equal(t, apperr.KindConflict, kindOf(t, err))
	f.repo.AssertNotCalled(t, "Create")
	f.assertExpectations(t)
}

func TestBookingService_CreateBooking_InvalidPassengersAndClass(t *testing.T) {
	f := newFixture()

	_, err := f.service.CreateBooking(context.Background(), 7, CreateBookingInput{
		DestinationID: 2, FromDestinationID: 1, DepartureDate: departure, Passengers: 11, BookingClass: "PREMIUM",
	})

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Len(t, appErr.Fields, 2)
}

func TestBookingService_CreateBooking_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(WithNotificationsTopic("notifications"))
	ctx := context.Background()

	f.expectRoute(ctx, destination(2, "Indonesia"), destination(1, "Indonesia"))
	f.expectNoConflict(ctx, 7, 2, departure)
	f.repo.On("Create", ctx, mock.Anything).Return(nil).Once()
	f.producer.On("Publish", ctx, "booking_events", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()
	f.producer.On("Publish", ctx, "notifications", mock.Anything, mock.Anything).Return(nil).Once()

	booking, err := f.service.CreateBooking(ctx, 7, CreateBookingInput{
		DestinationID: 2, FromDestinationID: 1, DepartureDate: departure, Passengers: 1,
	})

	require.NoError(t, err)
	assert.NotNil(t, booking)
	f.assertExpectations(t)
}

// ============================ Reads ============================

func TestBookingService_GetBooking(t *testing.T) {
	ctx := context.Background()
	owned := &domain.Booking{ID: 3, UserID: 7, Status: domain.BookingStatusPending}

	t.Run("owner", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByID", ctx, int64(3)).Return(owned, nil).Once()
		got, err := f.service.GetBooking(ctx, domain.Actor{UserID: 7, Role: domain.RoleUser}, 3)
		require.NoError(t, err)
		assert.Equal(t, owned, got)
	})

	t.Run("other user", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByID", ctx, int64(3)).Return(owned, nil).Once()
		_, err := f.service.GetBooking(ctx, domain.Actor{UserID: 8, Role: domain.RoleUser}, 3)
		assert.Equal(t, apperr.KindForbidden, kindOf(t, err))
	})

	t.Run("admin", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByID", ctx, int64(3)).Return(owned, nil).Once()
		_, err := f.service.GetBooking(ctx, domain.Actor{UserID: 1, Role: domain.RoleAdmin}, 3)
		assert.NoError(t, err)
	})

	t.Run("missing", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByID", ctx, int64(4)).Return(nil, repository.ErrNotFound).Once()
		_, err := f.service.GetBooking(ctx, domain.Actor{UserID: 7}, 4)
		assert.Equal(t, apperr.KindNotFound, kindOf(t, err))
	})
}

func TestBookingService_GetBookingByReference(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.service.GetBookingByReference(ctx, domain.Actor{UserID: 7}, "BOOK-1")
	assert.Equal(t, apperr.KindNotFound, kindOf(t, err))
	f.repo.AssertNotCalled(t, "GetByReference", mock.Anything, mock.Anything)

	booking := &domain.Booking{ID: 3, UserID: 7, BookingReference: "AIR-20261017-0001"}
	f.repo.On("GetByReference", ctx, "AIR-20261017-0001").Return(booking, nil).Once()

	got, err := f.service.GetBookingByReference(ctx, domain.Actor{UserID: 7}, " air-20261017-0001 ")
	require.NoError(t, err)
	assert.Equal(t, booking, got)
	f.assertExpectations(t)
}

func TestBookingService_ListMyBookings(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	userID := int64(7)
	status := domain.BookingStatusPending

	expectedFilter := domain.BookingFilter{UserID: &userID, Status: &status, Limit: domain.DefaultPageLimit}
	bookings := []domain.Booking{{ID: 1, UserID: 7}}
	f.repo.On("List", ctx, expectedFilter).Return(bookings, int64(12), nil).Once()

	page, err := f.service.ListMyBookings(ctx, userID, domain.BookingFilter{Status: &status})

	require.NoError(t, err)
	assert.Equal(t, bookings, page.Bookings)
	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, domain.DefaultPageLimit, page.Limit)
	f.assertExpectations(t)
}

func TestBookingService_ListBookings_InvalidFilters(t *testing.T) {
	f := newFixture()
	bad := domain.BookingStatus("LOST")
	_, err := f.service.ListBookings(context.Background(), domain.BookingFilter{Status: &bad})
	assert.Equal(t, apperr.KindValidation, kindOf(t, err))

	from := departure
	to := departure.Add(-time.Hour)
	_, err = f.service.ListBookings(context.Background(), domain.BookingFilter{FromDate: &from, ToDate: &to})
	assert.Equal(t, apperr.KindInvalidInput, kindOf(t, err))
	f.repo.AssertNotCalled(t, "List")
}

// ============================ CancelBooking ============================

func TestBookingService_CancelBooking_Pending(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	actor := domain.Actor{UserID: 7, Role: domain.RoleUser}

	current := &domain.Booking{ID: 3, UserID: 7, Status: domain.BookingStatusPending}
	cancelled := &domain.Booking{ID: 3, UserID: 7, Status: domain.BookingStatusCancelled}
	f.repo.On("GetByID", ctx, int64(3)).Return(current, nil).Once()
	f.repo.On("UpdateStatus", ctx, int64(3), domain.BookingStatusPending, domain.BookingStatusCancelled).Return(cancelled, nil).Once()
	f.producer.On("Publish", ctx, "booking_events", "3", mock.MatchedBy(func(e kafka.BookingEvent) bool {
		return e.Type == kafka.EventBookingCancelled
	})).Return(nil).Once()

	got, err := f.service.CancelBooking(ctx, actor, 3)

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, got.Status)
	f.assertExpectations(t)
}

func TestBookingService_CancelBooking_TerminalStates(t *testing.T) {
	ctx := context.Background()
	for _, status := range []domain.BookingStatus{domain.BookingStatusCancelled, domain.BookingStatusCompleted} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture()
			f.repo.On("GetByID", ctx, int64(3)).Return(&domain.Booking{ID: 3, UserID: 7, Status: status}, nil).Once()

			_, err := f.service.CancelBooking(ctx, domain.Actor{UserID: 7}, 3)

			assert.Equal(t, apperr.KindInvalidState, kindOf(t, err))
			f.repo.AssertNotCalled(t, "UpdateStatus")
		})
	}
}

func TestBookingService_CancelBooking_Twice(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	actor := domain.Actor{UserID: 7}

	f.repo.On("GetByID", ctx, int64(3)).Return(&domain.Booking{ID: 3, UserID: 7, Status: domain.BookingStatusConfirmed}, nil).Once()
	f.repo.On("UpdateStatus", ctx, int64(3), domain.BookingStatusConfirmed, domain.BookingStatusCancelled).
		Return(&domain.Booking{ID: 3, UserID: 7, Status: domain.BookingStatusCancelled}, nil).Once()
	f.repo.On("GetByID", ctx, int64(3)).Return(&domain.Booking{ID: 3, UserID: 7, Status: domain.BookingStatusCancelled}, nil).Once()
	f.producer.On("Publish", ctx, "booking_events", "3", mock.Anything).Return(nil).Once()

	_, err := f.service.CancelBooking(ctx, actor, 3)
	require.NoError(t, err)

	_, err = f.service.CancelBooking(ctx, actor, 3)
	assert.Equal(t, apperr.KindInvalidState, kindOf(t, err))
	f.assertExpectations(t)
}

func TestBookingService_CancelBooking_ConcurrentChange(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.repo.On("GetByID", ctx, int64(3)).Return(&domain.Booking{ID: 3, UserID: 7, Status: domain.BookingStatusPending}, nil).Once()
	f.repo.On("UpdateStatus", ctx, int64(3), domain.BookingStatusPending, domain.BookingStatusCancelled).
		Return(nil, repository.ErrStatusChanged).Once()

	_, err := f.service.CancelBooking(ctx, domain.Actor{UserID: 7}, 3)
	assert.Equal(t, apperr.KindInvalidState, kindOf(t, err))
}

func TestBookingService_CancelBooking_Forbidden(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.repo.On("GetByID", ctx, int64(3)).Return(&domain.Booking{ID: 3, UserID: 7, Status: domain.BookingStatusPending}, nil).Once()

	_, err := f.service.CancelBooking(ctx, domain.Actor{UserID: 8}, 3)
	assert.Equal(t, apperr.KindForbidden, kindOf(t, err))
}

// ============================ UpdateBooking ============================

func TestBookingService_UpdateBooking_TravelChangeReprices(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	actor := domain.Actor{UserID: 7}

	current := &domain.Booking{
		ID: 3, UserID: 7, DestinationID: 2, FromDestinationID: 1, DepartureDate: departure,
		PassengerCount: 1, BookingClass: domain.BookingClassEconomy, TotalPrice: 1_000_000, Status: domain.BookingStatusPending,
	}
	f.repo.On("GetByID", ctx, int64(3)).Return(current, nil).Once()
	f.expectRoute(ctx, destination(2, "Indonesia"), destination(1, "Indonesia"))
	// the booking being edited is in its own window and must not conflict with itself
	f.repo.On("FindActiveInWindow", ctx, int64(7), int64(2), departure.Add(-ConflictWindow), departure.Add(ConflictWindow)).
		Return([]domain.Booking{*current}, nil).Once()
	f.repo.On("Update", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.PassengerCount == 3 && b.BookingClass == domain.BookingClassFirst && b.TotalPrice == 15_000_000
	}), domain.BookingStatusPending).Return(nil).Once()
	f.producer.On("Publish", ctx, "booking_events", "3", mock.Anything).Return(nil).Once()

	passengers := 3
	class := domain.BookingClassFirst
	got, err := f.service.UpdateBooking(ctx, actor, 3, UpdateBookingInput{Passengers: &passengers, BookingClass: &class})

	require.NoError(t, err)
	assert.Equal(t, int64(15_000_000), got.TotalPrice)
	f.assertExpectations(t)
}

func TestBookingService_UpdateBooking_NotPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.repo.On("GetByID", ctx, int64(3)).Return(&domain.Booking{ID: 3, UserID: 7, Status: domain.BookingStatusConfirmed}, nil).Once()

	passengers := 2
	_, err := f.service.UpdateBooking(ctx, domain.Actor{UserID: 7}, 3, UpdateBookingInput{Passengers: &passengers})
	assert.Equal(t, apperr.KindInvalidState, kindOf(t, err))
	f.repo.AssertNotCalled(t, "Update")
}

func TestBookingService_UpdateBooking_ReturnDateOrdering(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.repo.On("GetByID", ctx, int64(3)).Return(&domain.Booking{
		ID: 3, UserID: 7, DepartureDate: departure, PassengerCount: 1, BookingClass: domain.BookingClassEconomy, Status: domain.BookingStatusPending,
	}, nil).Once()

	ret := departure.Add(-24 * time.Hour)
	_, err := f.service.UpdateBooking(ctx, domain.Actor{UserID: 7}, 3, UpdateBookingInput{ReturnDate: &ret})
	assert.Equal(t, apperr.KindInvalidInput, kindOf(t, err))
}

func TestBookingService_UpdateBooking_StatusRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.repo.On("GetByID", ctx, int64(3)).Return(&domain.Booking{ID: 3, UserID: 7, Status: domain.BookingStatusPending}, nil).Once()

	status := domain.BookingStatusConfirmed
	_, err := f.service.UpdateBooking(ctx, domain.Actor{UserID: 7, Role: domain.RoleUser}, 3, UpdateBookingInput{Status: &status})
	assert.Equal(t, apperr.KindForbidden, kindOf(t, err))
}

func TestBookingService_UpdateBooking_AdminStatusTransitions(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{UserID: 1, Role: domain.RoleAdmin}

	t.Run("confirm pending", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByID", ctx, int64(3)).Return(&domain.Booking{ID: 3, UserID: 7, Status: domain.BookingStatusPending}, nil).Once()
		f.repo.On("Update", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
			return b.Status == domain.BookingStatusConfirmed
		}), domain.BookingStatusPending).Return(nil).Once()
		f.producer.On("Publish", ctx, "booking_events", "3", mock.MatchedBy(func(e kafka.BookingEvent) bool {
			return e.Type == kafka.EventBookingUpdated
		})).Return(nil).Once()

		status := domain.BookingStatusConfirmed
		got, err := f.service.UpdateBooking(ctx, admin, 3, UpdateBookingInput{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusConfirmed, got.Status)
		f.assertExpectations(t)
	})

	for _, tc := range []struct {
		name  string
		to    domain.BookingStatus
		event string
	}{
		{"cancel confirmed", domain.BookingStatusCancelled, kafka.EventBookingCancelled},
		{"complete confirmed", domain.BookingStatusCompleted, kafka.EventBookingCompleted},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.repo.On("GetByID", ctx, int64(3)).Return(&domain.Booking{ID: 3, UserID: 7, Status: domain.BookingStatusConfirmed}, nil).Once()
			f.repo.On("Update", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
				return b.Status == tc.to
			}), domain.BookingStatusConfirmed).Return(nil).Once()
			f.producer.On("Publish", ctx, "booking_events", "3", mock.MatchedBy(func(e kafka.BookingEvent) bool {
				return e.Type == tc.event && e.Status == string(tc.to)
			})).Return(nil).Once()

			to := tc.to
			got, err := f.service.UpdateBooking(ctx, admin, 3, UpdateBookingInput{Status: &to})
			require.NoError(t, err)
			assert.Equal(t, tc.to, got.Status)
			f.assertExpectations(t)
		})
	}

	t.Run("complete pending is rejected", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByID", ctx, int64(3)).Return(&domain.Booking{ID: 3, UserID: 7, Status: domain.BookingStatusPending}, nil).Once()

		status := domain.BookingStatusCompleted
		_, err := f.service.UpdateBooking(ctx, admin, 3, UpdateBookingInput{Status: &status})
		assert.Equal(t, apperr.KindInvalidState, kindOf(t, err))
	})

	t.Run("revive cancelled is rejected", func(t *testing.T) {
		f := newFixture()
		f.repo.On("GetByID", ctx, int64(3)).Return(&domain.Booking{ID: 3, UserID: 7, Status: domain.BookingStatusCancelled}, nil).Once()

		status := domain.BookingStatusPending
		_, err := f.service.UpdateBooking(ctx, admin, 3, UpdateBookingInput{Status: &status})
		assert.Equal(t, apperr.KindInvalidState, kindOf(t, err))
	})
}

func TestBookingService_UpdateBooking_Empty(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.repo.On("GetByID", ctx, int64(3)).Return(&domain.Booking{ID: 3, UserID: 7, Status: domain.BookingStatusPending}, nil).Once()

	_, err := f.service.UpdateBooking(ctx, domain.Actor{UserID: 7}, 3, UpdateBookingInput{})
	assert.Equal(t, apperr.KindInvalidInput, kindOf(t, err))
}

// ============================ CompleteDepartedBookings ============================

func TestBookingService_CompleteDepartedBookings(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	completed := []domain.Booking{
		{ID: 10, Status: domain.BookingStatusCompleted},
		{ID: 11, Status: domain.BookingStatusCompleted},
	}
	f.repo.On("CompleteEndedBefore", ctx, fixedNow).Return(completed, nil).Once()
	f.producer.On("Publish", ctx, "booking_events", "10", mock.Anything).Return(nil).Once()
	f.producer.On("Publish", ctx, "booking_events", "11", mock.Anything).Return(nil).Once()

	got, err := f.service.CompleteDepartedBookings(ctx)

	require.NoError(t, err)
	assert.Len(t, got, 2)
	f.assertExpectations(t)
}

func TestBookingService_CompleteDepartedBookings_Error(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.repo.On("CompleteEndedBefore", ctx, fixedNow).Return([]domain.Booking(nil), errors.New("db down")).Once()

	_, err := f.service.CompleteDepartedBookings(ctx)
	assert.Equal(t, apperr.KindInternal, kindOf(t, err))
}

func TestBookingService_NoProducer(t *testing.T) {
	ctx := context.Background()
	repo := &MockBookingRepository{}
	service := NewBookingService(repo, &MockDestinationReader{}, nil, "", logger.Discard(), WithClock(func() time.Time { return fixedNow }))

	repo.On("CompleteEndedBefore", ctx, fixedNow).Return([]domain.Booking{{ID: 1}}, nil).Once()

	_, err := service.CompleteDepartedBookings(ctx)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
