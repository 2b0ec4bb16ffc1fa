package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCancelled, BookingStatusCompleted},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo reports whether a booking in status s may move to next.
// CANCELLED and COMPLETED are terminal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Active bookings take part in the departure conflict check.
func (s BookingStatus) Active() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

type BookingClass string

const (
	BookingClassEconomy  BookingClass = "ECONOMY"
	BookingClassBusiness BookingClass = "BUSINESS"
	BookingClassFirst    BookingClass = "FIRST"
)

func (c BookingClass) Valid() bool {
	switch c {
	case BookingClassEconomy, BookingClassBusiness, BookingClassFirst:
		return true
	}
	return false
}

// Booking rows are read and written through pgx; the relation fields only
// give the schema its foreign keys so referenced rows cannot be deleted.
type Booking struct {
	ID                int64         `json:"id" gorm:"primaryKey"`
	UserID            int64         `json:"userId" gorm:"not null;index:idx_bookings_user_destination"`
	User              *User         `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" binding:"-"`
	DestinationID     int64         `json:"destinationId" gorm:"not null;index:idx_bookings_user_destination"`
	Destination       *Destination  `json:"-" gorm:"foreignKey:DestinationID;constraint:OnDelete:RESTRICT" binding:"-"`
	FromDestinationID int64         `json:"fromDestinationId" gorm:"not null"`
	FromDestination   *Destination  `json:"-" gorm:"foreignKey:FromDestinationID;constraint:OnDelete:RESTRICT" binding:"-"`
	DepartureDate     time.Time     `json:"departureDate" gorm:"not null;index"`
	ReturnDate        *time.Time    `json:"returnDate,omitempty" gorm:"check:chk_bookings_return_after_departure,return_date IS NULL OR return_date > departure_date"`
	PassengerCount    int           `json:"passengerCount" gorm:"not null;check:chk_bookings_passengers,passenger_count BETWEEN 1 AND 10"`
	BookingClass      BookingClass  `json:"bookingClass" gorm:"type:varchar(16);not null"`
	TotalPrice        int64         `json:"totalPrice" gorm:"not null"`
	Status            BookingStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	BookingReference  string        `json:"bookingReference" gorm:"type:varchar(32);not null;uniqueIndex"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

// TravelEnd is the return date, or the departure date for one-way trips.
func (b *Booking) TravelEnd() time.Time {
	if b.ReturnDate != nil {
		return *b.ReturnDate
	}
	return b.DepartureDate
}

type BookingFilter struct {
	UserID   *int64
	Status   *BookingStatus
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Normalize clamps paging to sane bounds.
func (f *BookingFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

type BookingPage struct {
	Bookings []Booking `json:"bookings"`
	Total    int64     `json:"total"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}
