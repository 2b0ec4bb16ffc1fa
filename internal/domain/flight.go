package domain

import "time"

type ScheduleStatus string

const (
	ScheduleStatusScheduled ScheduleStatus = "SCHEDULED"
	ScheduleStatusDelayed   ScheduleStatus = "DELAYED"
	ScheduleStatusCancelled ScheduleStatus = "CANCELLED"
)

func (s ScheduleStatus) Valid() bool {
	switch s {
	case ScheduleStatusScheduled, ScheduleStatusDelayed, ScheduleStatusCancelled:
		return true
	}
	return false
}

type FlightSchedule struct {
	ID                   int64           `json:"id" gorm:"primaryKey"`
	AirlineID            int64           `json:"airlineId" gorm:"not null;index" binding:"required"`
	Airline              *Airline        `json:"airline,omitempty" gorm:"foreignKey:AirlineID" binding:"-"`
	FlightNumber         string          `json:"flightNumber" gorm:"type:varchar(16);not null;uniqueIndex" binding:"required"`
	OriginAirportID      int64           `json:"originAirportId" gorm:"not null;index" binding:"required"`
	OriginAirport        *Airport        `json:"originAirport,omitempty" gorm:"foreignKey:OriginAirportID" binding:"-"`
	DestinationAirportID int64           `json:"destinationAirportId" gorm:"not null;index" binding:"required"`
	DestinationAirport   *Airport        `json:"destinationAirport,omitempty" gorm:"foreignKey:DestinationAirportID" binding:"-"`
	DepartureTime        time.Time       `json:"departureTime" gorm:"not null" binding:"required"`
	ArrivalTime          time.Time       `json:"arrivalTime" gorm:"not null" binding:"required"`
	Status               ScheduleStatus  `json:"status" gorm:"type:varchar(16);not null;default:SCHEDULED"`
	Classes              []ScheduleClass `json:"classes" gorm:"foreignKey:ScheduleID;constraint:OnDelete:CASCADE" binding:"dive"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// ScheduleClass is the fare and seat count of one booking class on a schedule.
type ScheduleClass struct {
	ID           int64        `json:"id" gorm:"primaryKey"`
	ScheduleID   int64        `json:"scheduleId" gorm:"not null;uniqueIndex:idx_schedule_class"`
	BookingClass BookingClass `json:"bookingClass" gorm:"type:varchar(16);not null;uniqueIndex:idx_schedule_class" binding:"required,oneof=ECONOMY BUSINESS FIRST"`
	Price        int64        `json:"price" gorm:"not null" binding:"gt=0"`
	SeatsTotal   int          `json:"seatsTotal" gorm:"not null" binding:"gt=0"`
}

type ScheduleFilter struct {
	AirlineID            *int64
	OriginAirportID      *int64
	DestinationAirportID *int64
	DepartureFrom        *time.Time
	DepartureTo          *time.Time
}
