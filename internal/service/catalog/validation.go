package catalog

import (
	"fmt"
	"strings"

	"github.com/Domenick1991/airbook/internal/apperr"
	"github.com/Domenick1991/airbook/internal/domain"
)

type fieldErrors []apperr.FieldError

func (f *fieldErrors) add(field, message string) {
	*f = append(*f, apperr.FieldError{Field: field, Message: message})
}

func (f fieldErrors) err(resource string) error {
	if len(f) == 0 {
		return nil
	}
	return apperr.Validation("invalid "+resource, f...)
}

func required(f *fieldErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		f.add(field, "is required")
	}
}

func requiredID(f *fieldErrors, field string, id int64) {
	if id <= 0 {
		f.add(field, "is required")
	}
}

func code(f *fieldErrors, field, value string, length int) {
	if len(value) != length {
		f.add(field, fmt.Sprintf("must be %d characters", length))
	}
}

func validateCountry(c *domain.Country) error {
	var f fieldErrors
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	required(&f, "name", c.Name)
	code(&f, "code", c.Code, 2)
	return f.err("country")
}

func validateCity(c *domain.City) error {
	var f fieldErrors
	required(&f, "name", c.Name)
	requiredID(&f, "countryId", c.CountryID)
	return f.err("city")
}

func validateAirport(a *domain.Airport) error {
	var f fieldErrors
	a.IATACode = strings.ToUpper(strings.TrimSpace(a.IATACode))
	required(&f, "name", a.Name)
	code(&f, "iataCode", a.IATACode, 3)
	requiredID(&f, "cityId", a.CityID)
	return f.err("airport")
}

func validateAirline(a *domain.Airline) error {
	var f fieldErrors
	a.IATACode = strings.ToUpper(strings.TrimSpace(a.IATACode))
	required(&f, "name", a.Name)
	code(&f, "iataCode", a.IATACode, 2)
	requiredID(&f, "countryId", a.CountryID)
	return f.err("airline")
}

func validateDestination(d *domain.Destination) error {
	var f fieldErrors
	required(&f, "name", d.Name)
	requiredID(&f, "cityId", d.CityID)
	requiredID(&f, "countryId", d.CountryID)
	requiredID(&f, "airportId", d.AirportID)
	return f.err("destination")
}

func validateSchedule(s *domain.FlightSchedule) error {
	var f fieldErrors
	s.FlightNumber = strings.ToUpper(strings.TrimSpace(s.FlightNumber))
	if s.Status == "" {
		s.Status = domain.ScheduleStatusScheduled
	}

	requiredID(&f, "airlineId", s.AirlineID)
	required(&f, "flightNumber", s.FlightNumber)
	requiredID(&f, "originAirportId", s.OriginAirportID)
	requiredID(&f, "destinationAirportId", s.DestinationAirportID)
	if s.OriginAirportID != 0 && s.OriginAirportID == s.DestinationAirportID {
		f.add("destinationAirportId", "must differ from originAirportId")
	}
	if s.DepartureTime.IsZero() {
		f.add("departureTime", "is required")
	}
	if !s.ArrivalTime.After(s.DepartureTime) {
		f.add("arrivalTime", "must be after departureTime")
	}
	if !s.Status.Valid() {
		f.add("status", "must be one of SCHEDULED DELAYED CANCELLED")
	}

	seen := make(map[domain.BookingClass]bool, len(s.Classes))
	for i, c := range s.Classes {
		field := fmt.Sprintf("classes[%d]", i)
		switch {
		case !c.BookingClass.Valid():
			f.add(field+".bookingClass", "must be one of ECONOMY BUSINESS FIRST")
		case seen[c.BookingClass]:
			f.add(field+".bookingClass", "is listed more than once")
		}
		seen[c.BookingClass] = true
		if c.Price <= 0 {
			f.add(field+".price", "must be positive")
		}
		if c.SeatsTotal <= 0 {
			f.add(field+".seatsTotal", "must be positive")
		}
	}
	return f.err("flight schedule")
}

func validatePromotion(p *domain.Promotion) error {
	var f fieldErrors
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	required(&f, "code", p.Code)
	required(&f, "title", p.Title)
	if p.DiscountPercent < 1 || p.DiscountPercent > 100 {
		f.add("discountPercent", "must be between 1 and 100")
	}
	if p.ValidFrom.IsZero() {
		f.add("validFrom", "is required")
	}
	if !p.ValidUntil.After(p.ValidFrom) {
		f.add("validUntil", "must be after validFrom")
	}
	return f.err("promotion")
}
