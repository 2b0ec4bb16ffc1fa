package catalog

import (
	"github.com/Domenick1991/airbook/internal/domain"
	"github.com/Domenick1991/airbook/internal/repository"
	"github.com/sirupsen/logrus"
)

// Countries, cities and airports are embedded in cached destination
// listings, so writing them also drops that cache.

func NewCountryService(store repository.Store[domain.Country], cache DestinationCache, log *logrus.Entry) *Resource[domain.Country] {
	return NewResource("country", store, func(c *domain.Country) int64 { return c.ID }, log,
		WithValidation(validateCountry),
		WithWriteHook[domain.Country](invalidator(cache, log)),
	)
}

func NewCityService(store repository.Store[domain.City], cache DestinationCache, log *logrus.Entry) *Resource[domain.City] {
	return NewResource("city", store, func(c *domain.City) int64 { return c.ID }, log,
		WithValidation(validateCity),
		WithWriteHook[domain.City](invalidator(cache, log)),
	)
}

func NewAirportService(store repository.Store[domain.Airport], cache DestinationCache, log *logrus.Entry) *Resource[domain.Airport] {
	return NewResource("airport", store, func(a *domain.Airport) int64 { return a.ID }, log,
		WithValidation(validateAirport),
		WithWriteHook[domain.Airport](invalidator(cache, log)),
	)
}

func NewAirlineService(store repository.Store[domain.Airline], log *logrus.Entry) *Resource[domain.Airline] {
	return NewResource("airline", store, func(a *domain.Airline) int64 { return a.ID }, log,
		WithValidation(validateAirline),
	)
}
