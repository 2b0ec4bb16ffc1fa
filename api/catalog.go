package api

import (
	"net/http"

	"github.com/Domenick1991/airbook/internal/apperr"
	"github.com/Domenick1991/airbook/internal/domain"
	"github.com/Domenick1991/airbook/internal/service/catalog"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves public reads and admin writes for one reference-data resource.
type CatalogHandler[T any] struct {
	name    string
	service catalog.CatalogUseCase[T]
	list    gin.HandlerFunc
	extra   func(router *gin.RouterGroup, admin []gin.HandlerFunc)
}

func NewCatalogHandler[T any](name string, service catalog.CatalogUseCase[T]) *CatalogHandler[T] {
	h := &CatalogHandler[T]{name: name, service: service}
	h.list = h.listAll
	return h
}

// Register mounts the routes; admin is the middleware chain guarding writes.
func (h *CatalogHandler[T]) Register(router *gin.RouterGroup, admin ...gin.HandlerFunc) {
	if h.extra != nil {
		h.extra(router, admin)
	}
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.POST("", append(admin[:len(admin):len(admin)], h.create)...)
	router.PUT("/:id", append(admin[:len(admin):len(admin)], h.update)...)
	router.DELETE("/:id", append(admin[:len(admin):len(admin)], h.delete)...)
}

func (h *CatalogHandler[T]) listAll(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, h.name+" list retrieved", items)
}

func (h *CatalogHandler[T]) get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	item, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, h.name+" retrieved", item)
}

func (h *CatalogHandler[T]) create(c *gin.Context) {
	var body T
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, bindError(err))
		return
	}
	created, err := h.service.Create(c.Request.Context(), &body)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, h.name+" created", created)
}

func (h *CatalogHandler[T]) update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var body T
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, bindError(err))
		return
	}
	updated, err := h.service.Update(c.Request.Context(), id, &body)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, h.name+" updated", updated)
}

func (h *CatalogHandler[T]) delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, h.name+" deleted", nil)
}

type destinationQuery struct {
	Popular   bool  `form:"popular"`
	CountryID int64 `form:"countryId" binding:"omitempty,gt=0"`
}

func NewDestinationHandler(service catalog.DestinationUseCase) *CatalogHandler[domain.Destination] {
	h := NewCatalogHandler[domain.Destination]("destination", service)
	h.list = func(c *gin.Context) {
		var q destinationQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			writeError(c, bindError(err))
			return
		}
		filter := domain.DestinationFilter{PopularOnly: q.Popular}
		if q.CountryID != 0 {
			filter.CountryID = &q.CountryID
		}

		destinations, err := service.Search(c.Request.Context(), filter)
		if err != nil {
			writeError(c, err)
			return
		}
		respond(c, http.StatusOK, "destination list retrieved", destinations)
	}
	return h
}

type scheduleQuery struct {
	AirlineID            int64  `form:"airlineId" binding:"omitempty,gt=0"`
	OriginAirportID      int64  `form:"originAirportId" binding:"omitempty,gt=0"`
	DestinationAirportID int64  `form:"destinationAirportId" binding:"omitempty,gt=0"`
	DepartureFrom        string `form:"departureFrom" binding:"omitempty,isodate"`
	DepartureTo          string `form:"departureTo" binding:"omitempty,isodate"`
}

func (q scheduleQuery) filter() (domain.ScheduleFilter, error) {
	var f domain.ScheduleFilter
	if q.AirlineID != 0 {
		f.AirlineID = &q.AirlineID
	}
	if q.OriginAirportID != 0 {
		f.OriginAirportID = &q.OriginAirportID
	}
	if q.DestinationAirportID != 0 {
		f.DestinationAirportID = &q.DestinationAirportID
	}
	if q.DepartureFrom != "" {
		from, _, err := parseISODate(q.DepartureFrom)
		if err != nil {
			return f, err
		}
		f.DepartureFrom = &from
	}
	if q.DepartureTo != "" {
		to, err := parseRangeEnd(q.DepartureTo)
		if err != nil {
			return f, err
		}
		f.DepartureTo = &to
	}
	return f, nil
}

func NewScheduleHandler(service catalog.ScheduleUseCase) *CatalogHandler[domain.FlightSchedule] {
	h := NewCatalogHandler[domain.FlightSchedule]("flight schedule", service)
	h.list = func(c *gin.Context) {
		var q scheduleQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			writeError(c, bindError(err))
			return
		}
		filter, err := q.filter()
		if err != nil {
			writeError(c, apperr.InvalidInput(err.Error()))
			return
		}

		schedules, err := service.Search(c.Request.Context(), filter)
		if err != nil {
			writeError(c, err)
			return
		}
		respond(c, http.StatusOK, "flight schedule list retrieved", schedules)
	}
	return h
}

type promotionDestinationsRequest struct {
	DestinationIDs []int64 `json:"destinationIds" binding:"required,dive,gt=0"`
}

func NewPromotionHandler(service catalog.PromotionUseCase) *CatalogHandler[domain.Promotion] {
	h := NewCatalogHandler[domain.Promotion]("promotion", service)
	h.extra = func(router *gin.RouterGroup, admin []gin.HandlerFunc) {
		router.GET("/active", func(c *gin.Context) {
			promotions, err := service.Active(c.Request.Context())
			if err != nil {
				writeError(c, err)
				return
			}
			respond(c, http.StatusOK, "active promotions retrieved", promotions)
		})

		setDestinations := func(c *gin.Context) {
			id, ok := idParam(c, "id")
			if !ok {
				return
			}
			var req promotionDestinationsRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				writeError(c, bindError(err))
				return
			}
			promotion, err := service.SetDestinations(c.Request.Context(), id, req.DestinationIDs)
			if err != nil {
				writeError(c, err)
				return
			}
			respond(c, http.StatusOK, "promotion destinations updated", promotion)
		}
		router.PUT("/:id/destinations", append(admin[:len(admin):len(admin)], setDestinations)...)
	}
	return h
}
