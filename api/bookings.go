package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/airbook/internal/apperr"
	"github.com/Domenick1991/airbook/internal/domain"
	"github.com/Domenick1991/airbook/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	DestinationID     int64   `json:"destinationId" binding:"required,gt=0"`
	FromDestinationID int64   `json:"fromDestinationId" binding:"required,gt=0"`
	DepartureDate     string  `json:"departureDate" binding:"required,isodate"`
	ReturnDate        *string `json:"returnDate" binding:"omitempty,isodate"`
	Passengers        int     `json:"passengers" binding:"required,min=1,max=10"`
	BookingClass      string  `json:"bookingClass" binding:"omitempty,oneof=ECONOMY BUSINESS FIRST"`
}

type updateBookingRequest struct {
	DepartureDate   *string `json:"departureDate" binding:"omitempty,isodate"`
	ReturnDate      *string `json:"returnDate" binding:"omitempty,isodate"`
	ClearReturnDate bool    `json:"clearReturnDate"`
	Passengers      *int    `json:"passengers" binding:"omitempty,min=1,max=10"`
	BookingClass    *string `json:"bookingClass" binding:"omitempty,oneof=ECONOMY BUSINESS FIRST"`
	Status          *string `json:"status" binding:"omitempty,oneof=PENDING CONFIRMED CANCELLED COMPLETED"`
}

type listBookingsQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED CANCELLED COMPLETED"`
	FromDate string `form:"fromDate" binding:"omitempty,isodate"`
	ToDate   string `form:"toDate" binding:"omitempty,isodate"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset   int    `form:"offset" binding:"omitempty,min=0"`
	UserID   int64  `form:"userId" binding:"omitempty,gt=0"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

// Register expects router to be behind Authenticate; admin guards the full listing.
func (h *BookingHandler) Register(router *gin.RouterGroup, admin gin.HandlerFunc) {
	router.POST("", h.create)
	router.GET("", admin, h.listAll)
	router.GET("/my", h.listMine)
	router.GET("/reference/:reference", h.getByReference)
	router.GET("/:id", h.get)
	router.PUT("/:id", h.update)
	router.PUT("/:id/cancel", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}

	departure, _, err := parseISODate(req.DepartureDate)
	if err != nil {
		writeError(c, apperr.InvalidInput(err.Error()))
		return
	}
	ret, err := optionalDate(req.ReturnDate)
	if err != nil {
		writeError(c, apperr.InvalidInput(err.Error()))
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), actor.UserID, booking.CreateBookingInput{
		DestinationID:     req.DestinationID,
		FromDestinationID: req.FromDestinationID,
		DepartureDate:     departure,
		ReturnDate:        ret,
		Passengers:        req.Passengers,
		BookingClass:      domain.BookingClass(req.BookingClass),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusCreated, "booking created", created)
}

func (h *BookingHandler) listMine(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	filter, ok := bindBookingFilter(c)
	if !ok {
		return
	}

	page, err := h.service.ListMyBookings(c.Request.Context(), actor.UserID, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, "bookings retrieved", page)
}

func (h *BookingHandler) listAll(c *gin.Context) {
	filter, ok := bindBookingFilter(c)
	if !ok {
		return
	}

	page, err := h.service.ListBookings(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, "bookings retrieved", page)
}

func (h *BookingHandler) get(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	found, err := h.service.GetBooking(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, "booking retrieved", found)
}

func (h *BookingHandler) getByReference(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	found, err := h.service.GetBookingByReference(c.Request.Context(), actor, c.Param("reference"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, "booking retrieved", found)
}

func (h *BookingHandler) update(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req updateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}
	input, err := req.toInput()
	if err != nil {
		writeError(c, apperr.InvalidInput(err.Error()))
		return
	}

	updated, err := h.service.UpdateBooking(c.Request.Context(), actor, id, input)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, "booking updated", updated)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	cancelled, err := h.service.CancelBooking(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond(c, http.StatusOK, "booking cancelled", cancelled)
}

func (r updateBookingRequest) toInput() (booking.UpdateBookingInput, error) {
	input := booking.UpdateBookingInput{
		ClearReturnDate: r.ClearReturnDate,
		Passengers:      r.Passengers,
	}

	var err error
	if input.DepartureDate, err = optionalDate(r.DepartureDate); err != nil {
		return input, err
	}
	if input.ReturnDate, err = optionalDate(r.ReturnDate); err != nil {
		return input, err
	}
	if r.BookingClass != nil {
		class := domain.BookingClass(*r.BookingClass)
		input.BookingClass = &class
	}
	if r.Status != nil {
		status := domain.BookingStatus(*r.Status)
		input.Status = &status
	}
	return input, nil
}

func optionalDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, _, err := parseISODate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func bindBookingFilter(c *gin.Context) (domain.BookingFilter, bool) {
	var q listBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, bindError(err))
		return domain.BookingFilter{}, false
	}

	filter := domain.BookingFilter{Limit: q.Limit, Offset: q.Offset}
	if q.Status != "" {
		status := domain.BookingStatus(q.Status)
		filter.Status = &status
	}
	if q.UserID != 0 {
		filter.UserID = &q.UserID
	}
	if q.FromDate != "" {
		from, _, err := parseISODate(q.FromDate)
		if err != nil {
			writeError(c, apperr.InvalidInput(err.Error()))
			return filter, false
		}
		filter.FromDate = &from
	}
	if q.ToDate != "" {
		to, err := parseRangeEnd(q.ToDate)
		if err != nil {
			writeError(c, apperr.InvalidInput(err.Error()))
			return filter, false
		}
		filter.ToDate = &to
	}
	return filter, true
}
