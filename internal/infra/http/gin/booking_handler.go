package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"bookingcore/internal/app/commands"
	"bookingcore/internal/app/dto"
	bookingapp "bookingcore/internal/app/handlers/booking"
	"bookingcore/internal/app/queries"
)

const idempotencyHeader = "Idempotency-Key"

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type bookingRequest struct {
	PropertyID    string `json:"property_id"`
	StartDate     string `json:"start_date" binding:"required"`
	EndDate       string `json:"end_date" binding:"required"`
	GuestName     string `json:"guest_name"`
	GuestLast4SSN string `json:"guest_last4_ssn"`
}

func (h BookingHandler) Create(c *gin.Context) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	cmd := bookingapp.CreateBookingCommand{
		PropertyID:      req.PropertyID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		GuestName:       req.GuestName,
		GuestLast4SSN:   req.GuestLast4SSN,
		IdempotencyKeyV: c.GetHeader(idempotencyHeader),
	}
	result, err := commands.Dispatch[bookingapp.CreateBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	result, err := queries.Ask[bookingapp.GetBookingQuery, dto.Booking](c.Request.Context(), h.Queries, bookingapp.GetBookingQuery{BookingID: c.Param("id")})
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Update(c *gin.Context) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	cmd := bookingapp.UpdateBookingCommand{
		BookingID:     c.Param("id"),
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		GuestName:     req.GuestName,
		GuestLast4SSN: req.GuestLast4SSN,
	}
	result, err := commands.Dispatch[bookingapp.UpdateBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Cancel(c *gin.Context) {
	_, err := commands.Dispatch[bookingapp.CancelBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, bookingapp.CancelBookingCommand{BookingID: c.Param("id")})
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h BookingHandler) Rebook(c *gin.Context) {
	_, err := commands.Dispatch[bookingapp.RebookBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, bookingapp.RebookBookingCommand{BookingID: c.Param("id")})
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h BookingHandler) Delete(c *gin.Context) {
	_, err := commands.Dispatch[bookingapp.DeleteBookingCommand, struct{}](c.Request.Context(), h.Commands, bookingapp.DeleteBookingCommand{BookingID: c.Param("id")})
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListByProperty serves GET /properties/:id/bookings?active=true.
func (h BookingHandler) ListByProperty(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.Query("active"))
	q := bookingapp.ListPropertyBookingsQuery{PropertyID: c.Param("id"), ActiveOnly: activeOnly}
	result, err := queries.Ask[bookingapp.ListPropertyBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BookingHTTP = BookingHandler{}
