package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"bookingcore/internal/app/commands"
	"bookingcore/internal/app/dto"
	"bookingcore/internal/app/handlers/availability"
	"bookingcore/internal/app/handlers/properties"
	"bookingcore/internal/app/queries"
)

// PropertyHandler serves the catalogue and its availability read side.
// Admin is the transactional bus that owns RegisterPropertyCommand.
type PropertyHandler struct {
	Admin    commands.Bus
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type registerPropertyRequest struct {
	OwnerName string `json:"owner_name" binding:"required"`
}

func (h PropertyHandler) Register(c *gin.Context) {
	var req registerPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	cmd := properties.RegisterPropertyCommand{PropertyID: c.Param("id"), OwnerName: req.OwnerName}
	result, err := commands.Dispatch[properties.RegisterPropertyCommand, *dto.Property](c.Request.Context(), h.Admin, cmd)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) Get(c *gin.Context) {
	result, err := queries.Ask[properties.GetPropertyQuery, dto.Property](c.Request.Context(), h.Queries, properties.GetPropertyQuery{PropertyID: c.Param("id")})
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) Availability(c *gin.Context) {
	q := availability.CheckAvailabilityQuery{PropertyID: c.Param("id"), StartDate: c.Query("start"), EndDate: c.Query("end")}
	result, err := queries.Ask[availability.CheckAvailabilityQuery, dto.Availability](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) Calendar(c *gin.Context) {
	q := availability.GetCalendarQuery{PropertyID: c.Param("id"), From: c.Query("from"), To: c.Query("to")}
	result, err := queries.Ask[availability.GetCalendarQuery, dto.Calendar](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) ExportCalendar(c *gin.Context) {
	cmd := availability.ExportCalendarCommand{PropertyID: c.Param("id")}
	result, err := commands.Dispatch[availability.ExportCalendarCommand, *dto.CalendarExport](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

var _ PropertyHTTP = PropertyHandler{}
