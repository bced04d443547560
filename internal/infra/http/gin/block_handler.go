package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"bookingcore/internal/app/commands"
	"bookingcore/internal/app/dto"
	blockapp "bookingcore/internal/app/handlers/block"
	"bookingcore/internal/app/queries"
)

type BlockHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type blockRequest struct {
	PropertyID string `json:"property_id"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
	Reason     string `json:"reason"`
}

func (h BlockHandler) Create(c *gin.Context) {
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	cmd := blockapp.CreateBlockCommand{
		PropertyID:      req.PropertyID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Reason:          req.Reason,
		IdempotencyKeyV: c.GetHeader(idempotencyHeader),
	}
	result, err := commands.Dispatch[blockapp.CreateBlockCommand, *dto.Block](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BlockHandler) Get(c *gin.Context) {
	result, err := queries.Ask[blockapp.GetBlockQuery, dto.Block](c.Request.Context(), h.Queries, blockapp.GetBlockQuery{BlockID: c.Param("id")})
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BlockHandler) Update(c *gin.Context) {
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	cmd := blockapp.UpdateBlockCommand{BlockID: c.Param("id"), StartDate: req.StartDate, EndDate: req.EndDate}
	result, err := commands.Dispatch[blockapp.UpdateBlockCommand, *dto.Block](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BlockHandler) Delete(c *gin.Context) {
	_, err := commands.Dispatch[blockapp.DeleteBlockCommand, struct{}](c.Request.Context(), h.Commands, blockapp.DeleteBlockCommand{BlockID: c.Param("id")})
	if err != nil {
		respondWithError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var _ BlockHTTP = BlockHandler{}
