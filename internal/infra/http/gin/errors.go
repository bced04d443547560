package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"bookingcore/internal/app/handlers/availability"
	"bookingcore/internal/app/locks"
	"bookingcore/internal/app/middleware"
	domainavailability "bookingcore/internal/domain/availability"
	domainblock "bookingcore/internal/domain/block"
	domainbooking "bookingcore/internal/domain/booking"
	domainproperty "bookingcore/internal/domain/property"
	"bookingcore/internal/domain/shared/daterange"
	"bookingcore/internal/infra/validation"
)

const retryAfterSeconds = "1"

// statusFor is the single place where core errors become HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domainbooking.ErrBookingNotFound),
		errors.Is(err, domainblock.ErrBlockNotFound),
		errors.Is(err, domainproperty.ErrPropertyNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainavailability.ErrInvalidRange),
		errors.Is(err, domainavailability.ErrOverlapConflict),
		errors.Is(err, domainbooking.ErrInvalidTransition),
		errors.Is(err, daterange.ErrMalformedDate),
		errors.Is(err, daterange.ErrMissingDate),
		errors.Is(err, validation.ErrInvalidRequest),
		errors.Is(err, domainbooking.ErrPropertyRequired),
		errors.Is(err, domainblock.ErrPropertyRequired),
		errors.Is(err, domainproperty.ErrIDRequired),
		errors.Is(err, domainproperty.ErrOwnerRequired):
		return http.StatusBadRequest
	case errors.Is(err, middleware.ErrIdempotencyKeyReused):
		return http.StatusConflict
	case errors.Is(err, locks.ErrLockTimeout),
		errors.Is(err, availability.ErrExportDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondWithError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusServiceUnavailable && errors.Is(err, locks.ErrLockTimeout) {
		c.Header("Retry-After", retryAfterSeconds)
	}
	if logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request failed", "path", c.FullPath(), "status", status, "error", err)
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	c.JSON(status, gin.H{"error": msg})
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
