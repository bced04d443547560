package availability

import (
	"context"
	"strings"

	"bookingcore/internal/app/dto"
	"bookingcore/internal/app/handlers/support"
	"bookingcore/internal/app/queries"
	"bookingcore/internal/app/uow"
	domainavailability "bookingcore/internal/domain/availability"
	"bookingcore/internal/domain/property"
)

const checkAvailabilityKey = "availability.check"

// CheckAvailabilityQuery asks whether a booking could be placed, without placing it.
type CheckAvailabilityQuery struct {
	PropertyID string `validate:"required"`
	StartDate  string `validate:"required"`
	EndDate    string `validate:"required"`
}

func (q CheckAvailabilityQuery) Key() string { return checkAvailabilityKey }

type CheckAvailabilityHandler struct {
	UoWFactory uow.UoWFactory
	Validator  domainavailability.Validator
}

func (h *CheckAvailabilityHandler) Handle(ctx context.Context, q CheckAvailabilityQuery) (dto.Availability, error) {
	propertyID := property.PropertyID(strings.TrimSpace(q.PropertyID))
	r, err := support.RequestedRange(q.StartDate, q.EndDate)
	if err != nil {
		return dto.Availability{}, err
	}
	return support.ReadOnly(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) (dto.Availability, error) {
		if _, err := unit.Properties().ByID(ctx, propertyID); err != nil {
			return dto.Availability{}, err
		}
		report, err := h.Validator.Inspect(ctx, support.Oracle(unit), propertyID, r)
		if err != nil {
			return dto.Availability{}, err
		}
		return dto.MapAvailability(report), nil
	})
}

var _ queries.Handler[CheckAvailabilityQuery, dto.Availability] = (*CheckAvailabilityHandler)(nil)
