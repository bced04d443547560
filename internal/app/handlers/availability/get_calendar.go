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
	"bookingcore/internal/domain/shared/daterange"
)

const getCalendarKey = "availability.calendar"

// GetCalendarQuery lists what occupies a property. From and To are optional
// but must be given together.
type GetCalendarQuery struct {
	PropertyID string `validate:"required"`
	From       string `validate:"required_with=To"`
	To         string `validate:"required_with=From"`
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

type GetCalendarHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.Calendar, error) {
	window, err := parseWindow(q.From, q.To)
	if err != nil {
		return dto.Calendar{}, err
	}
	cal, err := loadCalendar(ctx, h.UoWFactory, property.PropertyID(strings.TrimSpace(q.PropertyID)), window)
	if err != nil {
		return dto.Calendar{}, err
	}
	return dto.MapCalendar(cal), nil
}

func loadCalendar(ctx context.Context, factory uow.UoWFactory, propertyID property.PropertyID, window daterange.DateRange) (domainavailability.Calendar, error) {
	return support.ReadOnly(ctx, factory, func(ctx context.Context, unit uow.UnitOfWork) (domainavailability.Calendar, error) {
		if _, err := unit.Properties().ByID(ctx, propertyID); err != nil {
			return domainavailability.Calendar{}, err
		}
		bookings, err := unit.Bookings().ListByProperty(ctx, propertyID)
		if err != nil {
			return domainavailability.Calendar{}, err
		}
		blocks, err := unit.Blocks().ListByProperty(ctx, propertyID)
		if err != nil {
			return domainavailability.Calendar{}, err
		}
		return domainavailability.BuildCalendar(propertyID, window, bookings, blocks), nil
	})
}

func parseWindow(from, to string) (daterange.DateRange, error) {
	if strings.TrimSpace(from) == "" && strings.TrimSpace(to) == "" {
		return daterange.DateRange{}, nil
	}
	return daterange.Parse(from, to)
}

var _ queries.Handler[GetCalendarQuery, dto.Calendar] = (*GetCalendarHandler)(nil)
