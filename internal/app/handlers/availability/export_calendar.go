package availability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bookingcore/internal/app/commands"
	"bookingcore/internal/app/dto"
	"bookingcore/internal/app/policies"
	"bookingcore/internal/app/uow"
	"bookingcore/internal/domain/property"
	"bookingcore/internal/domain/shared/daterange"
)

const exportCalendarKey = "availability.export"

var ErrExportDisabled = errors.New("availability: calendar export is not configured")

// ExportCalendarCommand writes the property's full calendar to object storage.
type ExportCalendarCommand struct {
	PropertyID string `validate:"required"`
}

func (c ExportCalendarCommand) Key() string { return exportCalendarKey }

type ExportCalendarHandler struct {
	UoWFactory uow.UoWFactory
	Store      policies.CalendarStore
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *ExportCalendarHandler) Handle(ctx context.Context, cmd ExportCalendarCommand) (*dto.CalendarExport, error) {
	if h.Store == nil {
		return nil, ErrExportDisabled
	}
	propertyID := property.PropertyID(strings.TrimSpace(cmd.PropertyID))
	cal, err := loadCalendar(ctx, h.UoWFactory, propertyID, daterange.DateRange{})
	if err != nil {
		return nil, err
	}
	payload, err := json.MarshalIndent(dto.MapCalendar(cal), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("availability: encode calendar: %w", err)
	}
	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now().UTC()
	}
	key := fmt.Sprintf("calendars/%s/%s.json", propertyID, now.Format("20060102T150405Z"))
	url, err := h.Store.Upload(ctx, key, bytes.NewReader(payload), "application/json")
	if err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "calendar exported", "property_id", propertyID, "key", key, "entries", len(cal.Entries))
	}
	return &dto.CalendarExport{PropertyID: string(propertyID), ObjectKey: key, URL: url, Entries: len(cal.Entries)}, nil
}

var _ commands.Handler[ExportCalendarCommand, *dto.CalendarExport] = (*ExportCalendarHandler)(nil)
