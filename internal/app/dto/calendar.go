package dto

import (
	"bookingcore/internal/domain/availability"
	"bookingcore/internal/domain/shared/daterange"
)

type CalendarEntry struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Kind      string `json:"kind"`
	Reference string `json:"reference"`
	Status    string `json:"status,omitempty"`
}

type CalendarSpan struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type Calendar struct {
	PropertyID string          `json:"property_id"`
	From       string          `json:"from,omitempty"`
	To         string          `json:"to,omitempty"`
	Entries    []CalendarEntry `json:"entries"`
	Occupied   []CalendarSpan  `json:"occupied"`
}

func MapCalendar(cal availability.Calendar) Calendar {
	out := Calendar{
		PropertyID: string(cal.PropertyID),
		Entries:    make([]CalendarEntry, 0, len(cal.Entries)),
	}
	if cal.Window.Validate() == nil {
		out.From = cal.Window.Start.Format(daterange.Layout)
		out.To = cal.Window.End.Format(daterange.Layout)
	}
	for _, e := range cal.Entries {
		out.Entries = append(out.Entries, CalendarEntry{
			StartDate: e.Range.Start.Format(daterange.Layout),
			EndDate:   e.Range.End.Format(daterange.Layout),
			Kind:      string(e.Kind),
			Reference: e.Reference,
			Status:    e.Status,
		})
	}
	spans := cal.OccupiedSpans()
	out.Occupied = make([]CalendarSpan, 0, len(spans))
	for _, s := range spans {
		out.Occupied = append(out.Occupied, CalendarSpan{StartDate: s.Start.Format(daterange.Layout), EndDate: s.End.Format(daterange.Layout)})
	}
	return out
}

type Availability struct {
	PropertyID string   `json:"property_id"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
	Available  bool     `json:"available"`
	Bookings   []string `json:"conflicting_bookings"`
	Blocks     []string `json:"conflicting_blocks"`
}

func MapAvailability(r availability.Report) Availability {
	out := Availability{
		PropertyID: string(r.PropertyID),
		StartDate:  r.Range.Start.Format(daterange.Layout),
		EndDate:    r.Range.End.Format(daterange.Layout),
		Available:  r.Available(),
		Bookings:   make([]string, 0, len(r.Bookings)),
		Blocks:     make([]string, 0, len(r.Blocks)),
	}
	for _, id := range r.Bookings {
		out.Bookings = append(out.Bookings, string(id))
	}
	for _, id := range r.Blocks {
		out.Blocks = append(out.Blocks, string(id))
	}
	return out
}

type CalendarExport struct {
	PropertyID string `json:"property_id"`
	ObjectKey  string `json:"object_key"`
	URL        string `json:"url"`
	Entries    int    `json:"entries"`
}
