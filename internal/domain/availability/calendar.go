package availability

import (
	"sort"

	"bookingcore/internal/domain/block"
	"bookingcore/internal/domain/booking"
	"bookingcore/internal/domain/property"
	"bookingcore/internal/domain/shared/daterange"
)

type EntryKind string

const (
	KindBooking EntryKind = "BOOKING"
	KindBlock   EntryKind = "BLOCK"
)

// Entry is one occupied range on a property calendar.
type Entry struct {
	Range     daterange.DateRange
	Kind      EntryKind
	Reference string
	Status    string
}

// Calendar is a read model of everything occupying a property within a window.
type Calendar struct {
	PropertyID property.PropertyID
	Window     daterange.DateRange
	Entries    []Entry
}

// BuildCalendar keeps active bookings and blocks intersecting window, sorted by start.
// A zero window keeps everything.
func BuildCalendar(propertyID property.PropertyID, window daterange.DateRange, bookings []*booking.Booking, blocks []*block.Block) Calendar {
	cal := Calendar{PropertyID: propertyID, Window: window}
	bounded := window.Validate() == nil
	for _, b := range bookings {
		if !b.Active() || (bounded && !b.Range.Overlaps(window)) {
			continue
		}
		cal.Entries = append(cal.Entries, Entry{Range: b.Range, Kind: KindBooking, Reference: string(b.ID), Status: string(b.Status)})
	}
	for _, b := range blocks {
		if bounded && !b.Range.Overlaps(window) {
			continue
		}
		cal.Entries = append(cal.Entries, Entry{Range: b.Range, Kind: KindBlock, Reference: string(b.ID)})
	}
	sort.SliceStable(cal.Entries, func(i, j int) bool {
		if cal.Entries[i].Range.Start.Equal(cal.Entries[j].Range.Start) {
			return cal.Entries[i].Kind < cal.Entries[j].Kind
		}
		return cal.Entries[i].Range.Start.Before(cal.Entries[j].Range.Start)
	})
	return cal
}

// OccupiedSpans merges overlapping and adjacent entries into contiguous ranges.
func (c Calendar) OccupiedSpans() []daterange.DateRange {
	spans := make([]daterange.DateRange, 0, len(c.Entries))
	for _, e := range c.Entries {
		if n := len(spans); n > 0 {
			if merged, ok := spans[n-1].Merge(e.Range); ok {
				spans[n-1] = merged
				continue
			}
		}
		spans = append(spans, e.Range)
	}
	return spans
}
