package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingcore/internal/domain/block"
	"bookingcore/internal/domain/booking"
)

func TestBuildCalendarFiltersAndSorts(t *testing.T) {
	bookings := []*booking.Booking{
		newBooking(t, "late", dr(t, "2024-03-10", "2024-03-12"), booking.StatusCreated),
		newBooking(t, "gone", dr(t, "2024-03-01", "2024-03-02"), booking.StatusCanceled),
		newBooking(t, "outside", dr(t, "2024-05-01", "2024-05-02"), booking.StatusCreated),
	}
	blocks := []*block.Block{newBlock(t, "maint", dr(t, "2024-03-03", "2024-03-04"))}

	cal := BuildCalendar(testProperty, dr(t, "2024-03-01", "2024-03-31"), bookings, blocks)
	require.Len(t, cal.Entries, 2)
	assert.Equal(t, "maint", cal.Entries[0].Reference)
	assert.Equal(t, KindBlock, cal.Entries[0].Kind)
	assert.Equal(t, "late", cal.Entries[1].Reference)
	assert.Equal(t, "CREATED", cal.Entries[1].Status)
}

func TestBuildCalendarWithoutWindowKeepsAll(t *testing.T) {
	bookings := []*booking.Booking{newBooking(t, "b1", dr(t, "2030-01-01", "2030-01-02"), booking.StatusRebooked)}
	cal := BuildCalendar(testProperty, dr(t, "2024-01-01", "2024-01-01"), nil, nil)
	assert.Empty(t, cal.Entries)

	cal = BuildCalendar(testProperty, Calendar{}.Window, bookings, nil)
	assert.Len(t, cal.Entries, 1)
}

func TestOccupiedSpansMergesAdjacent(t *testing.T) {
	bookings := []*booking.Booking{
		newBooking(t, "b1", dr(t, "2024-03-01", "2024-03-03"), booking.StatusCreated),
		newBooking(t, "b2", dr(t, "2024-03-10", "2024-03-11"), booking.StatusCreated),
	}
	blocks := []*block.Block{newBlock(t, "k1", dr(t, "2024-03-04", "2024-03-05"))}

	spans := BuildCalendar(testProperty, Calendar{}.Window, bookings, blocks).OccupiedSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "2024-03-01..2024-03-05", spans[0].String())
	assert.Equal(t, "2024-03-10..2024-03-11", spans[1].String())
}
