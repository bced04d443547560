package block

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingcore/internal/domain/availability"
	domainblock "bookingcore/internal/domain/block"
	domainbooking "bookingcore/internal/domain/booking"
	"bookingcore/internal/domain/property"
	"bookingcore/internal/domain/shared/daterange"
	"bookingcore/internal/infra/storage/memory"
)

type harness struct {
	lc       *Lifecycle
	bookings *memory.BookingRepository
	blocks   *memory.BlockRepository
	box      *memory.Outbox
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	props := memory.NewPropertyRepository()
	p, err := property.New("p1", "Owner", time.Now())
	require.NoError(t, err)
	require.NoError(t, props.Save(ctx, p))

	h := &harness{
		bookings: memory.NewBookingRepository(),
		blocks:   memory.NewBlockRepository(),
		box:      memory.NewOutbox(),
	}
	seq := 0
	h.lc = &Lifecycle{
		UoWFactory: memory.Factory{PropertiesRepo: props, BookingsRepo: h.bookings, BlocksRepo: h.blocks, Box: h.box},
		Locks:      memory.NewPropertyLocks(time.Second),
		NewID: func() string {
			seq++
			return fmt.Sprintf("k%d", seq)
		},
	}
	return h
}

func (h *harness) seedBooking(t *testing.T, start, end string) {
	t.Helper()
	r, err := daterange.Parse(start, end)
	require.NoError(t, err)
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{ID: "b1", PropertyID: "p1", Range: r, CreatedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, h.bookings.Save(context.Background(), b))
}

func TestCreateBlock(t *testing.T) {
	h := newHarness(t)
	out, err := h.lc.Create(context.Background(), CreateBlockCommand{PropertyID: "p1", StartDate: "2024-04-01", EndDate: "2024-04-03", Reason: " painting "})
	require.NoError(t, err)
	assert.Equal(t, "k1", out.ID)
	assert.Equal(t, "2024-04-01", out.StartDate)
	assert.Equal(t, "2024-04-03", out.EndDate)
	require.Len(t, h.box.Pending(), 1)
	assert.Equal(t, "block.created", h.box.Pending()[0].Name)

	_, err = h.lc.Create(context.Background(), CreateBlockCommand{PropertyID: "p1", StartDate: "2024-04-03", EndDate: "2024-04-04"})
	require.ErrorIs(t, err, availability.ErrOverlapConflict)

	_, err = h.lc.Create(context.Background(), CreateBlockCommand{PropertyID: "p1", StartDate: "2024-04-09", EndDate: "2024-04-04"})
	require.ErrorIs(t, err, availability.ErrInvalidRange)

	_, err = h.lc.Create(context.Background(), CreateBlockCommand{PropertyID: "ghost", StartDate: "2024-05-01", EndDate: "2024-05-02"})
	require.ErrorIs(t, err, property.ErrPropertyNotFound)
}

func TestCreateBlockOverBookingDependsOnPolicy(t *testing.T) {
	h := newHarness(t)
	h.seedBooking(t, "2024-04-01", "2024-04-05")

	_, err := h.lc.Create(context.Background(), CreateBlockCommand{PropertyID: "p1", StartDate: "2024-04-02", EndDate: "2024-04-03"})
	require.NoError(t, err, "blocks only collide with blocks by default")

	h.lc.Validator = availability.Validator{BlocksCheckBookings: true}
	_, err = h.lc.Create(context.Background(), CreateBlockCommand{PropertyID: "p1", StartDate: "2024-04-05", EndDate: "2024-04-06"})
	require.ErrorIs(t, err, availability.ErrOverlapConflict)
}

func TestUpdateBlock(t *testing.T) {
	h := newHarness(t)
	first, err := h.lc.Create(context.Background(), CreateBlockCommand{PropertyID: "p1", StartDate: "2024-04-01", EndDate: "2024-04-03"})
	require.NoError(t, err)
	_, err = h.lc.Create(context.Background(), CreateBlockCommand{PropertyID: "p1", StartDate: "2024-04-10", EndDate: "2024-04-12"})
	require.NoError(t, err)

	out, err := h.lc.Update(context.Background(), UpdateBlockCommand{BlockID: first.ID, StartDate: "2024-04-02", EndDate: "2024-04-06"})
	require.NoError(t, err)
	assert.Equal(t, "2024-04-06", out.EndDate)
	require.NotNil(t, out.LastUpdatedAt)

	_, err = h.lc.Update(context.Background(), UpdateBlockCommand{BlockID: first.ID, StartDate: "2024-04-02", EndDate: "2024-04-10"})
	require.ErrorIs(t, err, availability.ErrOverlapConflict)

	_, err = h.lc.Update(context.Background(), UpdateBlockCommand{BlockID: "ghost", StartDate: "2024-04-02", EndDate: "2024-04-10"})
	require.ErrorIs(t, err, domainblock.ErrBlockNotFound)
}

func TestDeleteBlock(t *testing.T) {
	h := newHarness(t)
	b, err := h.lc.Create(context.Background(), CreateBlockCommand{PropertyID: "p1", StartDate: "2024-04-01", EndDate: "2024-04-03"})
	require.NoError(t, err)

	_, err = h.lc.Delete(context.Background(), DeleteBlockCommand{BlockID: b.ID})
	require.NoError(t, err)
	_, err = h.lc.Get(context.Background(), GetBlockQuery{BlockID: b.ID})
	require.ErrorIs(t, err, domainblock.ErrBlockNotFound)

	var names []string
	for _, rec := range h.box.Pending() {
		names = append(names, rec.Name)
	}
	assert.Equal(t, []string{"block.created", "block.deleted"}, names)

	_, err = h.lc.Create(context.Background(), CreateBlockCommand{PropertyID: "p1", StartDate: "2024-04-01", EndDate: "2024-04-03"})
	require.NoError(t, err)
}
