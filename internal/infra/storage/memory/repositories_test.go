package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainblock "bookingcore/internal/domain/block"
	domainbooking "bookingcore/internal/domain/booking"
	domainproperty "bookingcore/internal/domain/property"
	"bookingcore/internal/domain/shared/daterange"
)

func rng(t *testing.T, start, end string) daterange.DateRange {
	t.Helper()
	r, err := daterange.Parse(start, end)
	require.NoError(t, err)
	return r
}

func seedBooking(t *testing.T, repo *BookingRepository, id, property string, r daterange.DateRange) *domainbooking.Booking {
	t.Helper()
	if property == "" {
		property = "p1"
	}
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(id),
		PropertyID: domainproperty.PropertyID(property),
		Range:      r,
		CreatedAt:  time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), b))
	return b
}

func TestBookingFindOverlapping(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()
	seedBooking(t, repo, "a", "", rng(t, "2024-02-01", "2024-02-05"))
	seedBooking(t, repo, "b", "", rng(t, "2024-02-10", "2024-02-12"))
	seedBooking(t, repo, "other", "p2", rng(t, "2024-02-01", "2024-02-28"))
	canceled := seedBooking(t, repo, "c", "", rng(t, "2024-02-06", "2024-02-09"))
	canceled.Cancel(time.Now())
	require.NoError(t, repo.Save(ctx, canceled))

	found, err := repo.FindOverlapping(ctx, "p1", rng(t, "2024-02-05", "2024-02-10"), "")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, domainbooking.BookingID("a"), found[0].ID)
	assert.Equal(t, domainbooking.BookingID("b"), found[1].ID)

	found, err = repo.FindOverlapping(ctx, "p1", rng(t, "2024-02-05", "2024-02-10"), "a")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, domainbooking.BookingID("b"), found[0].ID)

	found, err = repo.FindOverlapping(ctx, "p1", rng(t, "2024-02-06", "2024-02-09"), "")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestBookingRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewBookingRepository()
	seedBooking(t, repo, "a", "", rng(t, "2024-02-01", "2024-02-05"))

	loaded, err := repo.ByID(ctx, "a")
	require.NoError(t, err)
	loaded.Cancel(time.Now())

	again, err := repo.ByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCreated, again.Status)
	assert.Empty(t, again.PendingEvents())
}

func TestBookingDeleteMissing(t *testing.T) {
	err := NewBookingRepository().Delete(context.Background(), "nope")
	require.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
}

func TestBlockFindOverlappingTouchingDay(t *testing.T) {
	ctx := context.Background()
	repo := NewBlockRepository()
	b, err := domainblock.NewBlock(domainblock.CreateParams{ID: "k1", PropertyID: "p1", Range: rng(t, "2024-03-01", "2024-03-03"), CreatedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, b))

	found, err := repo.FindOverlapping(ctx, "p1", rng(t, "2024-03-03", "2024-03-04"), "")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = repo.FindOverlapping(ctx, "p1", rng(t, "2024-03-04", "2024-03-04"), "")
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = repo.ByID(ctx, "missing")
	require.ErrorIs(t, err, domainblock.ErrBlockNotFound)
}
