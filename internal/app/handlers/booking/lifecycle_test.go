package booking

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingcore/internal/app/dto"
	"bookingcore/internal/app/locks"
	"bookingcore/internal/domain/availability"
	domainbooking "bookingcore/internal/domain/booking"
	"bookingcore/internal/domain/property"
	"bookingcore/internal/domain/shared/daterange"
	"bookingcore/internal/infra/storage/memory"
)

type harness struct {
	lc       *Lifecycle
	locker   *memory.PropertyLocks
	bookings *memory.BookingRepository
	box      *memory.Outbox
	clock    time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	props := memory.NewPropertyRepository()
	p, err := property.New("p1", "Owner", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, props.Save(context.Background(), p))

	h := &harness{
		locker:   memory.NewPropertyLocks(time.Second),
		bookings: memory.NewBookingRepository(),
		box:      memory.NewOutbox(),
		clock:    time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
	}
	var seq int64
	h.lc = &Lifecycle{
		UoWFactory: memory.Factory{
			PropertiesRepo: props,
			BookingsRepo:   h.bookings,
			BlocksRepo:     memory.NewBlockRepository(),
			Box:            h.box,
		},
		Locks: h.locker,
		Now: func() time.Time {
			h.clock = h.clock.Add(time.Minute)
			return h.clock
		},
		NewID: func() string { return fmt.Sprintf("b%d", atomic.AddInt64(&seq, 1)) },
	}
	return h
}

func (h *harness) create(t *testing.T, start, end string) *dto.Booking {
	t.Helper()
	out, err := h.lc.Create(context.Background(), CreateBookingCommand{PropertyID: "p1", StartDate: start, EndDate: end, GuestName: "Ada", GuestLast4SSN: "1234"})
	require.NoError(t, err)
	return out
}

func eventNames(box *memory.Outbox) []string {
	var names []string
	for _, rec := range box.Pending() {
		names = append(names, rec.Name)
	}
	return names
}

func TestCreateBooking(t *testing.T) {
	h := newHarness(t)
	out := h.create(t, "2024-02-01", "2024-02-05")

	assert.Equal(t, "b1", out.ID)
	assert.Equal(t, "CREATED", out.Status)
	assert.Equal(t, "Booked", out.StatusLabel)
	assert.Equal(t, "2024-02-01", out.StartDate)
	assert.Equal(t, "2024-02-05", out.EndDate)
	assert.Nil(t, out.LastUpdatedAt)
	assert.Equal(t, []string{"booking.created"}, eventNames(h.box))

	stored, err := h.bookings.ByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCreated, stored.Status)
}

func TestCreateBookingRejections(t *testing.T) {
	h := newHarness(t)
	h.create(t, "2024-02-01", "2024-02-05")

	cases := []struct {
		name string
		cmd  CreateBookingCommand
		want error
	}{
		{"unknown property", CreateBookingCommand{PropertyID: "nope", StartDate: "2024-03-01", EndDate: "2024-03-02"}, property.ErrPropertyNotFound},
		{"inverted range", CreateBookingCommand{PropertyID: "p1", StartDate: "2024-03-05", EndDate: "2024-03-01"}, availability.ErrInvalidRange},
		{"malformed date", CreateBookingCommand{PropertyID: "p1", StartDate: "03/05/2024", EndDate: "2024-03-06"}, daterange.ErrMalformedDate},
		{"touching last day", CreateBookingCommand{PropertyID: "p1", StartDate: "2024-02-05", EndDate: "2024-02-07"}, availability.ErrOverlapConflict},
		{"touching first day", CreateBookingCommand{PropertyID: "p1", StartDate: "2024-01-28", EndDate: "2024-02-01"}, availability.ErrOverlapConflict},
		{"missing property", CreateBookingCommand{StartDate: "2024-03-01", EndDate: "2024-03-02"}, domainbooking.ErrPropertyRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.lc.Create(context.Background(), tc.cmd)
			require.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, []string{"booking.created"}, eventNames(h.box))
}

func TestCreateBookingSingleDay(t *testing.T) {
	h := newHarness(t)
	out := h.create(t, "2024-02-01", "2024-02-01")
	assert.Equal(t, out.StartDate, out.EndDate)

	_, err := h.lc.Create(context.Background(), CreateBookingCommand{PropertyID: "p1", StartDate: "2024-02-01", EndDate: "2024-02-01"})
	require.ErrorIs(t, err, availability.ErrOverlapConflict)
}

func TestConcurrentCreatesAdmitExactlyOne(t *testing.T) {
	h := newHarness(t)
	const workers = 8

	var (
		wg        sync.WaitGroup
		successes int32
		conflicts int32
		start     = make(chan struct{})
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := h.lc.Create(context.Background(), CreateBookingCommand{PropertyID: "p1", StartDate: "2024-02-01", EndDate: "2024-02-05"})
			switch {
			case err == nil:
				atomic.AddInt32(&successes, 1)
			case assert.ErrorIs(t, err, availability.ErrOverlapConflict):
				atomic.AddInt32(&conflicts, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), successes)
	assert.Equal(t, int32(workers-1), conflicts)
	items, err := h.bookings.ListByProperty(context.Background(), "p1")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCreateTimesOutWhileLockHeld(t *testing.T) {
	h := newHarness(t)
	h.locker.Wait = 10 * time.Millisecond
	release, err := h.locker.Acquire(context.Background(), locks.PropertyKey("p1"))
	require.NoError(t, err)
	defer release()

	_, err = h.lc.Create(context.Background(), CreateBookingCommand{PropertyID: "p1", StartDate: "2024-02-01", EndDate: "2024-02-05"})
	require.ErrorIs(t, err, locks.ErrLockTimeout)
	assert.Empty(t, eventNames(h.box))
}

func TestUpdateIgnoresOwnReservation(t *testing.T) {
	h := newHarness(t)
	b := h.create(t, "2024-02-01", "2024-02-05")

	out, err := h.lc.Update(context.Background(), UpdateBookingCommand{BookingID: b.ID, StartDate: "2024-02-03", EndDate: "2024-02-08", GuestName: "Grace", GuestLast4SSN: "9876"})
	require.NoError(t, err)
	assert.Equal(t, "2024-02-03", out.StartDate)
	assert.Equal(t, "2024-02-08", out.EndDate)
	assert.Equal(t, "Grace", out.GuestName)
	assert.Equal(t, "Updated", out.StatusLabel)
	assert.Equal(t, "CREATED", out.Status)
	require.NotNil(t, out.LastUpdatedAt)

	got, err := h.lc.Get(context.Background(), GetBookingQuery{BookingID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, "Booked", got.StatusLabel)
}

func TestUpdateConflictsWithOtherBooking(t *testing.T) {
	h := newHarness(t)
	h.create(t, "2024-02-01", "2024-02-05")
	second := h.create(t, "2024-02-10", "2024-02-12")

	_, err := h.lc.Update(context.Background(), UpdateBookingCommand{BookingID: second.ID, StartDate: "2024-02-05", EndDate: "2024-02-12"})
	require.ErrorIs(t, err, availability.ErrOverlapConflict)

	stored, err := h.bookings.ByID(context.Background(), domainbooking.BookingID(second.ID))
	require.NoError(t, err)
	assert.Equal(t, "2024-02-10..2024-02-12", stored.Range.String())
}

func TestUpdateCanceledBookingFails(t *testing.T) {
	h := newHarness(t)
	b := h.create(t, "2024-02-01", "2024-02-05")
	_, err := h.lc.Cancel(context.Background(), CancelBookingCommand{BookingID: b.ID})
	require.NoError(t, err)

	_, err = h.lc.Update(context.Background(), UpdateBookingCommand{BookingID: b.ID, StartDate: "2024-03-01", EndDate: "2024-03-02"})
	require.ErrorIs(t, err, domainbooking.ErrInvalidTransition)
}

func TestUpdateMissingBooking(t *testing.T) {
	h := newHarness(t)
	_, err := h.lc.Update(context.Background(), UpdateBookingCommand{BookingID: "ghost", StartDate: "2024-03-01", EndDate: "2024-03-02"})
	require.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
}

func TestCancelFreesDatesAndIsRepeatable(t *testing.T) {
	h := newHarness(t)
	b := h.create(t, "2024-02-01", "2024-02-05")

	out, err := h.lc.Cancel(context.Background(), CancelBookingCommand{BookingID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, "CANCELED", out.Status)
	assert.Equal(t, "Canceled", out.StatusLabel)

	_, err = h.lc.Cancel(context.Background(), CancelBookingCommand{BookingID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"booking.created", "booking.canceled"}, eventNames(h.box))

	h.create(t, "2024-02-03", "2024-02-04")
}

func TestRebook(t *testing.T) {
	h := newHarness(t)
	b := h.create(t, "2024-02-01", "2024-02-05")

	_, err := h.lc.Rebook(context.Background(), RebookBookingCommand{BookingID: b.ID})
	require.ErrorIs(t, err, domainbooking.ErrInvalidTransition)

	_, err = h.lc.Cancel(context.Background(), CancelBookingCommand{BookingID: b.ID})
	require.NoError(t, err)
	out, err := h.lc.Rebook(context.Background(), RebookBookingCommand{BookingID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, "REBOOKED", out.Status)
	assert.Equal(t, "Rebooked", out.StatusLabel)

	_, err = h.lc.Create(context.Background(), CreateBookingCommand{PropertyID: "p1", StartDate: "2024-02-05", EndDate: "2024-02-06"})
	require.ErrorIs(t, err, availability.ErrOverlapConflict, "rebooked dates are occupied again")
}

func TestRebookFailsWhenDatesWereTaken(t *testing.T) {
	h := newHarness(t)
	b := h.create(t, "2024-02-01", "2024-02-05")
	_, err := h.lc.Cancel(context.Background(), CancelBookingCommand{BookingID: b.ID})
	require.NoError(t, err)
	h.create(t, "2024-02-04", "2024-02-06")

	_, err = h.lc.Rebook(context.Background(), RebookBookingCommand{BookingID: b.ID})
	require.ErrorIs(t, err, availability.ErrOverlapConflict)

	stored, err := h.bookings.ByID(context.Background(), domainbooking.BookingID(b.ID))
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCanceled, stored.Status)
}

func TestDeleteBooking(t *testing.T) {
	h := newHarness(t)
	b := h.create(t, "2024-02-01", "2024-02-05")

	_, err := h.lc.Delete(context.Background(), DeleteBookingCommand{BookingID: b.ID})
	require.NoError(t, err)
	_, err = h.lc.Get(context.Background(), GetBookingQuery{BookingID: b.ID})
	require.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
	_, err = h.lc.Delete(context.Background(), DeleteBookingCommand{BookingID: b.ID})
	require.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
	assert.Equal(t, []string{"booking.created", "booking.deleted"}, eventNames(h.box))

	h.create(t, "2024-02-01", "2024-02-05")
}

func TestListByPropertyNewestFirst(t *testing.T) {
	h := newHarness(t)
	first := h.create(t, "2024-02-01", "2024-02-02")
	second := h.create(t, "2024-01-01", "2024-01-02")
	_, err := h.lc.Cancel(context.Background(), CancelBookingCommand{BookingID: first.ID})
	require.NoError(t, err)

	all, err := h.lc.ListByProperty(context.Background(), ListPropertyBookingsQuery{PropertyID: "p1"})
	require.NoError(t, err)
	require.Len(t, all.Items, 2)
	assert.Equal(t, second.ID, all.Items[0].ID)
	assert.Equal(t, first.ID, all.Items[1].ID)

	active, err := h.lc.ListByProperty(context.Background(), ListPropertyBookingsQuery{PropertyID: "p1", ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active.Items, 1)
	assert.Equal(t, second.ID, active.Items[0].ID)

	_, err = h.lc.ListByProperty(context.Background(), ListPropertyBookingsQuery{PropertyID: "nope"})
	require.ErrorIs(t, err, property.ErrPropertyNotFound)
}
