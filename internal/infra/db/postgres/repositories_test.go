package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingcore/internal/app/middleware"
	domainblock "bookingcore/internal/domain/block"
	domainbooking "bookingcore/internal/domain/booking"
	domainproperty "bookingcore/internal/domain/property"
	"bookingcore/internal/domain/shared/daterange"
	infraoutbox "bookingcore/internal/infra/outbox"
)

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

// stubQuerier answers every statement with a fixed tag or row error and records the SQL args.
type stubQuerier struct {
	tag  pgconn.CommandTag
	row  pgx.Row
	args []any
}

func (q *stubQuerier) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	q.args = args
	return q.tag, nil
}

func (q *stubQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (q *stubQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	q.args = args
	return q.row
}

func TestPropertyByIDMapsNoRows(t *testing.T) {
	repo := PropertyRepository{q: &stubQuerier{row: errRow{err: pgx.ErrNoRows}}}
	_, err := repo.ByID(context.Background(), "p1")
	require.ErrorIs(t, err, domainproperty.ErrPropertyNotFound)
}

func TestDeleteMissingRowsAreNotFound(t *testing.T) {
	q := &stubQuerier{tag: pgconn.NewCommandTag("DELETE 0")}
	require.ErrorIs(t, BookingRepository{q: q}.Delete(context.Background(), "b1"), domainbooking.ErrBookingNotFound)
	require.ErrorIs(t, BlockRepository{q: q}.Delete(context.Background(), "k1"), domainblock.ErrBlockNotFound)
}

func TestSaveDetectsStaleVersion(t *testing.T) {
	r, err := daterange.Parse("2024-02-01", "2024-02-05")
	require.NoError(t, err)
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{ID: "b1", PropertyID: "p1", Range: r, CreatedAt: time.Now()})
	require.NoError(t, err)
	b.Version = 3

	q := &stubQuerier{tag: pgconn.NewCommandTag("INSERT 0 0")}
	require.ErrorIs(t, BookingRepository{q: q}.Save(context.Background(), b), ErrConcurrentUpdate)
	assert.Equal(t, int64(3), b.Version)
	assert.Equal(t, int64(4), q.args[9], "next version")
	assert.Equal(t, int64(3), q.args[10], "expected version")
	assert.Nil(t, q.args[8], "unset last update is stored as NULL")

	q.tag = pgconn.NewCommandTag("INSERT 0 1")
	require.NoError(t, BookingRepository{q: q}.Save(context.Background(), b))
	assert.Equal(t, int64(4), b.Version)
}

func TestClaimEmptyOutbox(t *testing.T) {
	store := NewOutboxStore(&stubQuerier{row: errRow{err: pgx.ErrNoRows}})
	msg, err := store.Claim(context.Background(), "w1")
	require.NoError(t, err)
	assert.Nil(t, msg)
}

func TestClaimPassesLeaseCutoff(t *testing.T) {
	q := &stubQuerier{row: errRow{err: pgx.ErrNoRows}}
	before := time.Now()
	_, err := NewOutboxStore(q).Claim(context.Background(), "w1")
	require.NoError(t, err)

	require.Len(t, q.args, 5)
	assert.Equal(t, stateClaimed, q.args[0])
	cutoff, ok := q.args[4].(time.Time)
	require.True(t, ok)
	assert.WithinDuration(t, before.Add(-infraoutbox.DefaultClaimLease), cutoff, time.Second)
}

func TestIdempotencySaveStoresFingerprint(t *testing.T) {
	q := &stubQuerier{tag: pgconn.NewCommandTag("INSERT 0 1")}
	store := NewIdempotencyStore(q, time.Hour)
	rec := middleware.IdempotencyRecord{Key: "k", Command: "booking.create", Fingerprint: "abc", Payload: []byte(`{}`), OccurredAt: time.Now()}
	require.NoError(t, store.Save(context.Background(), rec))
	require.Len(t, q.args, 5)
	assert.Equal(t, "abc", q.args[2])
}

func TestIdempotencyMissingKey(t *testing.T) {
	store := NewIdempotencyStore(&stubQuerier{row: errRow{err: pgx.ErrNoRows}}, time.Hour)
	_, ok, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
