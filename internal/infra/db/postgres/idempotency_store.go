package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"bookingcore/internal/app/middleware"
)

// IdempotencyStore keeps command results for TTL; expired rows read as absent.
type IdempotencyStore struct {
	q   Querier
	ttl time.Duration
}

func NewIdempotencyStore(q Querier, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{q: q, ttl: ttl}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	rec := middleware.IdempotencyRecord{Key: key}
	var createdAt time.Time
	err := s.q.QueryRow(ctx,
		`SELECT command, fingerprint, payload, occurred_at, created_at FROM idempotency_keys WHERE key = $1`, key,
	).Scan(&rec.Command, &rec.Fingerprint, &rec.Payload, &rec.OccurredAt, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return middleware.IdempotencyRecord{}, false, nil
	}
	if err != nil {
		return middleware.IdempotencyRecord{}, false, err
	}
	if s.ttl > 0 && time.Since(createdAt) > s.ttl {
		return middleware.IdempotencyRecord{}, false, nil
	}
	rec.OccurredAt = rec.OccurredAt.UTC()
	return rec, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO idempotency_keys (key, command, fingerprint, payload, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (key) DO UPDATE SET
			command = EXCLUDED.command, fingerprint = EXCLUDED.fingerprint, payload = EXCLUDED.payload,
			occurred_at = EXCLUDED.occurred_at, created_at = EXCLUDED.created_at`,
		rec.Key, rec.Command, rec.Fingerprint, rec.Payload, rec.OccurredAt)
	return err
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
