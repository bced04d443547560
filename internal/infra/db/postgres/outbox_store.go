package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	appoutbox "bookingcore/internal/app/outbox"
	infraoutbox "bookingcore/internal/infra/outbox"
)

const (
	stateNew     = "NEW"
	stateClaimed = "CLAIMED"
	stateSent    = "SENT"
	stateFailed  = "FAILED"
)

// OutboxStore inserts through a transaction when built by a Unit and
// relays through the pool when built by NewOutboxStore.
type OutboxStore struct {
	q     Querier
	lease time.Duration
}

func NewOutboxStore(q Querier) *OutboxStore {
	return &OutboxStore{q: q, lease: infraoutbox.DefaultClaimLease}
}

func (s *OutboxStore) Add(ctx context.Context, record appoutbox.EventRecord) error {
	headers, err := json.Marshal(headersOrEmpty(record.Headers))
	if err != nil {
		return err
	}
	_, err = s.q.Exec(ctx, `
		INSERT INTO outbox (id, name, aggregate, payload, headers, occurred_at, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.ID, record.Name, record.Aggregate, record.Payload, headers, record.OccurredAt, stateNew)
	return err
}

// Flush is a no-op; the relay delivers committed rows.
func (s *OutboxStore) Flush(context.Context) error {
	return nil
}

// Claim takes the oldest due row, or a claimed row whose lease ran out.
// SKIP LOCKED lets several relays share the table.
func (s *OutboxStore) Claim(ctx context.Context, workerID string) (*infraoutbox.Message, error) {
	var (
		msg     infraoutbox.Message
		headers []byte
	)
	err := s.q.QueryRow(ctx, `
		UPDATE outbox SET state = $1, claimed_by = $2, claimed_at = now()
		WHERE id = (
			SELECT id FROM outbox
			WHERE (state IN ($3, $4) AND next_attempt_at <= now())
			   OR (state = $1 AND claimed_at < $5)
			ORDER BY created_at
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING id, name, aggregate, payload, headers, occurred_at, attempts`,
		stateClaimed, workerID, stateNew, stateFailed, time.Now().Add(-s.lease),
	).Scan(&msg.ID, &msg.Name, &msg.Aggregate, &msg.Payload, &headers, &msg.OccurredAt, &msg.Attempts)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(headers, &msg.Headers); err != nil {
		return nil, err
	}
	msg.OccurredAt = msg.OccurredAt.UTC()
	return &msg, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, id string) error {
	_, err := s.q.Exec(ctx, `UPDATE outbox SET state = $1 WHERE id = $2`, stateSent, id)
	return err
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	_, err := s.q.Exec(ctx, `
		UPDATE outbox SET state = $1, next_attempt_at = $2, last_error = $3, attempts = attempts + 1
		WHERE id = $4`, stateFailed, next, errMsg, id)
	return err
}

func headersOrEmpty(h map[string]string) map[string]string {
	if h == nil {
		return map[string]string{}
	}
	return h
}

var (
	_ appoutbox.Outbox  = (*OutboxStore)(nil)
	_ infraoutbox.Store = (*OutboxStore)(nil)
)
