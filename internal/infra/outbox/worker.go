package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	appoutbox "bookingcore/internal/app/outbox"
)

// Message is an outbox record claimed for delivery.
type Message struct {
	appoutbox.EventRecord
	Attempts int
}

// DefaultClaimLease is how long a claimed record stays with its worker before
// another worker may take it over.
const DefaultClaimLease = 5 * time.Minute

// Store is the delivery side of an outbox table. Claim also returns records
// whose claim is older than the store's lease.
type Store interface {
	Claim(ctx context.Context, workerID string) (*Message, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error
}

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Worker relays outbox records to the broker as CloudEvents.
type Worker struct {
	Store       Store
	Producer    Producer
	Logger      *slog.Logger
	Interval    time.Duration
	BatchSize   int
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
}

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Drain(ctx); err != nil && ctx.Err() == nil {
				w.logError("outbox drain failed", err)
			}
		}
	}
}

// Drain publishes up to one batch of due records and reports how many were sent.
func (w *Worker) Drain(ctx context.Context) (int, error) {
	sent := 0
	for i := 0; i < w.batchSize(); i++ {
		msg, err := w.Store.Claim(ctx, w.ID)
		if err != nil {
			return sent, err
		}
		if msg == nil {
			return sent, nil
		}
		if err := w.deliver(ctx, msg); err != nil {
			w.logError("outbox publish failed", err, "event_id", msg.ID, "event", msg.Name, "attempts", msg.Attempts)
			if markErr := w.Store.MarkFailed(ctx, msg.ID, w.nextRetry(msg.Attempts), err.Error()); markErr != nil {
				return sent, markErr
			}
			continue
		}
		if err := w.Store.MarkSent(ctx, msg.ID); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func (w *Worker) deliver(ctx context.Context, msg *Message) error {
	payload, headers, err := w.envelope(msg)
	if err != nil {
		return err
	}
	return w.Producer.Publish(ctx, w.TopicFor(msg.Name), msg.Aggregate, payload, headers)
}

// envelope wraps the record in a CloudEvents 1.0 structured document.
func (w *Worker) envelope(msg *Message) ([]byte, map[string]string, error) {
	var data any
	if err := json.Unmarshal(msg.Payload, &data); err != nil {
		return nil, nil, fmt.Errorf("outbox: decode payload of %s: %w", msg.ID, err)
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              msg.ID,
		"type":            msg.Name + ".v1",
		"source":          w.source(),
		"subject":         msg.Aggregate,
		"time":            msg.OccurredAt.UTC().Format(time.RFC3339Nano),
		"datacontenttype": "application/json",
		"data":            data,
	}
	if trace, ok := msg.Headers["traceparent"]; ok {
		evt["traceparent"] = trace
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{"content-type": "application/cloudevents+json"}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

// TopicFor maps "booking.created" to "<prefix>booking.events.v1".
func (w *Worker) TopicFor(name string) string {
	rec := appoutbox.EventRecord{Name: name}
	return w.TopicPrefix + rec.AggregateType() + ".events.v1"
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) batchSize() int {
	if w.BatchSize <= 0 {
		return 50
	}
	return w.BatchSize
}

func (w *Worker) nextRetry(attempts int) time.Time {
	if attempts < len(w.Backoff) {
		return time.Now().Add(w.Backoff[attempts])
	}
	if len(w.Backoff) > 0 {
		return time.Now().Add(w.Backoff[len(w.Backoff)-1])
	}
	return time.Now().Add(5 * time.Second)
}

func (w *Worker) source() string {
	if w.Source != "" {
		return w.Source
	}
	return "app://bookingcore"
}

func (w *Worker) logError(msg string, err error, attrs ...any) {
	if w.Logger == nil {
		return
	}
	w.Logger.Error(msg, append([]any{"error", err}, attrs...)...)
}
