package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "bookingcore/internal/app/outbox"
	infraoutbox "bookingcore/internal/infra/outbox"
)

type outboxState int

const (
	statePending outboxState = iota
	stateClaimed
	stateSent
)

type outboxEntry struct {
	record    appoutbox.EventRecord
	state     outboxState
	attempts  int
	nextTry   time.Time
	claimedAt time.Time
	lastError string
}

// Outbox keeps records until a worker delivers them; Flush drops delivered ones.
type Outbox struct {
	mu      sync.Mutex
	entries []*outboxEntry
	lease   time.Duration
}

func NewOutbox() *Outbox {
	return &Outbox{lease: infraoutbox.DefaultClaimLease}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries = append(o.entries, &outboxEntry{record: record, nextTry: time.Now()})
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	kept := o.entries[:0]
	for _, e := range o.entries {
		if e.state != stateSent {
			kept = append(kept, e)
		}
	}
	o.entries = kept
	return nil
}

func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.Message, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	for _, e := range o.entries {
		due := e.state == statePending && !e.nextTry.After(now)
		expired := e.state == stateClaimed && now.Sub(e.claimedAt) > o.lease
		if due || expired {
			e.state = stateClaimed
			e.claimedAt = now
			return &infraoutbox.Message{EventRecord: e.record, Attempts: e.attempts}, nil
		}
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e := o.find(id); e != nil {
		e.state = stateSent
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e := o.find(id); e != nil {
		e.state = statePending
		e.attempts++
		e.nextTry = next
		e.lastError = errMsg
	}
	return nil
}

// Pending returns records not yet delivered, oldest first.
func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]appoutbox.EventRecord, 0, len(o.entries))
	for _, e := range o.entries {
		if e.state != stateSent {
			out = append(out, e.record)
		}
	}
	return out
}

func (o *Outbox) find(id string) *outboxEntry {
	for _, e := range o.entries {
		if e.record.ID == id {
			return e
		}
	}
	return nil
}

var (
	_ appoutbox.Outbox  = (*Outbox)(nil)
	_ infraoutbox.Store = (*Outbox)(nil)
)
