package memory

import (
	"context"
	"sync"
)

// Inbox remembers consumed event ids for the life of the process.
type Inbox struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewInbox() *Inbox {
	return &Inbox{seen: make(map[string]struct{})}
}

// Seen records eventID and reports whether it had been recorded before.
func (i *Inbox) Seen(ctx context.Context, eventID string) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.seen[eventID]; ok {
		return true, nil
	}
	i.seen[eventID] = struct{}{}
	return false, nil
}
