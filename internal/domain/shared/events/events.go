package events

import "time"

// DomainEvent is a fact recorded by an aggregate and later relayed through the outbox.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// EventRecorder is embedded by aggregates to collect events until they are persisted.
type EventRecorder struct {
	pending []DomainEvent
}

func (r *EventRecorder) Record(event DomainEvent) {
	if event == nil {
		return
	}
	r.pending = append(r.pending, event)
}

func (r *EventRecorder) PendingEvents() []DomainEvent {
	out := make([]DomainEvent, len(r.pending))
	copy(out, r.pending)
	return out
}

func (r *EventRecorder) ClearEvents() {
	r.pending = nil
}

// DrainEvents returns pending events and clears the recorder.
func (r *EventRecorder) DrainEvents() []DomainEvent {
	out := r.PendingEvents()
	r.ClearEvents()
	return out
}
