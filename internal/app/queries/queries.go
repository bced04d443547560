package queries

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Query is a read request.
type Query interface {
	Key() string
}

type Handler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

type HandlerFunc[Q Query, R any] func(ctx context.Context, query Q) (R, error)

func (f HandlerFunc[Q, R]) Handle(ctx context.Context, query Q) (R, error) {
	return f(ctx, query)
}

type Bus interface {
	Ask(ctx context.Context, query Query) (any, error)
}

var (
	ErrHandlerNotFound = errors.New("queries: handler not found")
	ErrInvalidQuery    = errors.New("queries: invalid query for handler")
	ErrResultType      = errors.New("queries: result type mismatch")
	ErrNilBus          = errors.New("queries: nil bus")
)

type rawHandler func(ctx context.Context, q Query) (any, error)

type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string]rawHandler
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{handlers: make(map[string]rawHandler)}
}

func (b *InMemoryBus) Ask(ctx context.Context, query Query) (any, error) {
	if query == nil {
		return nil, ErrInvalidQuery
	}
	b.mu.RLock()
	h, ok := b.handlers[query.Key()]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, query.Key())
	}
	return h(ctx, query)
}

// RegisterHandler binds a typed handler to the key of its query type.
func RegisterHandler[Q Query, R any](bus *InMemoryBus, handler Handler[Q, R]) {
	if bus == nil {
		panic("queries: nil bus")
	}
	var zero Q
	key := zero.Key()
	if key == "" {
		panic("queries: empty key registration")
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	if _, dup := bus.handlers[key]; dup {
		panic(fmt.Sprintf("queries: handler for %q already registered", key))
	}
	bus.handlers[key] = func(ctx context.Context, raw Query) (any, error) {
		q, ok := raw.(Q)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidQuery, key)
		}
		return handler.Handle(ctx, q)
	}
}

// Ask runs query through bus and asserts the result type.
func Ask[Q Query, R any](ctx context.Context, bus Bus, query Q) (R, error) {
	var zero R
	if bus == nil {
		return zero, ErrNilBus
	}
	res, err := bus.Ask(ctx, query)
	if err != nil || res == nil {
		return zero, err
	}
	value, ok := res.(R)
	if !ok {
		return zero, fmt.Errorf("%w: got %T", ErrResultType, res)
	}
	return value, nil
}
