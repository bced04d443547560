package commands

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Command is a write intent routed through the bus by its key.
type Command interface {
	Key() string
}

type Handler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

// HandlerFunc lets a plain method value serve as a Handler.
type HandlerFunc[C Command, R any] func(ctx context.Context, cmd C) (R, error)

func (f HandlerFunc[C, R]) Handle(ctx context.Context, cmd C) (R, error) {
	return f(ctx, cmd)
}

// Bus dispatches commands. Middleware wraps a Bus in another Bus.
type Bus interface {
	Dispatch(ctx context.Context, cmd Command) (any, error)
}

var (
	ErrHandlerNotFound = errors.New("commands: handler not found")
	ErrInvalidCommand  = errors.New("commands: invalid command for handler")
	ErrResultType      = errors.New("commands: result type mismatch")
	ErrNilBus          = errors.New("commands: nil bus")
)

type rawHandler func(ctx context.Context, cmd Command) (any, error)

// InMemoryBus routes commands to handlers registered in process.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string]rawHandler
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{handlers: make(map[string]rawHandler)}
}

func (b *InMemoryBus) register(key string, h rawHandler) {
	if key == "" {
		panic("commands: empty key registration")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.handlers[key]; dup {
		panic(fmt.Sprintf("commands: handler for %q already registered", key))
	}
	b.handlers[key] = h
}

func (b *InMemoryBus) Dispatch(ctx context.Context, cmd Command) (any, error) {
	if cmd == nil {
		return nil, ErrInvalidCommand
	}
	b.mu.RLock()
	h, ok := b.handlers[cmd.Key()]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, cmd.Key())
	}
	return h(ctx, cmd)
}

// RegisterHandler binds a typed handler to the key of its command type.
func RegisterHandler[C Command, R any](bus *InMemoryBus, handler Handler[C, R]) {
	if bus == nil {
		panic("commands: nil bus")
	}
	var zero C
	key := zero.Key()
	bus.register(key, func(ctx context.Context, raw Command) (any, error) {
		cmd, ok := raw.(C)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCommand, key)
		}
		return handler.Handle(ctx, cmd)
	})
}

// Dispatch sends cmd through bus and asserts the result type.
func Dispatch[C Command, R any](ctx context.Context, bus Bus, cmd C) (R, error) {
	var zero R
	if bus == nil {
		return zero, ErrNilBus
	}
	res, err := bus.Dispatch(ctx, cmd)
	if err != nil || res == nil {
		return zero, err
	}
	value, ok := res.(R)
	if !ok {
		return zero, fmt.Errorf("%w: got %T", ErrResultType, res)
	}
	return value, nil
}
