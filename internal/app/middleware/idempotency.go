package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"bookingcore/internal/app/commands"
)

// IdempotentCommand is implemented by commands that can be replayed by key.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	ResultPrototype() any // pointer to the handler result type
}

type IdempotencyRecord struct {
	Key         string
	Command     string
	Fingerprint string
	Payload     []byte
	OccurredAt  time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

type ResultCodec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, out any) error
}

type JSONResultCodec struct{}

func (JSONResultCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONResultCodec) Decode(data []byte, out any) error {
	return json.Unmarshal(data, out)
}

var (
	errMissingPrototype     = errors.New("middleware: idempotent command requires result prototype")
	ErrIdempotencyKeyReused = errors.New("middleware: idempotency key reused for a different request")
)

// Fingerprint identifies a command by its kind and encoded fields.
func Fingerprint(cmd commands.Command) (string, error) {
	raw, err := json.Marshal(cmd)
	if err != nil {
		return "", fmt.Errorf("middleware: fingerprint %s: %w", cmd.Key(), err)
	}
	sum := sha256.New()
	sum.Write([]byte(cmd.Key()))
	sum.Write([]byte{0})
	sum.Write(raw)
	return hex.EncodeToString(sum.Sum(nil)), nil
}

// Idempotency replays the stored result of a command seen with the same key.
// A key presented with a different command or different fields fails with
// ErrIdempotencyKeyReused. Only successful results are stored so a rejected
// request can be retried. Dispatches sharing a key run one at a time within
// the process.
func Idempotency(store IdempotencyStore, codec ResultCodec) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	if codec == nil {
		codec = JSONResultCodec{}
	}
	gate := &keyGate{slots: make(map[string]*gateSlot)}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok || idCmd.IdempotencyKey() == "" {
				return next.Dispatch(ctx, cmd)
			}
			key := idCmd.IdempotencyKey()
			fingerprint, err := Fingerprint(cmd)
			if err != nil {
				return nil, err
			}
			leave, err := gate.enter(ctx, key)
			if err != nil {
				return nil, err
			}
			defer leave()

			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("middleware: idempotency lookup: %w", err)
			}
			if found {
				if rec.Command != "" && rec.Command != cmd.Key() {
					return nil, ErrIdempotencyKeyReused
				}
				if rec.Fingerprint != "" && rec.Fingerprint != fingerprint {
					return nil, ErrIdempotencyKeyReused
				}
				proto := idCmd.ResultPrototype()
				if proto == nil {
					return nil, errMissingPrototype
				}
				if err := codec.Decode(rec.Payload, proto); err != nil {
					return nil, err
				}
				return normalizePrototype(proto), nil
			}
			result, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			record := IdempotencyRecord{Key: key, Command: cmd.Key(), Fingerprint: fingerprint, OccurredAt: time.Now().UTC()}
			if result != nil {
				payload, encErr := codec.Encode(result)
				if encErr != nil {
					return nil, encErr
				}
				record.Payload = payload
			}
			if err := store.Save(ctx, record); err != nil {
				return nil, fmt.Errorf("middleware: idempotency save: %w", err)
			}
			return result, nil
		})
	}
}

// keyGate admits one dispatch per key at a time.
type keyGate struct {
	mu    sync.Mutex
	slots map[string]*gateSlot
}

type gateSlot struct {
	sem  chan struct{}
	refs int
}

func (g *keyGate) enter(ctx context.Context, key string) (func(), error) {
	g.mu.Lock()
	slot, ok := g.slots[key]
	if !ok {
		slot = &gateSlot{sem: make(chan struct{}, 1)}
		g.slots[key] = slot
	}
	slot.refs++
	g.mu.Unlock()

	select {
	case slot.sem <- struct{}{}:
		return func() {
			<-slot.sem
			g.drop(key, slot)
		}, nil
	case <-ctx.Done():
		g.drop(key, slot)
		return nil, ctx.Err()
	}
}

func (g *keyGate) drop(key string, slot *gateSlot) {
	g.mu.Lock()
	defer g.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(g.slots, key)
	}
}

func normalizePrototype(proto any) any {
	rv := reflect.ValueOf(proto)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		return rv.Interface()
	}
	return proto
}
