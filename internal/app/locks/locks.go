package locks

import (
	"context"
	"errors"

	"bookingcore/internal/domain/property"
)

var ErrLockTimeout = errors.New("locks: timed out waiting for property lock")

// Locker serialises writers on a key. Release must be called exactly once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

func PropertyKey(id property.PropertyID) string {
	return "property:" + string(id)
}
