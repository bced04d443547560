package uow

import (
	"context"
	"errors"

	"bookingcore/internal/app/outbox"
	"bookingcore/internal/domain/block"
	"bookingcore/internal/domain/booking"
	"bookingcore/internal/domain/property"
)

var ErrUnitOfWorkMissing = errors.New("uow: unit of work missing from context")

// UnitOfWork scopes repositories and the outbox to one transaction.
type UnitOfWork interface {
	Properties() property.Repository
	Bookings() booking.Repository
	Blocks() block.Repository
	Outbox() outbox.Outbox

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}

// ContextInjector is implemented by units that carry driver state (a Mongo session)
// which repositories read from the context.
type ContextInjector interface {
	InjectContext(ctx context.Context) context.Context
}

type ctxKey struct{}

func ContextWithUnitOfWork(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, ctxKey{}, unit)
}

func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(ctxKey{}).(UnitOfWork)
	return unit, ok
}

// Bind returns the context a unit's repositories must be called with.
func Bind(ctx context.Context, unit UnitOfWork) context.Context {
	if injector, ok := unit.(ContextInjector); ok {
		ctx = injector.InjectContext(ctx)
	}
	return ContextWithUnitOfWork(ctx, unit)
}
