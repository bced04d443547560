package support

import (
	"context"
	"errors"

	"bookingcore/internal/app/locks"
	"bookingcore/internal/app/outbox"
	"bookingcore/internal/app/uow"
	"bookingcore/internal/domain/availability"
	"bookingcore/internal/domain/property"
	"bookingcore/internal/domain/shared/daterange"
	"bookingcore/internal/domain/shared/events"
)

var ErrLockerRequired = errors.New("support: locker required")

// BeginReadOnlyUnit reuses the unit already in ctx or opens a read-only one.
// cleanup is nil when the unit was reused.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := uow.Bind(ctx, unit)
	cleanup := func() {
		_ = unit.Rollback(execCtx)
	}
	return unit, execCtx, cleanup, nil
}

// ReadOnly runs fn inside BeginReadOnlyUnit and releases the unit afterwards.
func ReadOnly[R any](ctx context.Context, factory uow.UoWFactory, fn func(ctx context.Context, unit uow.UnitOfWork) (R, error)) (R, error) {
	unit, execCtx, cleanup, err := BeginReadOnlyUnit(ctx, factory)
	if err != nil {
		var zero R
		return zero, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	return fn(execCtx, unit)
}

// Locked holds the property lock across begin, fn and commit. The lock is
// released only after the unit has been committed or rolled back.
func Locked[R any](ctx context.Context, locker locks.Locker, factory uow.UoWFactory, propertyID property.PropertyID, fn func(ctx context.Context, unit uow.UnitOfWork) (R, error)) (R, error) {
	var zero R
	if locker == nil {
		return zero, ErrLockerRequired
	}
	if factory == nil {
		return zero, uow.ErrUnitOfWorkMissing
	}
	release, err := locker.Acquire(ctx, locks.PropertyKey(propertyID))
	if err != nil {
		return zero, err
	}
	defer release()

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return zero, err
	}
	execCtx := uow.Bind(ctx, unit)
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(execCtx)
		}
	}()

	res, err := fn(execCtx, unit)
	if err != nil {
		return zero, err
	}
	if err := unit.Commit(execCtx); err != nil {
		return zero, err
	}
	committed = true
	return res, nil
}

// Oracle reads overlaps through the unit's repositories.
func Oracle(unit uow.UnitOfWork) availability.Oracle {
	return availability.RepositoryOracle{Bookings: unit.Bookings(), Blocks: unit.Blocks()}
}

// RecordEvents moves pending aggregate events into the unit's outbox.
func RecordEvents(ctx context.Context, unit uow.UnitOfWork, encoder outbox.EventEncoder, evs []events.DomainEvent) error {
	return outbox.RecordDomainEvents(ctx, unit.Outbox(), encoder, evs)
}

// RequestedRange parses both dates but leaves the order check to the validator
// so an inverted request surfaces as availability.ErrInvalidRange.
func RequestedRange(start, end string) (daterange.DateRange, error) {
	s, err := daterange.ParseDay(start)
	if err != nil {
		return daterange.DateRange{}, err
	}
	e, err := daterange.ParseDay(end)
	if err != nil {
		return daterange.DateRange{}, err
	}
	return daterange.Between(s, e), nil
}
