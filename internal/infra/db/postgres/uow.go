package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	appoutbox "bookingcore/internal/app/outbox"
	"bookingcore/internal/app/uow"
	domainblock "bookingcore/internal/domain/block"
	domainbooking "bookingcore/internal/domain/booking"
	domainproperty "bookingcore/internal/domain/property"
)

var ErrUnitOfWorkNotConfigured = errors.New("postgres: unit of work factory missing pool")

// Factory opens one pgx transaction per unit of work.
type Factory struct {
	Pool *pgxpool.Pool
}

func NewFactory(pool *pgxpool.Pool) Factory {
	return Factory{Pool: pool}
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Pool == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	if opts.ReadOnly {
		txOpts.AccessMode = pgx.ReadOnly
	}
	tx, err := f.Pool.BeginTx(ctx, txOpts)
	if err != nil {
		return nil, err
	}
	return newUnit(tx), nil
}

// Unit binds every repository to the same transaction, so no context injection is needed.
type Unit struct {
	tx         pgx.Tx
	properties PropertyRepository
	bookings   BookingRepository
	blocks     BlockRepository
	box        *OutboxStore
}

func newUnit(tx pgx.Tx) *Unit {
	return &Unit{
		tx:         tx,
		properties: PropertyRepository{q: tx},
		bookings:   BookingRepository{q: tx},
		blocks:     BlockRepository{q: tx},
		box:        NewOutboxStore(tx),
	}
}

func (u *Unit) Properties() domainproperty.Repository { return u.properties }
func (u *Unit) Bookings() domainbooking.Repository    { return u.bookings }
func (u *Unit) Blocks() domainblock.Repository        { return u.blocks }
func (u *Unit) Outbox() appoutbox.Outbox              { return u.box }

func (u *Unit) Commit(ctx context.Context) error {
	return u.tx.Commit(ctx)
}

// Rollback is safe after Commit.
func (u *Unit) Rollback(ctx context.Context) error {
	err := u.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

var _ uow.UoWFactory = Factory{}
