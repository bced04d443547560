package memory

import (
	"context"
	"errors"

	appoutbox "bookingcore/internal/app/outbox"
	"bookingcore/internal/app/uow"
	domainblock "bookingcore/internal/domain/block"
	domainbooking "bookingcore/internal/domain/booking"
	domainproperty "bookingcore/internal/domain/property"
)

var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory hands out units over shared in-memory stores. There is no isolation;
// writers rely on the property lock.
type Factory struct {
	PropertiesRepo domainproperty.Repository
	BookingsRepo   domainbooking.Repository
	BlocksRepo     domainblock.Repository
	Box            appoutbox.Outbox
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.PropertiesRepo == nil || f.BookingsRepo == nil || f.BlocksRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{factory: f}, nil
}

type Unit struct {
	factory Factory
}

func (u *Unit) Properties() domainproperty.Repository { return u.factory.PropertiesRepo }
func (u *Unit) Bookings() domainbooking.Repository    { return u.factory.BookingsRepo }
func (u *Unit) Blocks() domainblock.Repository        { return u.factory.BlocksRepo }
func (u *Unit) Outbox() appoutbox.Outbox              { return u.factory.Box }

func (u *Unit) Commit(ctx context.Context) error   { return nil }
func (u *Unit) Rollback(ctx context.Context) error { return nil }

var _ uow.UoWFactory = Factory{}
