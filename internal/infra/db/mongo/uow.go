package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"

	appoutbox "bookingcore/internal/app/outbox"
	"bookingcore/internal/app/uow"
	domainblock "bookingcore/internal/domain/block"
	domainbooking "bookingcore/internal/domain/booking"
	domainproperty "bookingcore/internal/domain/property"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	PropertiesRepo domainproperty.Repository
	BookingsRepo   domainbooking.Repository
	BlocksRepo     domainblock.Repository
	Box            appoutbox.Outbox
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// NewFactory builds a factory whose repositories share db.
func NewFactory(db *mongo.Database) Factory {
	return Factory{
		DB:             db,
		PropertiesRepo: NewPropertyRepository(db),
		BookingsRepo:   NewBookingRepository(db),
		BlocksRepo:     NewBlockRepository(db),
		Box:            NewOutboxStore(db),
	}
}

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(readconcern.Snapshot()).SetWriteConcern(f.DB.WriteConcern())
	if opts.ReadOnly {
		txnOpts = options.Transaction().SetReadConcern(readconcern.Snapshot())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{factory: f, session: session}, nil
}

type Unit struct {
	factory Factory
	session mongo.Session
}

func (u *Unit) Properties() domainproperty.Repository { return u.factory.PropertiesRepo }
func (u *Unit) Bookings() domainbooking.Repository    { return u.factory.BookingsRepo }
func (u *Unit) Blocks() domainblock.Repository        { return u.factory.BlocksRepo }
func (u *Unit) Outbox() appoutbox.Outbox              { return u.factory.Box }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures the Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var (
	_ uow.UoWFactory      = Factory{}
	_ uow.ContextInjector = (*Unit)(nil)
)
