package properties

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"bookingcore/internal/app/commands"
	"bookingcore/internal/app/dto"
	"bookingcore/internal/app/handlers/support"
	"bookingcore/internal/app/outbox"
	"bookingcore/internal/app/queries"
	"bookingcore/internal/app/uow"
	"bookingcore/internal/domain/property"
)

const (
	registerPropertyKey = "property.register"
	getPropertyKey      = "property.get"
)

// RegisterPropertyCommand upserts a property announced by the owning system.
type RegisterPropertyCommand struct {
	PropertyID string `validate:"required,max=128"`
	OwnerName  string `validate:"required"`
}

func (c RegisterPropertyCommand) Key() string { return registerPropertyKey }

type GetPropertyQuery struct {
	PropertyID string `validate:"required"`
}

func (q GetPropertyQuery) Key() string { return getPropertyKey }

// RegisterPropertyHandler expects the Transaction middleware to have opened a unit.
type RegisterPropertyHandler struct {
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
	Now     func() time.Time
}

func (h *RegisterPropertyHandler) Handle(ctx context.Context, cmd RegisterPropertyCommand) (*dto.Property, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	id := property.PropertyID(strings.TrimSpace(cmd.PropertyID))
	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now().UTC()
	}

	p, err := unit.Properties().ByID(ctx, id)
	switch {
	case errors.Is(err, property.ErrPropertyNotFound):
		p, err = property.New(id, cmd.OwnerName, now)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := p.Rename(cmd.OwnerName, now); err != nil {
			return nil, err
		}
	}

	evs := p.DrainEvents()
	if len(evs) > 0 {
		if err := unit.Properties().Save(ctx, p); err != nil {
			return nil, err
		}
		if err := support.RecordEvents(ctx, unit, h.Encoder, evs); err != nil {
			return nil, err
		}
		if h.Logger != nil {
			h.Logger.InfoContext(ctx, "property registered", "property_id", p.ID, "owner_name", p.OwnerName)
		}
	}
	out := dto.MapProperty(p)
	return &out, nil
}

type GetPropertyHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetPropertyHandler) Handle(ctx context.Context, q GetPropertyQuery) (dto.Property, error) {
	return support.ReadOnly(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) (dto.Property, error) {
		p, err := unit.Properties().ByID(ctx, property.PropertyID(strings.TrimSpace(q.PropertyID)))
		if err != nil {
			return dto.Property{}, err
		}
		return dto.MapProperty(p), nil
	})
}

var (
	_ commands.Handler[RegisterPropertyCommand, *dto.Property] = (*RegisterPropertyHandler)(nil)
	_ queries.Handler[GetPropertyQuery, dto.Property]          = (*GetPropertyHandler)(nil)
)
