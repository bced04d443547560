package block

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookingcore/internal/app/dto"
	"bookingcore/internal/app/handlers/support"
	"bookingcore/internal/app/locks"
	"bookingcore/internal/app/outbox"
	"bookingcore/internal/app/uow"
	"bookingcore/internal/domain/availability"
	domainblock "bookingcore/internal/domain/block"
	"bookingcore/internal/domain/property"
)

// Lifecycle manages owner blocks under the same property lock as bookings.
type Lifecycle struct {
	UoWFactory uow.UoWFactory
	Locks      locks.Locker
	Validator  availability.Validator
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
	NewID      func() string
}

func (l *Lifecycle) Create(ctx context.Context, cmd CreateBlockCommand) (*dto.Block, error) {
	propertyID := property.PropertyID(strings.TrimSpace(cmd.PropertyID))
	if propertyID == "" {
		return nil, domainblock.ErrPropertyRequired
	}
	r, err := support.RequestedRange(cmd.StartDate, cmd.EndDate)
	if err != nil {
		return nil, err
	}
	return support.Locked(ctx, l.Locks, l.UoWFactory, propertyID, func(ctx context.Context, unit uow.UnitOfWork) (*dto.Block, error) {
		if _, err := unit.Properties().ByID(ctx, propertyID); err != nil {
			return nil, err
		}
		if _, err := l.Validator.ValidateBlock(ctx, support.Oracle(unit), propertyID, r, ""); err != nil {
			return nil, err
		}
		b, err := domainblock.NewBlock(domainblock.CreateParams{
			ID:         domainblock.BlockID(l.newID()),
			PropertyID: propertyID,
			Range:      r,
			Reason:     cmd.Reason,
			CreatedAt:  l.now(),
		})
		if err != nil {
			return nil, err
		}
		if err := l.persist(ctx, unit, b); err != nil {
			return nil, err
		}
		l.log(ctx, "block created", b)
		out := dto.MapBlock(b)
		return &out, nil
	})
}

func (l *Lifecycle) Update(ctx context.Context, cmd UpdateBlockCommand) (*dto.Block, error) {
	id := domainblock.BlockID(strings.TrimSpace(cmd.BlockID))
	r, err := support.RequestedRange(cmd.StartDate, cmd.EndDate)
	if err != nil {
		return nil, err
	}
	propertyID, err := l.propertyOf(ctx, id)
	if err != nil {
		return nil, err
	}
	return support.Locked(ctx, l.Locks, l.UoWFactory, propertyID, func(ctx context.Context, unit uow.UnitOfWork) (*dto.Block, error) {
		b, err := unit.Blocks().ByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if _, err := l.Validator.ValidateBlock(ctx, support.Oracle(unit), b.PropertyID, r, b.ID); err != nil {
			return nil, err
		}
		if err := b.Reschedule(r, l.now()); err != nil {
			return nil, err
		}
		if err := l.persist(ctx, unit, b); err != nil {
			return nil, err
		}
		l.log(ctx, "block updated", b)
		out := dto.MapBlock(b)
		return &out, nil
	})
}

func (l *Lifecycle) Delete(ctx context.Context, cmd DeleteBlockCommand) (struct{}, error) {
	id := domainblock.BlockID(strings.TrimSpace(cmd.BlockID))
	propertyID, err := l.propertyOf(ctx, id)
	if err != nil {
		return struct{}{}, err
	}
	return support.Locked(ctx, l.Locks, l.UoWFactory, propertyID, func(ctx context.Context, unit uow.UnitOfWork) (struct{}, error) {
		b, err := unit.Blocks().ByID(ctx, id)
		if err != nil {
			return struct{}{}, err
		}
		b.MarkDeleted(l.now())
		if err := unit.Blocks().Delete(ctx, b.ID); err != nil {
			return struct{}{}, err
		}
		if err := support.RecordEvents(ctx, unit, l.Encoder, b.DrainEvents()); err != nil {
			return struct{}{}, err
		}
		l.log(ctx, "block deleted", b)
		return struct{}{}, nil
	})
}

func (l *Lifecycle) Get(ctx context.Context, q GetBlockQuery) (dto.Block, error) {
	return support.ReadOnly(ctx, l.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) (dto.Block, error) {
		b, err := unit.Blocks().ByID(ctx, domainblock.BlockID(strings.TrimSpace(q.BlockID)))
		if err != nil {
			return dto.Block{}, err
		}
		return dto.MapBlock(b), nil
	})
}

func (l *Lifecycle) propertyOf(ctx context.Context, id domainblock.BlockID) (property.PropertyID, error) {
	if id == "" {
		return "", domainblock.ErrIDRequired
	}
	return support.ReadOnly(ctx, l.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) (property.PropertyID, error) {
		b, err := unit.Blocks().ByID(ctx, id)
		if err != nil {
			return "", err
		}
		return b.PropertyID, nil
	})
}

func (l *Lifecycle) persist(ctx context.Context, unit uow.UnitOfWork, b *domainblock.Block) error {
	if err := unit.Blocks().Save(ctx, b); err != nil {
		return err
	}
	return support.RecordEvents(ctx, unit, l.Encoder, b.DrainEvents())
}

func (l *Lifecycle) log(ctx context.Context, msg string, b *domainblock.Block) {
	if l.Logger == nil {
		return
	}
	l.Logger.InfoContext(ctx, msg, "block_id", b.ID, "property_id", b.PropertyID, "range", b.Range.String())
}

func (l *Lifecycle) now() time.Time {
	if l.Now != nil {
		return l.Now().UTC()
	}
	return time.Now().UTC()
}

func (l *Lifecycle) newID() string {
	if l.NewID != nil {
		return l.NewID()
	}
	return uuid.NewString()
}
