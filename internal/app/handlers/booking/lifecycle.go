package booking

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookingcore/internal/app/dto"
	"bookingcore/internal/app/handlers/support"
	"bookingcore/internal/app/locks"
	"bookingcore/internal/app/outbox"
	"bookingcore/internal/app/uow"
	"bookingcore/internal/domain/availability"
	domainbooking "bookingcore/internal/domain/booking"
	"bookingcore/internal/domain/property"
)

// Lifecycle drives the booking state machine. Every mutation holds the
// property lock from the availability check until the unit commits.
type Lifecycle struct {
	UoWFactory uow.UoWFactory
	Locks      locks.Locker
	Validator  availability.Validator
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
	NewID      func() string
}

func (l *Lifecycle) Create(ctx context.Context, cmd CreateBookingCommand) (*dto.Booking, error) {
	propertyID := property.PropertyID(strings.TrimSpace(cmd.PropertyID))
	if propertyID == "" {
		return nil, domainbooking.ErrPropertyRequired
	}
	r, err := support.RequestedRange(cmd.StartDate, cmd.EndDate)
	if err != nil {
		return nil, err
	}
	return support.Locked(ctx, l.Locks, l.UoWFactory, propertyID, func(ctx context.Context, unit uow.UnitOfWork) (*dto.Booking, error) {
		if _, err := unit.Properties().ByID(ctx, propertyID); err != nil {
			return nil, err
		}
		if _, err := l.Validator.ValidateBooking(ctx, support.Oracle(unit), propertyID, r, ""); err != nil {
			return nil, err
		}
		b, err := domainbooking.NewBooking(domainbooking.CreateParams{
			ID:            domainbooking.BookingID(l.newID()),
			PropertyID:    propertyID,
			Range:         r,
			GuestName:     cmd.GuestName,
			GuestLast4SSN: cmd.GuestLast4SSN,
			CreatedAt:     l.now(),
		})
		if err != nil {
			return nil, err
		}
		if err := l.persist(ctx, unit, b); err != nil {
			return nil, err
		}
		l.log(ctx, "booking created", b)
		out := dto.MapBooking(b)
		return &out, nil
	})
}

// Update replaces dates and guest details. The booking's own reservation is
// ignored when looking for overlaps.
func (l *Lifecycle) Update(ctx context.Context, cmd UpdateBookingCommand) (*dto.Booking, error) {
	id := domainbooking.BookingID(strings.TrimSpace(cmd.BookingID))
	r, err := support.RequestedRange(cmd.StartDate, cmd.EndDate)
	if err != nil {
		return nil, err
	}
	propertyID, err := l.propertyOf(ctx, id)
	if err != nil {
		return nil, err
	}
	return support.Locked(ctx, l.Locks, l.UoWFactory, propertyID, func(ctx context.Context, unit uow.UnitOfWork) (*dto.Booking, error) {
		b, err := unit.Bookings().ByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := b.CanModify(); err != nil {
			return nil, err
		}
		if _, err := l.Validator.ValidateBooking(ctx, support.Oracle(unit), b.PropertyID, r, b.ID); err != nil {
			return nil, err
		}
		if err := b.Modify(r, cmd.GuestName, cmd.GuestLast4SSN, l.now()); err != nil {
			return nil, err
		}
		if err := l.persist(ctx, unit, b); err != nil {
			return nil, err
		}
		l.log(ctx, "booking updated", b)
		out := dto.MapUpdatedBooking(b)
		return &out, nil
	})
}

// Cancel frees the booking's dates. Canceling a canceled booking succeeds
// without writing anything.
func (l *Lifecycle) Cancel(ctx context.Context, cmd CancelBookingCommand) (*dto.Booking, error) {
	id := domainbooking.BookingID(strings.TrimSpace(cmd.BookingID))
	propertyID, err := l.propertyOf(ctx, id)
	if err != nil {
		return nil, err
	}
	return support.Locked(ctx, l.Locks, l.UoWFactory, propertyID, func(ctx context.Context, unit uow.UnitOfWork) (*dto.Booking, error) {
		b, err := unit.Bookings().ByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if b.Cancel(l.now()) {
			if err := l.persist(ctx, unit, b); err != nil {
				return nil, err
			}
			l.log(ctx, "booking canceled", b)
		}
		out := dto.MapBooking(b)
		return &out, nil
	})
}

// Rebook reactivates a canceled booking on its original dates, provided
// nothing has taken them since.
func (l *Lifecycle) Rebook(ctx context.Context, cmd RebookBookingCommand) (*dto.Booking, error) {
	id := domainbooking.BookingID(strings.TrimSpace(cmd.BookingID))
	propertyID, err := l.propertyOf(ctx, id)
	if err != nil {
		return nil, err
	}
	return support.Locked(ctx, l.Locks, l.UoWFactory, propertyID, func(ctx context.Context, unit uow.UnitOfWork) (*dto.Booking, error) {
		b, err := unit.Bookings().ByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := b.CanRebook(); err != nil {
			return nil, err
		}
		if _, err := l.Validator.ValidateBooking(ctx, support.Oracle(unit), b.PropertyID, b.Range, b.ID); err != nil {
			return nil, err
		}
		if err := b.Rebook(l.now()); err != nil {
			return nil, err
		}
		if err := l.persist(ctx, unit, b); err != nil {
			return nil, err
		}
		l.log(ctx, "booking rebooked", b)
		out := dto.MapBooking(b)
		return &out, nil
	})
}

func (l *Lifecycle) Delete(ctx context.Context, cmd DeleteBookingCommand) (struct{}, error) {
	id := domainbooking.BookingID(strings.TrimSpace(cmd.BookingID))
	propertyID, err := l.propertyOf(ctx, id)
	if err != nil {
		return struct{}{}, err
	}
	return support.Locked(ctx, l.Locks, l.UoWFactory, propertyID, func(ctx context.Context, unit uow.UnitOfWork) (struct{}, error) {
		b, err := unit.Bookings().ByID(ctx, id)
		if err != nil {
			return struct{}{}, err
		}
		b.MarkDeleted(l.now())
		if err := unit.Bookings().Delete(ctx, b.ID); err != nil {
			return struct{}{}, err
		}
		if err := support.RecordEvents(ctx, unit, l.Encoder, b.DrainEvents()); err != nil {
			return struct{}{}, err
		}
		l.log(ctx, "booking deleted", b)
		return struct{}{}, nil
	})
}

func (l *Lifecycle) Get(ctx context.Context, q GetBookingQuery) (dto.Booking, error) {
	return support.ReadOnly(ctx, l.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) (dto.Booking, error) {
		b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(strings.TrimSpace(q.BookingID)))
		if err != nil {
			return dto.Booking{}, err
		}
		return dto.MapBooking(b), nil
	})
}

// ListByProperty returns the property's bookings, newest first.
func (l *Lifecycle) ListByProperty(ctx context.Context, q ListPropertyBookingsQuery) (dto.BookingCollection, error) {
	propertyID := property.PropertyID(strings.TrimSpace(q.PropertyID))
	return support.ReadOnly(ctx, l.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) (dto.BookingCollection, error) {
		if _, err := unit.Properties().ByID(ctx, propertyID); err != nil {
			return dto.BookingCollection{}, err
		}
		items, err := unit.Bookings().ListByProperty(ctx, propertyID)
		if err != nil {
			return dto.BookingCollection{}, err
		}
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		})
		out := dto.BookingCollection{PropertyID: string(propertyID), Items: make([]dto.Booking, 0, len(items))}
		for _, b := range items {
			if q.ActiveOnly && !b.Active() {
				continue
			}
			out.Items = append(out.Items, dto.MapBooking(b))
		}
		return out, nil
	})
}

// propertyOf resolves the lock key of an existing booking outside the lock.
func (l *Lifecycle) propertyOf(ctx context.Context, id domainbooking.BookingID) (property.PropertyID, error) {
	if id == "" {
		return "", domainbooking.ErrIDRequired
	}
	return support.ReadOnly(ctx, l.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) (property.PropertyID, error) {
		b, err := unit.Bookings().ByID(ctx, id)
		if err != nil {
			return "", err
		}
		return b.PropertyID, nil
	})
}

func (l *Lifecycle) persist(ctx context.Context, unit uow.UnitOfWork, b *domainbooking.Booking) error {
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return err
	}
	return support.RecordEvents(ctx, unit, l.Encoder, b.DrainEvents())
}

func (l *Lifecycle) log(ctx context.Context, msg string, b *domainbooking.Booking) {
	if l.Logger == nil {
		return
	}
	l.Logger.InfoContext(ctx, msg, "booking_id", b.ID, "property_id", b.PropertyID, "range", b.Range.String(), "status", b.Status)
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
