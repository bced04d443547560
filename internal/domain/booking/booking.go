package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"bookingcore/internal/domain/property"
	"bookingcore/internal/domain/shared/daterange"
	"bookingcore/internal/domain/shared/events"
)

var (
	ErrBookingNotFound   = errors.New("booking: not found")
	ErrInvalidTransition = errors.New("booking: invalid state transition")
	ErrCanceledUpdate    = errors.New("booking: canceled booking cannot be updated")
	ErrRebookNotCanceled = errors.New("booking: booking needs to have status canceled to be rebooked")
	ErrIDRequired        = errors.New("booking: id is required")
	ErrPropertyRequired  = errors.New("booking: property id is required")
)

type BookingID string

type Booking struct {
	ID            BookingID
	PropertyID    property.PropertyID
	Range         daterange.DateRange
	Status        Status
	GuestName     string
	GuestLast4SSN string
	CreatedAt     time.Time
	LastUpdatedAt time.Time
	Version       int64
	events.EventRecorder
}

// Repository is the storage contract for bookings. FindOverlapping only returns
// active bookings and skips the booking identified by exclude.
type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	Delete(ctx context.Context, id BookingID) error
	FindOverlapping(ctx context.Context, propertyID property.PropertyID, r daterange.DateRange, exclude BookingID) ([]*Booking, error)
	ListByProperty(ctx context.Context, propertyID property.PropertyID) ([]*Booking, error)
}

type CreateParams struct {
	ID            BookingID
	PropertyID    property.PropertyID
	Range         daterange.DateRange
	GuestName     string
	GuestLast4SSN string
	CreatedAt     time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if params.ID == "" {
		return nil, ErrIDRequired
	}
	if params.PropertyID == "" {
		return nil, ErrPropertyRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	name, ssn := normalizeGuest(params.GuestName, params.GuestLast4SSN)
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:            params.ID,
		PropertyID:    params.PropertyID,
		Range:         params.Range,
		Status:        StatusCreated,
		GuestName:     name,
		GuestLast4SSN: ssn,
		CreatedAt:     now,
	}
	b.Record(BookingCreated{BookingID: b.ID, PropertyID: b.PropertyID, Range: b.Range, GuestName: b.GuestName, At: now})
	return b, nil
}

// Active reports whether the booking still reserves its dates.
func (b *Booking) Active() bool {
	return b.Status.Active()
}

// CanModify reports whether dates and guest details may still change.
func (b *Booking) CanModify() error {
	if b.Status == StatusCanceled {
		return errors.Join(ErrInvalidTransition, ErrCanceledUpdate)
	}
	return nil
}

// Modify replaces dates and guest details. Availability must be checked by the caller.
func (b *Booking) Modify(r daterange.DateRange, guestName, guestLast4SSN string, now time.Time) error {
	if err := b.CanModify(); err != nil {
		return err
	}
	if err := r.Validate(); err != nil {
		return err
	}
	name, ssn := normalizeGuest(guestName, guestLast4SSN)
	previous := b.Range
	b.Range = r
	b.GuestName = name
	b.GuestLast4SSN = ssn
	b.LastUpdatedAt = now.UTC()
	b.Record(BookingUpdated{BookingID: b.ID, PropertyID: b.PropertyID, Previous: previous, Range: b.Range, At: b.LastUpdatedAt})
	return nil
}

// Cancel releases the booking's dates. Canceling twice is a no-op and reports false.
func (b *Booking) Cancel(now time.Time) bool {
	if b.Status == StatusCanceled {
		return false
	}
	b.Status = StatusCanceled
	b.LastUpdatedAt = now.UTC()
	b.Record(BookingCanceled{BookingID: b.ID, PropertyID: b.PropertyID, Range: b.Range, At: b.LastUpdatedAt})
	return true
}

// CanRebook reports whether the booking may be reactivated.
func (b *Booking) CanRebook() error {
	if b.Status != StatusCanceled {
		return errors.Join(ErrInvalidTransition, ErrRebookNotCanceled)
	}
	return nil
}

// Rebook reactivates a canceled booking on its original dates.
// Availability must be checked by the caller.
func (b *Booking) Rebook(now time.Time) error {
	if err := b.CanRebook(); err != nil {
		return err
	}
	b.Status = StatusRebooked
	b.LastUpdatedAt = now.UTC()
	b.Record(BookingRebooked{BookingID: b.ID, PropertyID: b.PropertyID, Range: b.Range, At: b.LastUpdatedAt})
	return nil
}

// MarkDeleted records the removal event; the repository performs the delete.
func (b *Booking) MarkDeleted(now time.Time) {
	b.Record(BookingDeleted{BookingID: b.ID, PropertyID: b.PropertyID, At: now.UTC()})
}

// guest fields are opaque; only surrounding whitespace is dropped
func normalizeGuest(name, ssn string) (string, string) {
	return strings.TrimSpace(name), strings.TrimSpace(ssn)
}
