package availability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"bookingcore/internal/domain/block"
	"bookingcore/internal/domain/booking"
	"bookingcore/internal/domain/property"
	"bookingcore/internal/domain/shared/daterange"
)

var (
	// ErrInvalidRange is the daterange sentinel so either package can be matched.
	ErrInvalidRange    = daterange.ErrInvalidRange
	ErrOverlapConflict = errors.New("availability: property is not available on the selected dates")
)

// ConflictError describes which records collide with a requested range.
// errors.Is(err, ErrOverlapConflict) holds for every ConflictError.
type ConflictError struct {
	PropertyID property.PropertyID
	Range      daterange.DateRange
	Bookings   []booking.BookingID
	Blocks     []block.BlockID
}

func (e *ConflictError) Error() string {
	var parts []string
	if len(e.Bookings) > 0 {
		parts = append(parts, fmt.Sprintf("%d booking(s)", len(e.Bookings)))
	}
	if len(e.Blocks) > 0 {
		parts = append(parts, fmt.Sprintf("%d block(s)", len(e.Blocks)))
	}
	return fmt.Sprintf("%s: %s overlaps %s", ErrOverlapConflict.Error(), e.Range, strings.Join(parts, " and "))
}

func (e *ConflictError) Unwrap() error { return ErrOverlapConflict }

// Report is the non-failing view of an availability check.
type Report struct {
	PropertyID property.PropertyID
	Range      daterange.DateRange
	Bookings   []booking.BookingID
	Blocks     []block.BlockID
}

func (r Report) Available() bool {
	return len(r.Bookings) == 0 && len(r.Blocks) == 0
}

// Validator decides whether a proposed range may be reserved.
//
// Blocks are only checked against other blocks unless BlocksCheckBookings is set.
type Validator struct {
	BlocksCheckBookings bool
	Logger              *slog.Logger
}

// ValidateBooking fails with ErrInvalidRange or a *ConflictError. A booking range
// conflicts with any active booking (other than exclude) and with any block.
func (v Validator) ValidateBooking(ctx context.Context, oracle Oracle, propertyID property.PropertyID, r daterange.DateRange, exclude booking.BookingID) (bool, error) {
	if err := r.Validate(); err != nil {
		v.logRejected("booking", propertyID, r, err)
		return false, err
	}
	bookings, err := oracle.OverlappingBookings(ctx, propertyID, r, exclude)
	if err != nil {
		return false, fmt.Errorf("availability: query bookings: %w", err)
	}
	if len(bookings) > 0 {
		conflict := &ConflictError{PropertyID: propertyID, Range: r, Bookings: bookingIDs(bookings)}
		v.logRejected("booking", propertyID, r, conflict)
		return false, conflict
	}
	blocks, err := oracle.OverlappingBlocks(ctx, propertyID, r, "")
	if err != nil {
		return false, fmt.Errorf("availability: query blocks: %w", err)
	}
	if len(blocks) > 0 {
		conflict := &ConflictError{PropertyID: propertyID, Range: r, Blocks: blockIDs(blocks)}
		v.logRejected("booking", propertyID, r, conflict)
		return false, conflict
	}
	return true, nil
}

// ValidateBlock applies the block variant of the check.
func (v Validator) ValidateBlock(ctx context.Context, oracle Oracle, propertyID property.PropertyID, r daterange.DateRange, exclude block.BlockID) (bool, error) {
	if err := r.Validate(); err != nil {
		v.logRejected("block", propertyID, r, err)
		return false, err
	}
	if v.BlocksCheckBookings {
		bookings, err := oracle.OverlappingBookings(ctx, propertyID, r, "")
		if err != nil {
			return false, fmt.Errorf("availability: query bookings: %w", err)
		}
		if len(bookings) > 0 {
			conflict := &ConflictError{PropertyID: propertyID, Range: r, Bookings: bookingIDs(bookings)}
			v.logRejected("block", propertyID, r, conflict)
			return false, conflict
		}
	}
	blocks, err := oracle.OverlappingBlocks(ctx, propertyID, r, exclude)
	if err != nil {
		return false, fmt.Errorf("availability: query blocks: %w", err)
	}
	if len(blocks) > 0 {
		conflict := &ConflictError{PropertyID: propertyID, Range: r, Blocks: blockIDs(blocks)}
		v.logRejected("block", propertyID, r, conflict)
		return false, conflict
	}
	return true, nil
}

// Inspect collects every booking and block colliding with r without failing on them.
func (v Validator) Inspect(ctx context.Context, oracle Oracle, propertyID property.PropertyID, r daterange.DateRange) (Report, error) {
	if err := r.Validate(); err != nil {
		return Report{}, err
	}
	bookings, err := oracle.OverlappingBookings(ctx, propertyID, r, "")
	if err != nil {
		return Report{}, fmt.Errorf("availability: query bookings: %w", err)
	}
	blocks, err := oracle.OverlappingBlocks(ctx, propertyID, r, "")
	if err != nil {
		return Report{}, fmt.Errorf("availability: query blocks: %w", err)
	}
	return Report{PropertyID: propertyID, Range: r, Bookings: bookingIDs(bookings), Blocks: blockIDs(blocks)}, nil
}

func (v Validator) logRejected(kind string, propertyID property.PropertyID, r daterange.DateRange, err error) {
	if v.Logger == nil {
		return
	}
	v.Logger.Warn("availability.conflict_detected", "kind", kind, "property_id", propertyID, "start", r.Start.Format(daterange.Layout), "end", r.End.Format(daterange.Layout), "error", err)
}

func bookingIDs(items []*booking.Booking) []booking.BookingID {
	out := make([]booking.BookingID, 0, len(items))
	for _, b := range items {
		out = append(out, b.ID)
	}
	return out
}

func blockIDs(items []*block.Block) []block.BlockID {
	out := make([]block.BlockID, 0, len(items))
	for _, b := range items {
		out = append(out, b.ID)
	}
	return out
}
