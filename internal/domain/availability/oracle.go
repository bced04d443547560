package availability

import (
	"context"

	"bookingcore/internal/domain/block"
	"bookingcore/internal/domain/booking"
	"bookingcore/internal/domain/property"
	"bookingcore/internal/domain/shared/daterange"
)

// Oracle answers "what already occupies these dates" for a property.
// Implementations must read the store of record on every call.
type Oracle interface {
	OverlappingBookings(ctx context.Context, propertyID property.PropertyID, r daterange.DateRange, exclude booking.BookingID) ([]*booking.Booking, error)
	OverlappingBlocks(ctx context.Context, propertyID property.PropertyID, r daterange.DateRange, exclude block.BlockID) ([]*block.Block, error)
}

// RepositoryOracle adapts the booking and block repositories of a unit of work.
type RepositoryOracle struct {
	Bookings booking.Repository
	Blocks   block.Repository
}

func (o RepositoryOracle) OverlappingBookings(ctx context.Context, propertyID property.PropertyID, r daterange.DateRange, exclude booking.BookingID) ([]*booking.Booking, error) {
	found, err := o.Bookings.FindOverlapping(ctx, propertyID, r, exclude)
	if err != nil {
		return nil, err
	}
	// stores are trusted for the range filter; status is re-checked here
	active := found[:0:0]
	for _, b := range found {
		if b.Active() && b.ID != exclude {
			active = append(active, b)
		}
	}
	return active, nil
}

func (o RepositoryOracle) OverlappingBlocks(ctx context.Context, propertyID property.PropertyID, r daterange.DateRange, exclude block.BlockID) ([]*block.Block, error) {
	found, err := o.Blocks.FindOverlapping(ctx, propertyID, r, exclude)
	if err != nil {
		return nil, err
	}
	out := found[:0:0]
	for _, b := range found {
		if b.ID != exclude {
			out = append(out, b)
		}
	}
	return out, nil
}

var _ Oracle = RepositoryOracle{}
