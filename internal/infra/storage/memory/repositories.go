package memory

import (
	"context"
	"sort"
	"sync"

	domainblock "bookingcore/internal/domain/block"
	domainbooking "bookingcore/internal/domain/booking"
	domainproperty "bookingcore/internal/domain/property"
	"bookingcore/internal/domain/shared/daterange"
)

// Repositories hand out copies so callers never mutate stored state in place.

type PropertyRepository struct {
	mu    sync.RWMutex
	items map[domainproperty.PropertyID]*domainproperty.Property
}

func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{items: make(map[domainproperty.PropertyID]*domainproperty.Property)}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.PropertyID) (*domainproperty.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, domainproperty.ErrPropertyNotFound
	}
	return cloneProperty(p), nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	if p == nil || p.ID == "" {
		return domainproperty.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[p.ID] = cloneProperty(p)
	return nil
}

// BookingRepository stores bookings in memory.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	if b == nil || b.ID == "" {
		return domainbooking.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b.Version++
	r.items[b.ID] = cloneBooking(b)
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.BookingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainbooking.ErrBookingNotFound
	}
	delete(r.items, id)
	return nil
}

// FindOverlapping scans the property's active bookings for a closed-interval overlap.
func (r *BookingRepository) FindOverlapping(ctx context.Context, propertyID domainproperty.PropertyID, dr daterange.DateRange, exclude domainbooking.BookingID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range r.items {
		if b.PropertyID != propertyID || b.ID == exclude || !b.Active() {
			continue
		}
		if b.Range.Overlaps(dr) {
			out = append(out, cloneBooking(b))
		}
	}
	sortBookings(out)
	return out, nil
}

func (r *BookingRepository) ListByProperty(ctx context.Context, propertyID domainproperty.PropertyID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if b.PropertyID == propertyID {
			out = append(out, cloneBooking(b))
		}
	}
	sortBookings(out)
	return out, nil
}

type BlockRepository struct {
	mu    sync.RWMutex
	items map[domainblock.BlockID]*domainblock.Block
}

func NewBlockRepository() *BlockRepository {
	return &BlockRepository{items: make(map[domainblock.BlockID]*domainblock.Block)}
}

func (r *BlockRepository) ByID(ctx context.Context, id domainblock.BlockID) (*domainblock.Block, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainblock.ErrBlockNotFound
	}
	return cloneBlock(b), nil
}

func (r *BlockRepository) Save(ctx context.Context, b *domainblock.Block) error {
	if b == nil || b.ID == "" {
		return domainblock.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b.Version++
	r.items[b.ID] = cloneBlock(b)
	return nil
}

func (r *BlockRepository) Delete(ctx context.Context, id domainblock.BlockID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainblock.ErrBlockNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *BlockRepository) FindOverlapping(ctx context.Context, propertyID domainproperty.PropertyID, dr daterange.DateRange, exclude domainblock.BlockID) ([]*domainblock.Block, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainblock.Block
	for _, b := range r.items {
		if b.PropertyID == propertyID && b.ID != exclude && b.Range.Overlaps(dr) {
			out = append(out, cloneBlock(b))
		}
	}
	sortBlocks(out)
	return out, nil
}

func (r *BlockRepository) ListByProperty(ctx context.Context, propertyID domainproperty.PropertyID) ([]*domainblock.Block, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainblock.Block, 0)
	for _, b := range r.items {
		if b.PropertyID == propertyID {
			out = append(out, cloneBlock(b))
		}
	}
	sortBlocks(out)
	return out, nil
}

func sortBookings(items []*domainbooking.Booking) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Range.Start.Equal(items[j].Range.Start) {
			return items[i].ID < items[j].ID
		}
		return items[i].Range.Start.Before(items[j].Range.Start)
	})
}

func sortBlocks(items []*domainblock.Block) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Range.Start.Equal(items[j].Range.Start) {
			return items[i].ID < items[j].ID
		}
		return items[i].Range.Start.Before(items[j].Range.Start)
	})
}

func cloneProperty(p *domainproperty.Property) *domainproperty.Property {
	cp := *p
	cp.ClearEvents()
	return &cp
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	cp := *b
	cp.ClearEvents()
	return &cp
}

func cloneBlock(b *domainblock.Block) *domainblock.Block {
	cp := *b
	cp.ClearEvents()
	return &cp
}

var (
	_ domainproperty.Repository = (*PropertyRepository)(nil)
	_ domainbooking.Repository  = (*BookingRepository)(nil)
	_ domainblock.Repository    = (*BlockRepository)(nil)
)
