package mongo

import (
	"time"

	domainblock "bookingcore/internal/domain/block"
	domainbooking "bookingcore/internal/domain/booking"
	domainproperty "bookingcore/internal/domain/property"
	"bookingcore/internal/domain/shared/daterange"
)

// Days are stored as UTC midnights so range predicates compare whole dates.

type propertyDocument struct {
	ID        string    `bson:"_id"`
	OwnerName string    `bson:"owner_name"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func newPropertyDocument(p *domainproperty.Property) propertyDocument {
	return propertyDocument{ID: string(p.ID), OwnerName: p.OwnerName, CreatedAt: p.CreatedAt.UTC(), UpdatedAt: p.UpdatedAt.UTC()}
}

func (d propertyDocument) toAggregate() *domainproperty.Property {
	return &domainproperty.Property{
		ID:        domainproperty.PropertyID(d.ID),
		OwnerName: d.OwnerName,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

type bookingDocument struct {
	ID            string     `bson:"_id"`
	PropertyID    string     `bson:"property_id"`
	StartDay      time.Time  `bson:"start_day"`
	EndDay        time.Time  `bson:"end_day"`
	Status        string     `bson:"status"`
	GuestName     string     `bson:"guest_name"`
	GuestLast4SSN string     `bson:"guest_last4_ssn"`
	CreatedAt     time.Time  `bson:"created_at"`
	LastUpdatedAt *time.Time `bson:"last_updated_at,omitempty"`
	Version       int64      `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:            string(b.ID),
		PropertyID:    string(b.PropertyID),
		StartDay:      b.Range.Start,
		EndDay:        b.Range.End,
		Status:        string(b.Status),
		GuestName:     b.GuestName,
		GuestLast4SSN: b.GuestLast4SSN,
		CreatedAt:     b.CreatedAt.UTC(),
		LastUpdatedAt: optionalTime(b.LastUpdatedAt),
		Version:       b.Version,
	}
}

func (d bookingDocument) toAggregate() (*domainbooking.Booking, error) {
	status, err := domainbooking.ParseStatus(d.Status)
	if err != nil {
		return nil, err
	}
	return &domainbooking.Booking{
		ID:            domainbooking.BookingID(d.ID),
		PropertyID:    domainproperty.PropertyID(d.PropertyID),
		Range:         daterange.Between(d.StartDay, d.EndDay),
		Status:        status,
		GuestName:     d.GuestName,
		GuestLast4SSN: d.GuestLast4SSN,
		CreatedAt:     d.CreatedAt.UTC(),
		LastUpdatedAt: derefTime(d.LastUpdatedAt),
		Version:       d.Version,
	}, nil
}

type blockDocument struct {
	ID            string     `bson:"_id"`
	PropertyID    string     `bson:"property_id"`
	StartDay      time.Time  `bson:"start_day"`
	EndDay        time.Time  `bson:"end_day"`
	Reason        string     `bson:"reason,omitempty"`
	CreatedAt     time.Time  `bson:"created_at"`
	LastUpdatedAt *time.Time `bson:"last_updated_at,omitempty"`
	Version       int64      `bson:"version"`
}

func newBlockDocument(b *domainblock.Block) blockDocument {
	return blockDocument{
		ID:            string(b.ID),
		PropertyID:    string(b.PropertyID),
		StartDay:      b.Range.Start,
		EndDay:        b.Range.End,
		Reason:        b.Reason,
		CreatedAt:     b.CreatedAt.UTC(),
		LastUpdatedAt: optionalTime(b.LastUpdatedAt),
		Version:       b.Version,
	}
}

func (d blockDocument) toAggregate() *domainblock.Block {
	return &domainblock.Block{
		ID:            domainblock.BlockID(d.ID),
		PropertyID:    domainproperty.PropertyID(d.PropertyID),
		Range:         daterange.Between(d.StartDay, d.EndDay),
		Reason:        d.Reason,
		CreatedAt:     d.CreatedAt.UTC(),
		LastUpdatedAt: derefTime(d.LastUpdatedAt),
		Version:       d.Version,
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}
