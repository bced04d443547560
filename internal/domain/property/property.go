package property

import (
	"context"
	"errors"
	"strings"
	"time"

	"bookingcore/internal/domain/shared/events"
)

var (
	ErrPropertyNotFound = errors.New("property: not found")
	ErrIDRequired       = errors.New("property: id is required")
	ErrOwnerRequired    = errors.New("property: owner name is required")
)

type PropertyID string

// Property is the rentable unit. It is registered by an upstream system and only
// read by the reservation core.
type Property struct {
	ID        PropertyID
	OwnerName string
	CreatedAt time.Time
	UpdatedAt time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id PropertyID) (*Property, error)
	Save(ctx context.Context, property *Property) error
}

func New(id PropertyID, ownerName string, now time.Time) (*Property, error) {
	p := &Property{ID: PropertyID(strings.TrimSpace(string(id)))}
	if p.ID == "" {
		return nil, ErrIDRequired
	}
	if err := p.Rename(ownerName, now); err != nil {
		return nil, err
	}
	p.CreatedAt = p.UpdatedAt
	p.ClearEvents()
	p.Record(PropertyRegistered{PropertyID: p.ID, OwnerName: p.OwnerName, At: p.CreatedAt})
	return p, nil
}

// Rename changes the owner of record.
func (p *Property) Rename(ownerName string, now time.Time) error {
	ownerName = strings.TrimSpace(ownerName)
	if ownerName == "" {
		return ErrOwnerRequired
	}
	if ownerName == p.OwnerName {
		return nil
	}
	p.OwnerName = ownerName
	p.UpdatedAt = now.UTC()
	p.Record(PropertyOwnerChanged{PropertyID: p.ID, OwnerName: ownerName, At: p.UpdatedAt})
	return nil
}

type PropertyRegistered struct {
	PropertyID PropertyID `json:"property_id"`
	OwnerName  string     `json:"owner_name"`
	At         time.Time  `json:"at"`
}

func (e PropertyRegistered) EventName() string     { return "property.registered" }
func (e PropertyRegistered) AggregateID() string   { return string(e.PropertyID) }
func (e PropertyRegistered) OccurredAt() time.Time { return e.At }

type PropertyOwnerChanged struct {
	PropertyID PropertyID `json:"property_id"`
	OwnerName  string     `json:"owner_name"`
	At         time.Time  `json:"at"`
}

func (e PropertyOwnerChanged) EventName() string     { return "property.owner_changed" }
func (e PropertyOwnerChanged) AggregateID() string   { return string(e.PropertyID) }
func (e PropertyOwnerChanged) OccurredAt() time.Time { return e.At }
