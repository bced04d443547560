package block

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
	ErrBlockNotFound    = errors.New("block: not found")
	ErrIDRequired       = errors.New("block: id is required")
	ErrPropertyRequired = errors.New("block: property id is required")
)

type BlockID string

// Block is an owner-initiated window during which the property cannot be booked.
type Block struct {
	ID            BlockID
	PropertyID    property.PropertyID
	Range         daterange.DateRange
	Reason        string
	CreatedAt     time.Time
	LastUpdatedAt time.Time
	Version       int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BlockID) (*Block, error)
	Save(ctx context.Context, block *Block) error
	Delete(ctx context.Context, id BlockID) error
	FindOverlapping(ctx context.Context, propertyID property.PropertyID, r daterange.DateRange, exclude BlockID) ([]*Block, error)
	ListByProperty(ctx context.Context, propertyID property.PropertyID) ([]*Block, error)
}

type CreateParams struct {
	ID         BlockID
	PropertyID property.PropertyID
	Range      daterange.DateRange
	Reason     string
	CreatedAt  time.Time
}

func NewBlock(params CreateParams) (*Block, error) {
	if params.ID == "" {
		return nil, ErrIDRequired
	}
	if params.PropertyID == "" {
		return nil, ErrPropertyRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	b := &Block{
		ID:         params.ID,
		PropertyID: params.PropertyID,
		Range:      params.Range,
		Reason:     strings.TrimSpace(params.Reason),
		CreatedAt:  now,
	}
	b.Record(BlockCreated{BlockID: b.ID, PropertyID: b.PropertyID, Range: b.Range, At: now})
	return b, nil
}

// Reschedule moves the block to new dates. Availability must be checked by the caller.
func (b *Block) Reschedule(r daterange.DateRange, now time.Time) error {
	if err := r.Validate(); err != nil {
		return err
	}
	previous := b.Range
	b.Range = r
	b.LastUpdatedAt = now.UTC()
	b.Record(BlockUpdated{BlockID: b.ID, PropertyID: b.PropertyID, Previous: previous, Range: r, At: b.LastUpdatedAt})
	return nil
}

func (b *Block) MarkDeleted(now time.Time) {
	b.Record(BlockDeleted{BlockID: b.ID, PropertyID: b.PropertyID, At: now.UTC()})
}

type BlockCreated struct {
	BlockID    BlockID             `json:"block_id"`
	PropertyID property.PropertyID `json:"property_id"`
	Range      daterange.DateRange `json:"range"`
	At         time.Time           `json:"at"`
}

func (e BlockCreated) EventName() string     { return "block.created" }
func (e BlockCreated) AggregateID() string   { return string(e.BlockID) }
func (e BlockCreated) OccurredAt() time.Time { return e.At }

type BlockUpdated struct {
	BlockID    BlockID             `json:"block_id"`
	PropertyID property.PropertyID `json:"property_id"`
	Previous   daterange.DateRange `json:"previous"`
	Range      daterange.DateRange `json:"range"`
	At         time.Time           `json:"at"`
}

func (e BlockUpdated) EventName() string     { return "block.updated" }
func (e BlockUpdated) AggregateID() string   { return string(e.BlockID) }
func (e BlockUpdated) OccurredAt() time.Time { return e.At }

type BlockDeleted struct {
	BlockID    BlockID             `json:"block_id"`
	PropertyID property.PropertyID `json:"property_id"`
	At         time.Time           `json:"at"`
}

func (e BlockDeleted) EventName() string     { return "block.deleted" }
func (e BlockDeleted) AggregateID() string   { return string(e.BlockID) }
func (e BlockDeleted) OccurredAt() time.Time { return e.At }
