package dto

import (
	"time"

	domainblock "bookingcore/internal/domain/block"
	"bookingcore/internal/domain/shared/daterange"
)

type Block struct {
	ID            string     `json:"id"`
	PropertyID    string     `json:"property_id"`
	StartDate     string     `json:"start_date"`
	EndDate       string     `json:"end_date"`
	Reason        string     `json:"reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	LastUpdatedAt *time.Time `json:"last_updated_at,omitempty"`
}

func MapBlock(b *domainblock.Block) Block {
	if b == nil {
		return Block{}
	}
	out := Block{
		ID:         string(b.ID),
		PropertyID: string(b.PropertyID),
		StartDate:  b.Range.Start.Format(daterange.Layout),
		EndDate:    b.Range.End.Format(daterange.Layout),
		Reason:     b.Reason,
		CreatedAt:  b.CreatedAt,
	}
	if !b.LastUpdatedAt.IsZero() {
		updated := b.LastUpdatedAt
		out.LastUpdatedAt = &updated
	}
	return out
}
