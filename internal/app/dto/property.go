package dto

import (
	"time"

	domainproperty "bookingcore/internal/domain/property"
)

type Property struct {
	ID        string    `json:"id"`
	OwnerName string    `json:"owner_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func MapProperty(p *domainproperty.Property) Property {
	if p == nil {
		return Property{}
	}
	return Property{ID: string(p.ID), OwnerName: p.OwnerName, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt}
}
