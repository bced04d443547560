package dto

import (
	"time"

	domainbooking "bookingcore/internal/domain/booking"
	"bookingcore/internal/domain/shared/daterange"
)

type Booking struct {
	ID            string     `json:"id"`
	PropertyID    string     `json:"property_id"`
	StartDate     string     `json:"start_date"`
	EndDate       string     `json:"end_date"`
	Status        string     `json:"status"`
	StatusLabel   string     `json:"status_label"`
	GuestName     string     `json:"guest_name"`
	GuestLast4SSN string     `json:"guest_last4_ssn"`
	CreatedAt     time.Time  `json:"created_at"`
	LastUpdatedAt *time.Time `json:"last_updated_at,omitempty"`
}

type BookingCollection struct {
	PropertyID string    `json:"property_id"`
	Items      []Booking `json:"items"`
}

func MapBooking(b *domainbooking.Booking) Booking {
	if b == nil {
		return Booking{}
	}
	out := Booking{
		ID:            string(b.ID),
		PropertyID:    string(b.PropertyID),
		StartDate:     b.Range.Start.Format(daterange.Layout),
		EndDate:       b.Range.End.Format(daterange.Layout),
		Status:        string(b.Status),
		StatusLabel:   domainbooking.DisplayName(b.Status),
		GuestName:     b.GuestName,
		GuestLast4SSN: b.GuestLast4SSN,
		CreatedAt:     b.CreatedAt,
	}
	if !b.LastUpdatedAt.IsZero() {
		updated := b.LastUpdatedAt
		out.LastUpdatedAt = &updated
	}
	return out
}

// MapUpdatedBooking is MapBooking with the transient "Updated" label.
func MapUpdatedBooking(b *domainbooking.Booking) Booking {
	out := MapBooking(b)
	out.StatusLabel = domainbooking.UpdatedLabel
	return out
}
