package booking

import (
	"time"

	"bookingcore/internal/domain/property"
	"bookingcore/internal/domain/shared/daterange"
)

type BookingCreated struct {
	BookingID  BookingID           `json:"booking_id"`
	PropertyID property.PropertyID `json:"property_id"`
	Range      daterange.DateRange `json:"range"`
	GuestName  string              `json:"guest_name"`
	At         time.Time           `json:"at"`
}

func (e BookingCreated) EventName() string     { return "booking.created" }
func (e BookingCreated) AggregateID() string   { return string(e.BookingID) }
func (e BookingCreated) OccurredAt() time.Time { return e.At }

type BookingUpdated struct {
	BookingID  BookingID           `json:"booking_id"`
	PropertyID property.PropertyID `json:"property_id"`
	Previous   daterange.DateRange `json:"previous"`
	Range      daterange.DateRange `json:"range"`
	At         time.Time           `json:"at"`
}

func (e BookingUpdated) EventName() string     { return "booking.updated" }
func (e BookingUpdated) AggregateID() string   { return string(e.BookingID) }
func (e BookingUpdated) OccurredAt() time.Time { return e.At }

type BookingCanceled struct {
	BookingID  BookingID           `json:"booking_id"`
	PropertyID property.PropertyID `json:"property_id"`
	Range      daterange.DateRange `json:"range"`
	At         time.Time           `json:"at"`
}

func (e BookingCanceled) EventName() string     { return "booking.canceled" }
func (e BookingCanceled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCanceled) OccurredAt() time.Time { return e.At }

type BookingRebooked struct {
	BookingID  BookingID           `json:"booking_id"`
	PropertyID property.PropertyID `json:"property_id"`
	Range      daterange.DateRange `json:"range"`
	At         time.Time           `json:"at"`
}

func (e BookingRebooked) EventName() string     { return "booking.rebooked" }
func (e BookingRebooked) AggregateID() string   { return string(e.BookingID) }
func (e BookingRebooked) OccurredAt() time.Time { return e.At }

type BookingDeleted struct {
	BookingID  BookingID           `json:"booking_id"`
	PropertyID property.PropertyID `json:"property_id"`
	At         time.Time           `json:"at"`
}

func (e BookingDeleted) EventName() string     { return "booking.deleted" }
func (e BookingDeleted) AggregateID() string   { return string(e.BookingID) }
func (e BookingDeleted) OccurredAt() time.Time { return e.At }
