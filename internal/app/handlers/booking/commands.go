package booking

import (
	"bookingcore/internal/app/commands"
	"bookingcore/internal/app/dto"
	"bookingcore/internal/app/middleware"
	"bookingcore/internal/app/queries"
)

const (
	createBookingKey  = "booking.create"
	updateBookingKey  = "booking.update"
	cancelBookingKey  = "booking.cancel"
	rebookBookingKey  = "booking.rebook"
	deleteBookingKey  = "booking.delete"
	getBookingKey     = "booking.get"
	listByPropertyKey = "booking.list_by_property"
)

type CreateBookingCommand struct {
	PropertyID      string `validate:"required"`
	StartDate       string `validate:"required"`
	EndDate         string `validate:"required"`
	GuestName       string
	GuestLast4SSN   string `validate:"omitempty,max=4"`
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string            { return createBookingKey }
func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }
func (c CreateBookingCommand) ResultPrototype() any   { return &dto.Booking{} }

type UpdateBookingCommand struct {
	BookingID     string `validate:"required"`
	StartDate     string `validate:"required"`
	EndDate       string `validate:"required"`
	GuestName     string
	GuestLast4SSN string `validate:"omitempty,max=4"`
}

func (c UpdateBookingCommand) Key() string { return updateBookingKey }

type CancelBookingCommand struct {
	BookingID string `validate:"required"`
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

type RebookBookingCommand struct {
	BookingID string `validate:"required"`
}

func (c RebookBookingCommand) Key() string { return rebookBookingKey }

type DeleteBookingCommand struct {
	BookingID string `validate:"required"`
}

func (c DeleteBookingCommand) Key() string { return deleteBookingKey }

type GetBookingQuery struct {
	BookingID string `validate:"required"`
}

func (q GetBookingQuery) Key() string { return getBookingKey }

type ListPropertyBookingsQuery struct {
	PropertyID string `validate:"required"`
	ActiveOnly bool
}

func (q ListPropertyBookingsQuery) Key() string { return listByPropertyKey }

// Register binds every booking operation of l to the buses.
func Register(cmds *commands.InMemoryBus, qs *queries.InMemoryBus, l *Lifecycle) {
	commands.RegisterHandler(cmds, commands.HandlerFunc[CreateBookingCommand, *dto.Booking](l.Create))
	commands.RegisterHandler(cmds, commands.HandlerFunc[UpdateBookingCommand, *dto.Booking](l.Update))
	commands.RegisterHandler(cmds, commands.HandlerFunc[CancelBookingCommand, *dto.Booking](l.Cancel))
	commands.RegisterHandler(cmds, commands.HandlerFunc[RebookBookingCommand, *dto.Booking](l.Rebook))
	commands.RegisterHandler(cmds, commands.HandlerFunc[DeleteBookingCommand, struct{}](l.Delete))
	queries.RegisterHandler(qs, queries.HandlerFunc[GetBookingQuery, dto.Booking](l.Get))
	queries.RegisterHandler(qs, queries.HandlerFunc[ListPropertyBookingsQuery, dto.BookingCollection](l.ListByProperty))
}

var _ middleware.IdempotentCommand = CreateBookingCommand{}
