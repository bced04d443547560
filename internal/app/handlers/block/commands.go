package block

import (
	"bookingcore/internal/app/commands"
	"bookingcore/internal/app/dto"
	"bookingcore/internal/app/middleware"
	"bookingcore/internal/app/queries"
)

const (
	createBlockKey = "block.create"
	updateBlockKey = "block.update"
	deleteBlockKey = "block.delete"
	getBlockKey    = "block.get"
)

type CreateBlockCommand struct {
	PropertyID      string `validate:"required"`
	StartDate       string `validate:"required"`
	EndDate         string `validate:"required"`
	Reason          string `validate:"max=280"`
	IdempotencyKeyV string
}

func (c CreateBlockCommand) Key() string            { return createBlockKey }
func (c CreateBlockCommand) IdempotencyKey() string { return c.IdempotencyKeyV }
func (c CreateBlockCommand) ResultPrototype() any   { return &dto.Block{} }

type UpdateBlockCommand struct {
	BlockID   string `validate:"required"`
	StartDate string `validate:"required"`
	EndDate   string `validate:"required"`
}

func (c UpdateBlockCommand) Key() string { return updateBlockKey }

type DeleteBlockCommand struct {
	BlockID string `validate:"required"`
}

func (c DeleteBlockCommand) Key() string { return deleteBlockKey }

type GetBlockQuery struct {
	BlockID string `validate:"required"`
}

func (q GetBlockQuery) Key() string { return getBlockKey }

func Register(cmds *commands.InMemoryBus, qs *queries.InMemoryBus, l *Lifecycle) {
	commands.RegisterHandler(cmds, commands.HandlerFunc[CreateBlockCommand, *dto.Block](l.Create))
	commands.RegisterHandler(cmds, commands.HandlerFunc[UpdateBlockCommand, *dto.Block](l.Update))
	commands.RegisterHandler(cmds, commands.HandlerFunc[DeleteBlockCommand, struct{}](l.Delete))
	queries.RegisterHandler(qs, queries.HandlerFunc[GetBlockQuery, dto.Block](l.Get))
}

var _ middleware.IdempotentCommand = CreateBlockCommand{}
