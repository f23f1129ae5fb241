package command

import (
	"context"
	"strings"

	"github.com/croysdar/clutter-map-sub000/inventory"
	"github.com/croysdar/clutter-map-sub000/pkg/types"
	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RoomCreateInput captures the payload for creating a room.
type RoomCreateInput struct {
	ProjectID   uuid.UUID
	Name        string
	Description string
	Result      *inventory.Room
}

// Type implements gocommand.Message.
func (RoomCreateInput) Type() string {
	return "command.room.create"
}

// Validate implements gocommand.Message.
func (input RoomCreateInput) Validate() error {
	switch {
	case input.ProjectID == uuid.Nil:
		return ErrProjectIDRequired
	case strings.TrimSpace(input.Name) == "":
		return ErrRoomNameRequired
	default:
		return nil
	}
}

// RoomCreateCommand creates rooms inside a project the actor owns.
type RoomCreateCommand struct {
	base
}

// NewRoomCreateCommand constructs the create handler.
func NewRoomCreateCommand(cfg Config) (*RoomCreateCommand, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	return &RoomCreateCommand{base: b}, nil
}

var _ gocommand.Commander[RoomCreateInput] = (*RoomCreateCommand)(nil)

// Execute inserts the room and records its creation fact.
func (c *RoomCreateCommand) Execute(ctx context.Context, input RoomCreateInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	actor, _, err := c.gate.RequireOwner(ctx, types.ResourceProject, input.ProjectID)
	if err != nil {
		return err
	}

	room := &inventory.Room{
		ProjectID:   input.ProjectID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
	}
	err = c.stores.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := c.stores.CreateRoomTx(ctx, tx, room); err != nil {
			return err
		}
		return c.recorder.RecordCreate(ctx, tx, actor, room)
	})
	if err != nil {
		return err
	}

	if input.Result != nil {
		*input.Result = *room
	}
	return nil
}

// RoomUpdateInput captures a partial room update.
type RoomUpdateInput struct {
	RoomID      uuid.UUID
	Name        *string
	Description *string
	Result      *inventory.Room
}

// Type implements gocommand.Message.
func (RoomUpdateInput) Type() string {
	return "command.room.update"
}

// Validate implements gocommand.Message.
func (input RoomUpdateInput) Validate() error {
	if input.RoomID == uuid.Nil {
		return ErrRoomIDRequired
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return ErrRoomNameRequired
	}
	return nil
}

// RoomUpdateCommand updates room attributes.
type RoomUpdateCommand struct {
	base
}

// NewRoomUpdateCommand constructs the update handler.
func NewRoomUpdateCommand(cfg Config) (*RoomUpdateCommand, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	return &RoomUpdateCommand{base: b}, nil
}

var _ gocommand.Commander[RoomUpdateInput] = (*RoomUpdateCommand)(nil)

// Execute rewrites the room row and records the attribute diff.
func (c *RoomUpdateCommand) Execute(ctx context.Context, input RoomUpdateInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	actor, _, err := c.gate.RequireOwner(ctx, types.ResourceRoom, input.RoomID)
	if err != nil {
		return err
	}

	room, err := c.stores.GetRoom(ctx, input.RoomID)
	if err != nil {
		return err
	}
	before := *room
	if input.Name != nil {
		room.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		room.Description = *input.Description
	}

	err = c.stores.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := c.stores.UpdateRoomTx(ctx, tx, room); err != nil {
			return err
		}
		return c.recorder.RecordUpdate(ctx, tx, actor, &before, room)
	})
	if err != nil {
		return err
	}

	if input.Result != nil {
		*input.Result = *room
	}
	return nil
}

// RoomDeleteInput identifies the room to remove.
type RoomDeleteInput struct {
	RoomID uuid.UUID
}

// Type implements gocommand.Message.
func (RoomDeleteInput) Type() string {
	return "command.room.delete"
}

// Validate implements gocommand.Message.
func (input RoomDeleteInput) Validate() error {
	if input.RoomID == uuid.Nil {
		return ErrRoomIDRequired
	}
	return nil
}

// RoomDeleteCommand removes a room. Org units inside it become unassigned
// through the FK's SET NULL; their rows and history stay.
type RoomDeleteCommand struct {
	base
}

// NewRoomDeleteCommand constructs the delete handler.
func NewRoomDeleteCommand(cfg Config) (*RoomDeleteCommand, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	return &RoomDeleteCommand{base: b}, nil
}

var _ gocommand.Commander[RoomDeleteInput] = (*RoomDeleteCommand)(nil)

// Execute records the deletion fact while the row is still resolvable, then
// removes it.
func (c *RoomDeleteCommand) Execute(ctx context.Context, input RoomDeleteInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	actor, _, err := c.gate.RequireOwner(ctx, types.ResourceRoom, input.RoomID)
	if err != nil {
		return err
	}

	room, err := c.stores.GetRoom(ctx, input.RoomID)
	if err != nil {
		return err
	}

	return c.stores.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := c.recorder.RecordDelete(ctx, tx, actor, room); err != nil {
			return err
		}
		return c.stores.DeleteRoomTx(ctx, tx, input.RoomID)
	})
}
