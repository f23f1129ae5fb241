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

// OrgUnitCreateInput captures the payload for creating an org unit. RoomID
// is optional; nil means the unit starts unassigned.
type OrgUnitCreateInput struct {
	ProjectID   uuid.UUID
	RoomID      *uuid.UUID
	Name        string
	Description string
	Result      *inventory.OrgUnit
}

// Type implements gocommand.Message.
func (OrgUnitCreateInput) Type() string {
	return "command.org_unit.create"
}

// Validate implements gocommand.Message.
func (input OrgUnitCreateInput) Validate() error {
	switch {
	case input.ProjectID == uuid.Nil:
		return ErrProjectIDRequired
	case strings.TrimSpace(input.Name) == "":
		return ErrOrgUnitNameRequired
	default:
		return nil
	}
}

// OrgUnitCreateCommand creates org units, optionally placed into a room of
// the same project.
type OrgUnitCreateCommand struct {
	base
}

// NewOrgUnitCreateCommand constructs the create handler.
func NewOrgUnitCreateCommand(cfg Config) (*OrgUnitCreateCommand, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	return &OrgUnitCreateCommand{base: b}, nil
}

var _ gocommand.Commander[OrgUnitCreateInput] = (*OrgUnitCreateCommand)(nil)

// Execute inserts the org unit and records its creation fact. Placement into
// a room additionally records the containment fact.
func (c *OrgUnitCreateCommand) Execute(ctx context.Context, input OrgUnitCreateInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	actor, _, err := c.gate.RequireOwner(ctx, types.ResourceProject, input.ProjectID)
	if err != nil {
		return err
	}
	if input.RoomID != nil {
		if err := c.requireContainerProject(ctx, c.stores.DB(), types.ResourceRoom, *input.RoomID, input.ProjectID); err != nil {
			return err
		}
	}

	unit := &inventory.OrgUnit{
		ProjectID:   input.ProjectID,
		RoomID:      input.RoomID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
	}
	err = c.stores.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := c.stores.CreateOrgUnitTx(ctx, tx, unit); err != nil {
			return err
		}
		if err := c.recorder.RecordCreate(ctx, tx, actor, unit); err != nil {
			return err
		}
		if input.RoomID == nil {
			return nil
		}
		container := types.ContainerRef{Kind: types.ResourceRoom, ID: *input.RoomID}
		return c.recorder.RecordAddChild(ctx, tx, actor, container, types.ResourceOrgUnit, unit.ID)
	})
	if err != nil {
		return err
	}

	if input.Result != nil {
		*input.Result = *unit
	}
	return nil
}

// OrgUnitUpdateInput captures a partial org unit update. Containment changes
// go through OrgUnitMoveInput instead.
type OrgUnitUpdateInput struct {
	OrgUnitID   uuid.UUID
	Name        *string
	Description *string
	Result      *inventory.OrgUnit
}

// Type implements gocommand.Message.
func (OrgUnitUpdateInput) Type() string {
	return "command.org_unit.update"
}

// Validate implements gocommand.Message.
func (input OrgUnitUpdateInput) Validate() error {
	if input.OrgUnitID == uuid.Nil {
		return ErrOrgUnitIDRequired
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return ErrOrgUnitNameRequired
	}
	return nil
}

// OrgUnitUpdateCommand updates org unit attributes.
type OrgUnitUpdateCommand struct {
	base
}

// NewOrgUnitUpdateCommand constructs the update handler.
func NewOrgUnitUpdateCommand(cfg Config) (*OrgUnitUpdateCommand, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	return &OrgUnitUpdateCommand{base: b}, nil
}

var _ gocommand.Commander[OrgUnitUpdateInput] = (*OrgUnitUpdateCommand)(nil)

// Execute rewrites the org unit row and records the attribute diff.
func (c *OrgUnitUpdateCommand) Execute(ctx context.Context, input OrgUnitUpdateInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	actor, _, err := c.gate.RequireOwner(ctx, types.ResourceOrgUnit, input.OrgUnitID)
	if err != nil {
		return err
	}

	unit, err := c.stores.GetOrgUnit(ctx, input.OrgUnitID)
	if err != nil {
		return err
	}
	before := *unit
	if input.Name != nil {
		unit.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		unit.Description = *input.Description
	}

	err = c.stores.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := c.stores.UpdateOrgUnitTx(ctx, tx, unit); err != nil {
			return err
		}
		return c.recorder.RecordUpdate(ctx, tx, actor, &before, unit)
	})
	if err != nil {
		return err
	}

	if input.Result != nil {
		*input.Result = *unit
	}
	return nil
}

// OrgUnitMoveInput relocates an org unit between rooms. A nil RoomID
// unassigns it.
type OrgUnitMoveInput struct {
	OrgUnitID uuid.UUID
	RoomID    *uuid.UUID
	Result    *inventory.OrgUnit
}

// Type implements gocommand.Message.
func (OrgUnitMoveInput) Type() string {
	return "command.org_unit.move"
}

// Validate implements gocommand.Message.
func (input OrgUnitMoveInput) Validate() error {
	if input.OrgUnitID == uuid.Nil {
		return ErrOrgUnitIDRequired
	}
	return nil
}

// OrgUnitMoveCommand relocates org units within their project.
type OrgUnitMoveCommand struct {
	base
}

// NewOrgUnitMoveCommand constructs the move handler.
func NewOrgUnitMoveCommand(cfg Config) (*OrgUnitMoveCommand, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	return &OrgUnitMoveCommand{base: b}, nil
}

var _ gocommand.Commander[OrgUnitMoveInput] = (*OrgUnitMoveCommand)(nil)

// Execute updates the containment pointer and records the move with its
// container effects.
func (c *OrgUnitMoveCommand) Execute(ctx context.Context, input OrgUnitMoveInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	actor, _, err := c.gate.RequireOwner(ctx, types.ResourceOrgUnit, input.OrgUnitID)
	if err != nil {
		return err
	}

	unit, err := c.stores.GetOrgUnit(ctx, input.OrgUnitID)
	if err != nil {
		return err
	}
	if input.RoomID != nil {
		if err := c.requireContainerProject(ctx, c.stores.DB(), types.ResourceRoom, *input.RoomID, unit.ProjectID); err != nil {
			return err
		}
	}

	from := containerRef(types.ResourceRoom, unit.RoomID)
	to := containerRef(types.ResourceRoom, input.RoomID)
	unit.RoomID = input.RoomID

	err = c.stores.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := c.stores.UpdateOrgUnitTx(ctx, tx, unit); err != nil {
			return err
		}
		return c.recorder.RecordMove(ctx, tx, actor, unit, from, to)
	})
	if err != nil {
		return err
	}

	if input.Result != nil {
		*input.Result = *unit
	}
	return nil
}

func containerRef(kind types.ResourceKind, id *uuid.UUID) *types.ContainerRef {
	if id == nil {
		return nil
	}
	return &types.ContainerRef{Kind: kind, ID: *id}
}

// OrgUnitDeleteInput identifies the org unit to remove.
type OrgUnitDeleteInput struct {
	OrgUnitID uuid.UUID
}

// Type implements gocommand.Message.
func (OrgUnitDeleteInput) Type() string {
	return "command.org_unit.delete"
}

// Validate implements gocommand.Message.
func (input OrgUnitDeleteInput) Validate() error {
	if input.OrgUnitID == uuid.Nil {
		return ErrOrgUnitIDRequired
	}
	return nil
}

// OrgUnitDeleteCommand removes an org unit. Items inside it become
// unassigned through the FK's SET NULL.
type OrgUnitDeleteCommand struct {
	base
}

// NewOrgUnitDeleteCommand constructs the delete handler.
func NewOrgUnitDeleteCommand(cfg Config) (*OrgUnitDeleteCommand, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	return &OrgUnitDeleteCommand{base: b}, nil
}

var _ gocommand.Commander[OrgUnitDeleteInput] = (*OrgUnitDeleteCommand)(nil)

// Execute records the deletion fact while the row is still resolvable, then
// removes it.
func (c *OrgUnitDeleteCommand) Execute(ctx context.Context, input OrgUnitDeleteInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	actor, _, err := c.gate.RequireOwner(ctx, types.ResourceOrgUnit, input.OrgUnitID)
	if err != nil {
		return err
	}

	unit, err := c.stores.GetOrgUnit(ctx, input.OrgUnitID)
	if err != nil {
		return err
	}

	return c.stores.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := c.recorder.RecordDelete(ctx, tx, actor, unit); err != nil {
			return err
		}
		return c.stores.DeleteOrgUnitTx(ctx, tx, input.OrgUnitID)
	})
}
