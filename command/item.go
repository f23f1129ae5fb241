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

// ItemCreateInput captures the payload for creating an item. OrgUnitID is
// optional; nil means the item starts unassigned.
type ItemCreateInput struct {
	ProjectID   uuid.UUID
	OrgUnitID   *uuid.UUID
	Name        string
	Description string
	Quantity    int
	Tags        []string
	Result      *inventory.Item
}

// Type implements gocommand.Message.
func (ItemCreateInput) Type() string {
	return "command.item.create"
}

// Validate implements gocommand.Message.
func (input ItemCreateInput) Validate() error {
	switch {
	case input.ProjectID == uuid.Nil:
		return ErrProjectIDRequired
	case strings.TrimSpace(input.Name) == "":
		return ErrItemNameRequired
	case input.Quantity < 0:
		return ErrQuantityInvalid
	default:
		return nil
	}
}

// ItemCreateCommand creates items, optionally placed into an org unit of the
// same project.
type ItemCreateCommand struct {
	base
}

// NewItemCreateCommand constructs the create handler.
func NewItemCreateCommand(cfg Config) (*ItemCreateCommand, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	return &ItemCreateCommand{base: b}, nil
}

var _ gocommand.Commander[ItemCreateInput] = (*ItemCreateCommand)(nil)

// Execute inserts the item and records its creation fact. Placement into an
// org unit additionally records the containment fact.
func (c *ItemCreateCommand) Execute(ctx context.Context, input ItemCreateInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	actor, _, err := c.gate.RequireOwner(ctx, types.ResourceProject, input.ProjectID)
	if err != nil {
		return err
	}
	if input.OrgUnitID != nil {
		if err := c.requireContainerProject(ctx, c.stores.DB(), types.ResourceOrgUnit, *input.OrgUnitID, input.ProjectID); err != nil {
			return err
		}
	}

	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	item := &inventory.Item{
		ProjectID:   input.ProjectID,
		OrgUnitID:   input.OrgUnitID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Quantity:    quantity,
		Tags:        input.Tags,
	}
	err = c.stores.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := c.stores.CreateItemTx(ctx, tx, item); err != nil {
			return err
		}
		if err := c.recorder.RecordCreate(ctx, tx, actor, item); err != nil {
			return err
		}
		if input.OrgUnitID == nil {
			return nil
		}
		container := types.ContainerRef{Kind: types.ResourceOrgUnit, ID: *input.OrgUnitID}
		return c.recorder.RecordAddChild(ctx, tx, actor, container, types.ResourceItem, item.ID)
	})
	if err != nil {
		return err
	}

	if input.Result != nil {
		*input.Result = *item
	}
	return nil
}

// ItemUpdateInput captures a partial item update. Containment changes go
// through ItemMoveInput instead.
type ItemUpdateInput struct {
	ItemID      uuid.UUID
	Name        *string
	Description *string
	Quantity    *int
	Tags        *[]string
	Result      *inventory.Item
}

// Type implements gocommand.Message.
func (ItemUpdateInput) Type() string {
	return "command.item.update"
}

// Validate implements gocommand.Message.
func (input ItemUpdateInput) Validate() error {
	switch {
	case input.ItemID == uuid.Nil:
		return ErrItemIDRequired
	case input.Name != nil && strings.TrimSpace(*input.Name) == "":
		return ErrItemNameRequired
	case input.Quantity != nil && *input.Quantity < 0:
		return ErrQuantityInvalid
	default:
		return nil
	}
}

// ItemUpdateCommand updates item attributes.
type ItemUpdateCommand struct {
	base
}

// NewItemUpdateCommand constructs the update handler.
func NewItemUpdateCommand(cfg Config) (*ItemUpdateCommand, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	return &ItemUpdateCommand{base: b}, nil
}

var _ gocommand.Commander[ItemUpdateInput] = (*ItemUpdateCommand)(nil)

// Execute rewrites the item row and records the attribute diff.
func (c *ItemUpdateCommand) Execute(ctx context.Context, input ItemUpdateInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	actor, _, err := c.gate.RequireOwner(ctx, types.ResourceItem, input.ItemID)
	if err != nil {
		return err
	}

	item, err := c.stores.GetItem(ctx, input.ItemID)
	if err != nil {
		return err
	}
	before := *item
	if input.Name != nil {
		item.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.Quantity != nil {
		item.Quantity = *input.Quantity
	}
	if input.Tags != nil {
		item.Tags = *input.Tags
	}

	err = c.stores.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := c.stores.UpdateItemTx(ctx, tx, item); err != nil {
			return err
		}
		return c.recorder.RecordUpdate(ctx, tx, actor, &before, item)
	})
	if err != nil {
		return err
	}

	if input.Result != nil {
		*input.Result = *item
	}
	return nil
}

// ItemMoveInput relocates an item between org units. A nil OrgUnitID
// unassigns it.
type ItemMoveInput struct {
	ItemID    uuid.UUID
	OrgUnitID *uuid.UUID
	Result    *inventory.Item
}

// Type implements gocommand.Message.
func (ItemMoveInput) Type() string {
	return "command.item.move"
}

// Validate implements gocommand.Message.
func (input ItemMoveInput) Validate() error {
	if input.ItemID == uuid.Nil {
		return ErrItemIDRequired
	}
	return nil
}

// ItemMoveCommand relocates items within their project.
type ItemMoveCommand struct {
	base
}

// NewItemMoveCommand constructs the move handler.
func NewItemMoveCommand(cfg Config) (*ItemMoveCommand, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	return &ItemMoveCommand{base: b}, nil
}

var _ gocommand.Commander[ItemMoveInput] = (*ItemMoveCommand)(nil)

// Execute updates the containment pointer and records the move with its
// container effects.
func (c *ItemMoveCommand) Execute(ctx context.Context, input ItemMoveInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	actor, _, err := c.gate.RequireOwner(ctx, types.ResourceItem, input.ItemID)
	if err != nil {
		return err
	}

	item, err := c.stores.GetItem(ctx, input.ItemID)
	if err != nil {
		return err
	}
	if input.OrgUnitID != nil {
		if err := c.requireContainerProject(ctx, c.stores.DB(), types.ResourceOrgUnit, *input.OrgUnitID, item.ProjectID); err != nil {
			return err
		}
	}

	from := containerRef(types.ResourceOrgUnit, item.OrgUnitID)
	to := containerRef(types.ResourceOrgUnit, input.OrgUnitID)
	item.OrgUnitID = input.OrgUnitID

	err = c.stores.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := c.stores.UpdateItemTx(ctx, tx, item); err != nil {
			return err
		}
		return c.recorder.RecordMove(ctx, tx, actor, item, from, to)
	})
	if err != nil {
		return err
	}

	if input.Result != nil {
		*input.Result = *item
	}
	return nil
}

// ItemDeleteInput identifies the item to remove.
type ItemDeleteInput struct {
	ItemID uuid.UUID
}

// Type implements gocommand.Message.
func (ItemDeleteInput) Type() string {
	return "command.item.delete"
}

// Validate implements gocommand.Message.
func (input ItemDeleteInput) Validate() error {
	if input.ItemID == uuid.Nil {
		return ErrItemIDRequired
	}
	return nil
}

// ItemDeleteCommand removes an item, keeping its history readable until the
// owning project goes away.
type ItemDeleteCommand struct {
	base
}

// NewItemDeleteCommand constructs the delete handler.
func NewItemDeleteCommand(cfg Config) (*ItemDeleteCommand, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	return &ItemDeleteCommand{base: b}, nil
}

var _ gocommand.Commander[ItemDeleteInput] = (*ItemDeleteCommand)(nil)

// Execute records the deletion fact while the row is still resolvable, then
// removes it.
func (c *ItemDeleteCommand) Execute(ctx context.Context, input ItemDeleteInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	actor, _, err := c.gate.RequireOwner(ctx, types.ResourceItem, input.ItemID)
	if err != nil {
		return err
	}

	item, err := c.stores.GetItem(ctx, input.ItemID)
	if err != nil {
		return err
	}

	return c.stores.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := c.recorder.RecordDelete(ctx, tx, actor, item); err != nil {
			return err
		}
		return c.stores.DeleteItemTx(ctx, tx, input.ItemID)
	})
}
