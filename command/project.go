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

// ProjectCreateInput captures the payload for creating a project. The
// current actor becomes the owner.
type ProjectCreateInput struct {
	Name        string
	Description string
	Result      *inventory.Project
}

// Type implements gocommand.Message.
func (ProjectCreateInput) Type() string {
	return "command.project.create"
}

// Validate implements gocommand.Message.
func (input ProjectCreateInput) Validate() error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrProjectNameRequired
	}
	return nil
}

// ProjectCreateCommand creates projects owned by the calling actor.
type ProjectCreateCommand struct {
	base
}

// NewProjectCreateCommand constructs the create handler.
func NewProjectCreateCommand(cfg Config) (*ProjectCreateCommand, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	return &ProjectCreateCommand{base: b}, nil
}

var _ gocommand.Commander[ProjectCreateInput] = (*ProjectCreateCommand)(nil)

// Execute inserts the project and records its creation fact.
func (c *ProjectCreateCommand) Execute(ctx context.Context, input ProjectCreateInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	actor, err := c.gate.CurrentActor(ctx)
	if err != nil {
		return err
	}

	project := &inventory.Project{
		OwnerID:     actor.ID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
	}
	err = c.stores.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := c.stores.CreateProjectTx(ctx, tx, project); err != nil {
			return err
		}
		return c.recorder.RecordCreate(ctx, tx, actor, project)
	})
	if err != nil {
		return err
	}

	c.logger.Info("project created", "project_id", project.ID, "actor_id", actor.ID)
	if input.Result != nil {
		*input.Result = *project
	}
	return nil
}

// ProjectUpdateInput captures a partial project update. Nil fields are left
// untouched.
type ProjectUpdateInput struct {
	ProjectID   uuid.UUID
	Name        *string
	Description *string
	Result      *inventory.Project
}

// Type implements gocommand.Message.
func (ProjectUpdateInput) Type() string {
	return "command.project.update"
}

// Validate implements gocommand.Message.
func (input ProjectUpdateInput) Validate() error {
	if input.ProjectID == uuid.Nil {
		return ErrProjectIDRequired
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return ErrProjectNameRequired
	}
	return nil
}

// ProjectUpdateCommand updates project attributes.
type ProjectUpdateCommand struct {
	base
}

// NewProjectUpdateCommand constructs the update handler.
func NewProjectUpdateCommand(cfg Config) (*ProjectUpdateCommand, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	return &ProjectUpdateCommand{base: b}, nil
}

var _ gocommand.Commander[ProjectUpdateInput] = (*ProjectUpdateCommand)(nil)

// Execute rewrites the project row and records the attribute diff.
func (c *ProjectUpdateCommand) Execute(ctx context.Context, input ProjectUpdateInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	actor, _, err := c.gate.RequireOwner(ctx, types.ResourceProject, input.ProjectID)
	if err != nil {
		return err
	}

	project, err := c.stores.GetProject(ctx, input.ProjectID)
	if err != nil {
		return err
	}
	before := *project
	if input.Name != nil {
		project.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		project.Description = *input.Description
	}

	err = c.stores.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := c.stores.UpdateProjectTx(ctx, tx, project); err != nil {
			return err
		}
		return c.recorder.RecordUpdate(ctx, tx, actor, &before, project)
	})
	if err != nil {
		return err
	}

	if input.Result != nil {
		*input.Result = *project
	}
	return nil
}

// ProjectDeleteInput identifies the project to remove.
type ProjectDeleteInput struct {
	ProjectID uuid.UUID
}

// Type implements gocommand.Message.
func (ProjectDeleteInput) Type() string {
	return "command.project.delete"
}

// Validate implements gocommand.Message.
func (input ProjectDeleteInput) Validate() error {
	if input.ProjectID == uuid.Nil {
		return ErrProjectIDRequired
	}
	return nil
}

// ProjectDeleteCommand removes a project and, through FK cascades, its whole
// subtree and audit trail. No event is recorded: the log it would land in is
// being deleted.
type ProjectDeleteCommand struct {
	base
}

// NewProjectDeleteCommand constructs the delete handler.
func NewProjectDeleteCommand(cfg Config) (*ProjectDeleteCommand, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}
	return &ProjectDeleteCommand{base: b}, nil
}

var _ gocommand.Commander[ProjectDeleteInput] = (*ProjectDeleteCommand)(nil)

// Execute removes the project row.
func (c *ProjectDeleteCommand) Execute(ctx context.Context, input ProjectDeleteInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	actor, _, err := c.gate.RequireOwner(ctx, types.ResourceProject, input.ProjectID)
	if err != nil {
		return err
	}

	err = c.stores.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return c.stores.DeleteProjectTx(ctx, tx, input.ProjectID)
	})
	if err != nil {
		return err
	}

	c.logger.Info("project deleted", "project_id", input.ProjectID, "actor_id", actor.ID)
	return nil
}
