// Package resolver answers "which project owns this resource" for any
// (kind, id) pair. Lookups go through a capability table: one locator is
// registered per resource kind, so new kinds plug in without touching
// dispatch logic. Resolution is a pure read with a single store hit and no
// caching; callers needing repeated resolution cache within their own
// request scope.
package resolver

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/croysdar/clutter-map-sub000/pkg/types"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	// TextCodeResourceNotFound marks resolution failures where the id does
	// not exist for the requested kind.
	TextCodeResourceNotFound = "RESOURCE_NOT_FOUND"
	// TextCodeUnknownResourceKind marks kinds outside the closed set.
	TextCodeUnknownResourceKind = "RESOURCE_KIND_UNKNOWN"
)

// Locator finds the denormalized owning-project id for one resource kind.
// The bun.IDB argument carries the caller's handle (plain DB or open
// transaction) so resolution inside a mutation sees rows written earlier in
// the same transaction.
type Locator func(ctx context.Context, idb bun.IDB, id uuid.UUID) (uuid.UUID, error)

// ProjectSource loads the project reference (id + owner) used to finish a
// resolution. Project-kind lookups go straight here.
type ProjectSource interface {
	ProjectRef(ctx context.Context, idb bun.IDB, id uuid.UUID) (types.ProjectRef, error)
}

// Config wires the resolver.
type Config struct {
	Projects ProjectSource
	Locators map[types.ResourceKind]Locator
	Logger   types.Logger
}

// Resolver resolves owning projects through the registered locator table.
type Resolver struct {
	projects ProjectSource
	locators map[types.ResourceKind]Locator
	logger   types.Logger
}

// New constructs a resolver. A project source is required; locators for the
// nested kinds can be supplied up front or registered later.
func New(cfg Config) (*Resolver, error) {
	if cfg.Projects == nil {
		return nil, stderrors.New("resolver: project source required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	locators := make(map[types.ResourceKind]Locator, len(cfg.Locators))
	for kind, locator := range cfg.Locators {
		if locator != nil {
			locators[kind] = locator
		}
	}
	return &Resolver{
		projects: cfg.Projects,
		locators: locators,
		logger:   logger,
	}, nil
}

// Register installs the locator for a resource kind, replacing any previous
// registration. Register is intended for wiring time, not for concurrent use.
func (r *Resolver) Register(kind types.ResourceKind, locator Locator) {
	if locator == nil {
		return
	}
	r.locators[kind] = locator
}

// ResolveOwningProject returns the project reference owning the resource.
// Project ids resolve to themselves after an existence check; every other
// kind reads its denormalized project pointer through the registered
// locator. Failures are never swallowed so callers can fail closed.
func (r *Resolver) ResolveOwningProject(ctx context.Context, idb bun.IDB, kind types.ResourceKind, id uuid.UUID) (types.ProjectRef, error) {
	if id == uuid.Nil {
		return types.ProjectRef{}, notFound(kind, id, nil)
	}

	if kind == types.ResourceProject {
		ref, err := r.projects.ProjectRef(ctx, idb, id)
		if err != nil {
			if stderrors.Is(err, sql.ErrNoRows) {
				return types.ProjectRef{}, notFound(kind, id, err)
			}
			return types.ProjectRef{}, errors.Wrap(err, errors.CategoryInternal, "clutter-map: project lookup failed").
				WithCode(errors.CodeInternal)
		}
		return ref, nil
	}

	locator, ok := r.locators[kind]
	if !ok {
		return types.ProjectRef{}, errors.New("clutter-map: no locator registered for resource kind "+string(kind), errors.CategoryInternal).
			WithCode(errors.CodeInternal).
			WithTextCode(TextCodeUnknownResourceKind)
	}

	projectID, err := locator(ctx, idb, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return types.ProjectRef{}, notFound(kind, id, err)
		}
		return types.ProjectRef{}, errors.Wrap(err, errors.CategoryInternal, "clutter-map: owning project lookup failed").
			WithCode(errors.CodeInternal)
	}

	ref, err := r.projects.ProjectRef(ctx, idb, projectID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			// The denormalized pointer referenced a project that no longer
			// exists. Surface it as not found rather than authorizing.
			return types.ProjectRef{}, notFound(types.ResourceProject, projectID, err)
		}
		return types.ProjectRef{}, errors.Wrap(err, errors.CategoryInternal, "clutter-map: project lookup failed").
			WithCode(errors.CodeInternal)
	}
	return ref, nil
}

// IsNotFound reports whether the error marks a failed resolution target.
func IsNotFound(err error) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == TextCodeResourceNotFound
}

func notFound(kind types.ResourceKind, id uuid.UUID, cause error) error {
	msg := "clutter-map: " + string(kind) + " " + id.String() + " not found"
	if cause != nil {
		return errors.Wrap(cause, errors.CategoryNotFound, msg).
			WithCode(errors.CodeNotFound).
			WithTextCode(TextCodeResourceNotFound)
	}
	return errors.New(msg, errors.CategoryNotFound).
		WithCode(errors.CodeNotFound).
		WithTextCode(TextCodeResourceNotFound)
}
