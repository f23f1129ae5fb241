package scope

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/croysdar/clutter-map-sub000/pkg/authctx"
	"github.com/croysdar/clutter-map-sub000/pkg/types"
	"github.com/croysdar/clutter-map-sub000/resolver"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	// TextCodeActorNotFound marks requests whose credential references an
	// actor with no stored identity.
	TextCodeActorNotFound = "ACTOR_NOT_FOUND"
	// TextCodeOwnershipDenied marks ownership failures. Every denial surfaces
	// this code regardless of whether the actor could see the resource.
	TextCodeOwnershipDenied = "OWNERSHIP_DENIED"
)

// GateConfig wires the authorization gate.
type GateConfig struct {
	DB       bun.IDB
	Resolver *resolver.Resolver
	Actors   types.ActorDirectory
	Projects types.ProjectDirectory
	Logger   types.Logger
}

// Gate answers "who is calling" and "do they own the target". Every check
// fails closed: resolution or store errors propagate instead of granting
// access.
type Gate struct {
	db       bun.IDB
	resolver *resolver.Resolver
	actors   types.ActorDirectory
	projects types.ProjectDirectory
	logger   types.Logger
}

// NewGate validates dependencies and builds a Gate.
func NewGate(cfg GateConfig) (*Gate, error) {
	if cfg.DB == nil {
		return nil, stderrors.New("scope: database handle required")
	}
	if cfg.Resolver == nil {
		return nil, types.ErrMissingResolver
	}
	if cfg.Actors == nil {
		return nil, types.ErrMissingActorDirectory
	}
	if cfg.Projects == nil {
		return nil, types.ErrMissingProjectDirectory
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Gate{
		db:       cfg.DB,
		resolver: cfg.Resolver,
		actors:   cfg.Actors,
		projects: cfg.Projects,
		logger:   logger,
	}, nil
}

// CurrentActor resolves the request credential into a stored identity. A
// credential naming an unknown actor is rejected even when the transport
// already validated the token.
func (g *Gate) CurrentActor(ctx context.Context) (types.ActorRef, error) {
	ref, _, err := authctx.ResolveActor(ctx)
	if err != nil {
		return types.ActorRef{}, err
	}

	actor, err := g.actors.GetActor(ctx, ref.ID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return types.ActorRef{}, errors.New("clutter-map: actor "+ref.ID.String()+" has no stored identity", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode(TextCodeActorNotFound)
		}
		return types.ActorRef{}, errors.Wrap(err, errors.CategoryInternal, "clutter-map: actor lookup failed").
			WithCode(errors.CodeInternal)
	}
	if actor == nil {
		return types.ActorRef{}, errors.New("clutter-map: actor "+ref.ID.String()+" has no stored identity", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(TextCodeActorNotFound)
	}
	return ref, nil
}

// IsOwner reports whether the actor owns the project the resource belongs
// to. Resolution failures propagate so deleted or dangling targets never
// read as owned.
func (g *Gate) IsOwner(ctx context.Context, actor types.ActorRef, kind types.ResourceKind, id uuid.UUID) (bool, error) {
	ref, err := g.resolver.ResolveOwningProject(ctx, g.db, kind, id)
	if err != nil {
		return false, err
	}
	return ref.OwnerID == actor.ID, nil
}

// RequireOwner resolves the current actor and enforces ownership over the
// target in one step. On success it returns both the actor and the owning
// project so callers avoid a second resolution.
func (g *Gate) RequireOwner(ctx context.Context, kind types.ResourceKind, id uuid.UUID) (types.ActorRef, types.ProjectRef, error) {
	actor, err := g.CurrentActor(ctx)
	if err != nil {
		return types.ActorRef{}, types.ProjectRef{}, err
	}
	ref, err := g.resolver.ResolveOwningProject(ctx, g.db, kind, id)
	if err != nil {
		return types.ActorRef{}, types.ProjectRef{}, err
	}
	if ref.OwnerID != actor.ID {
		g.logger.Debug("ownership denied", "actor_id", actor.ID, "kind", kind, "resource_id", id)
		return types.ActorRef{}, types.ProjectRef{}, DeniedError(actor, kind, id)
	}
	return actor, ref, nil
}

// AccessibleProjectIDs returns every project id the current actor owns.
func (g *Gate) AccessibleProjectIDs(ctx context.Context) (types.ActorRef, []uuid.UUID, error) {
	actor, err := g.CurrentActor(ctx)
	if err != nil {
		return types.ActorRef{}, nil, err
	}
	ids, err := g.projects.ListProjectIDsByOwner(ctx, actor.ID)
	if err != nil {
		return types.ActorRef{}, nil, errors.Wrap(err, errors.CategoryInternal, "clutter-map: project scope lookup failed").
			WithCode(errors.CodeInternal)
	}
	return actor, ids, nil
}

// DeniedError builds the uniform ownership denial. It wraps types.ErrNotOwner
// so callers can branch with errors.Is while transports read the category and
// text code.
func DeniedError(actor types.ActorRef, kind types.ResourceKind, id uuid.UUID) error {
	return errors.Wrap(types.ErrNotOwner, errors.CategoryAuthz, "clutter-map: access denied to "+string(kind)+" "+id.String()).
		WithCode(errors.CodeForbidden).
		WithTextCode(TextCodeOwnershipDenied).
		WithMetadata(map[string]any{
			"actor_id":      actor.ID.String(),
			"resource_kind": string(kind),
			"resource_id":   id.String(),
		})
}

// IsDenied reports whether the error is an ownership denial.
func IsDenied(err error) bool {
	return stderrors.Is(err, types.ErrNotOwner)
}

// OwnershipPolicy adapts the gate to the AuthorizationPolicy contract used by
// the guard and the CRUD adapter. Checks without a concrete target pass
// through; list-shaped reads are scoped by AccessibleProjectIDs instead.
type OwnershipPolicy struct {
	gate *Gate
}

// NewOwnershipPolicy builds the policy from a gate.
func NewOwnershipPolicy(gate *Gate) OwnershipPolicy {
	return OwnershipPolicy{gate: gate}
}

// Authorize implements types.AuthorizationPolicy.
func (p OwnershipPolicy) Authorize(ctx context.Context, check types.PolicyCheck) error {
	if p.gate == nil {
		return types.ErrServiceNotReady
	}
	if check.TargetID == uuid.Nil {
		return nil
	}
	owns, err := p.gate.IsOwner(ctx, check.Actor, check.ResourceKind, check.TargetID)
	if err != nil {
		return err
	}
	if !owns {
		return DeniedError(check.Actor, check.ResourceKind, check.TargetID)
	}
	return nil
}

var _ types.AuthorizationPolicy = OwnershipPolicy{}
