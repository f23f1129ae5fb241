package types

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// PolicyAction enumerates the authorization actions enforced by the scope
// guard. Host applications can remap these actions to their own policies or
// ACL systems.
type PolicyAction string

const (
	PolicyActionInventoryRead  PolicyAction = "inventory:read"
	PolicyActionInventoryWrite PolicyAction = "inventory:write"
	PolicyActionEventsRead     PolicyAction = "events:read"
)

// PolicyCheck captures the authorization context for a single command/query.
type PolicyCheck struct {
	Actor        ActorRef
	Action       PolicyAction
	ResourceKind ResourceKind
	TargetID     uuid.UUID
}

// AuthorizationPolicy governs whether an actor can perform the supplied
// action against the target resource.
type AuthorizationPolicy interface {
	Authorize(ctx context.Context, check PolicyCheck) error
}

// AuthorizationPolicyFunc adapts bare functions to AuthorizationPolicy.
type AuthorizationPolicyFunc func(ctx context.Context, check PolicyCheck) error

// Authorize implements AuthorizationPolicy.
func (f AuthorizationPolicyFunc) Authorize(ctx context.Context, check PolicyCheck) error {
	return f(ctx, check)
}

var (
	// ErrNotOwner indicates the actor does not own the project the target
	// resource belongs to. Ownership failures map to this error uniformly;
	// they are never surfaced as not-found.
	ErrNotOwner = errors.New("clutter-map: actor does not own the target resource")
)

// AllowAllAuthorizationPolicy allows every action/target combination.
type AllowAllAuthorizationPolicy struct{}

// Authorize implements AuthorizationPolicy.
func (AllowAllAuthorizationPolicy) Authorize(context.Context, PolicyCheck) error {
	return nil
}
