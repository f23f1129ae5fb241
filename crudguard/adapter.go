// Package crudguard bridges go-crud transports to the authorization guard,
// so host applications exposing generated CRUD endpoints over the inventory
// tables get the same ownership enforcement as the command handlers.
package crudguard

import (
	"errors"
	"fmt"

	"github.com/croysdar/clutter-map-sub000/pkg/authctx"
	"github.com/croysdar/clutter-map-sub000/pkg/types"
	"github.com/croysdar/clutter-map-sub000/scope"
	"github.com/goliatone/go-crud"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

const (
	textCodeGuardDenied          = "GUARD_DENIED"
	textCodeGuardEnforcementFail = "GUARD_ENFORCEMENT_FAILED"
	textCodeMissingPolicy        = "GUARD_POLICY_MISSING"
	textCodeMissingContext       = "CONTEXT_MISSING"
)

// Config drives Adapter construction.
type Config struct {
	Guard          scope.Guard
	Logger         types.Logger
	PolicyMap      map[crud.CrudOperation]types.PolicyAction
	FallbackAction types.PolicyAction
}

// Adapter turns go-crud operations into guard enforcement calls.
type Adapter struct {
	guard          scope.Guard
	logger         types.Logger
	policyMap      map[crud.CrudOperation]types.PolicyAction
	fallbackAction types.PolicyAction
}

// GuardInput captures per-request parameters supplied by transports.
type GuardInput struct {
	Context      crud.Context
	Operation    crud.CrudOperation
	ResourceKind types.ResourceKind
	TargetID     uuid.UUID
	Bypass       *BypassConfig
}

// GuardResult reports the actor metadata resolved by the adapter.
type GuardResult struct {
	Actor        types.ActorRef
	Operation    crud.CrudOperation
	Bypassed     bool
	BypassReason string
}

// BypassConfig explicitly allows guard skips for whitelisted routes (e.g.
// schema exports). It must never be enabled by default.
type BypassConfig struct {
	Enabled bool
	Reason  string
}

// NewAdapter constructs a Guard adapter and validates the supplied config.
func NewAdapter(cfg Config) (*Adapter, error) {
	if cfg.Guard == nil {
		return nil, goerrors.New("clutter-map: guard is required", goerrors.CategoryInternal).
			WithCode(goerrors.CodeInternal).
			WithTextCode(textCodeGuardEnforcementFail)
	}
	if len(cfg.PolicyMap) == 0 && cfg.FallbackAction == "" {
		return nil, goerrors.New("clutter-map: policy map or fallback action must be provided", goerrors.CategoryInternal).
			WithCode(goerrors.CodeInternal).
			WithTextCode(textCodeMissingPolicy)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}

	return &Adapter{
		guard:          scope.Ensure(cfg.Guard),
		logger:         logger,
		policyMap:      clonePolicyMap(cfg.PolicyMap),
		fallbackAction: cfg.FallbackAction,
	}, nil
}

// Enforce resolves the actor, optionally bypasses, and finally enforces the
// guard with the mapped PolicyAction.
func (a *Adapter) Enforce(in GuardInput) (GuardResult, error) {
	if in.Context == nil {
		return GuardResult{}, goerrors.New("clutter-map: crudguard requires a context", goerrors.CategoryInternal).
			WithCode(goerrors.CodeInternal).
			WithTextCode(textCodeMissingContext)
	}

	ctx := in.Context.UserContext()
	actorRef, _, err := authctx.ResolveActor(ctx)
	if err != nil {
		return GuardResult{}, err
	}

	if in.Bypass != nil && in.Bypass.Enabled {
		a.logger.Info("crudguard: bypassing guard enforcement", "operation", string(in.Operation), "reason", in.Bypass.Reason)
		return GuardResult{
			Actor:        actorRef,
			Operation:    in.Operation,
			Bypassed:     true,
			BypassReason: in.Bypass.Reason,
		}, nil
	}

	action, err := a.actionForOperation(in.Operation)
	if err != nil {
		return GuardResult{}, err
	}

	if err := a.guard.Enforce(ctx, actorRef, action, in.ResourceKind, in.TargetID); err != nil {
		return GuardResult{}, wrapGuardError(err, action)
	}

	return GuardResult{
		Actor:     actorRef,
		Operation: in.Operation,
	}, nil
}

func (a *Adapter) actionForOperation(op crud.CrudOperation) (types.PolicyAction, error) {
	if act, ok := a.policyMap[op]; ok && act != "" {
		return act, nil
	}
	if a.fallbackAction != "" {
		return a.fallbackAction, nil
	}
	return "", goerrors.New(fmt.Sprintf("clutter-map: no policy action configured for %s", op), goerrors.CategoryInternal).
		WithCode(goerrors.CodeInternal).
		WithTextCode(textCodeMissingPolicy)
}

func wrapGuardError(err error, action types.PolicyAction) error {
	if errors.Is(err, types.ErrNotOwner) {
		return goerrors.Wrap(err, goerrors.CategoryAuthz, "clutter-map: guard rejected the request").
			WithCode(goerrors.CodeForbidden).
			WithTextCode(textCodeGuardDenied)
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, fmt.Sprintf("clutter-map: guard failed for action %s", action)).
		WithCode(goerrors.CodeInternal).
		WithTextCode(textCodeGuardEnforcementFail)
}
