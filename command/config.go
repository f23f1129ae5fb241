package command

import (
	"context"

	"github.com/croysdar/clutter-map-sub000/events"
	"github.com/croysdar/clutter-map-sub000/inventory"
	"github.com/croysdar/clutter-map-sub000/pkg/types"
	"github.com/croysdar/clutter-map-sub000/resolver"
	"github.com/croysdar/clutter-map-sub000/scope"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Config wires the shared dependencies of every inventory command. All
// handlers take the same set, so one config serves them all.
type Config struct {
	Stores   *inventory.Stores
	Recorder *events.Recorder
	Gate     *scope.Gate
	Resolver *resolver.Resolver
	Clock    types.Clock
	Logger   types.Logger
}

// base carries the validated dependencies embedded by each handler.
type base struct {
	stores   *inventory.Stores
	recorder *events.Recorder
	gate     *scope.Gate
	resolver *resolver.Resolver
	clock    types.Clock
	logger   types.Logger
}

func newBase(cfg Config) (base, error) {
	if cfg.Stores == nil {
		return base{}, ErrMissingStores
	}
	if cfg.Recorder == nil {
		return base{}, ErrMissingRecorder
	}
	if cfg.Gate == nil {
		return base{}, ErrMissingGate
	}
	if cfg.Resolver == nil {
		return base{}, types.ErrMissingResolver
	}
	return base{
		stores:   cfg.Stores,
		recorder: cfg.Recorder,
		gate:     cfg.Gate,
		resolver: cfg.Resolver,
		clock:    safeClock(cfg.Clock),
		logger:   safeLogger(cfg.Logger),
	}, nil
}

func safeClock(clock types.Clock) types.Clock {
	if clock != nil {
		return clock
	}
	return types.SystemClock{}
}

func safeLogger(logger types.Logger) types.Logger {
	if logger != nil {
		return logger
	}
	return types.NopLogger{}
}

// requireContainerProject rejects containers that live in a different
// project than the resource being placed into them.
func (b base) requireContainerProject(ctx context.Context, idb bun.IDB, kind types.ResourceKind, id, projectID uuid.UUID) error {
	ref, err := b.resolver.ResolveOwningProject(ctx, idb, kind, id)
	if err != nil {
		return err
	}
	if ref.ID != projectID {
		return ErrCrossProjectContainment
	}
	return nil
}
