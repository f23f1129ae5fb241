package events

import (
	"context"

	"github.com/croysdar/clutter-map-sub000/diff"
	"github.com/croysdar/clutter-map-sub000/pkg/types"
	"github.com/croysdar/clutter-map-sub000/resolver"
	"github.com/goliatone/go-errors"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-masker"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FeatureLogContainerChanges gates the per-container effect rows written on
// move operations. Enabled by default when no gate is configured.
const FeatureLogContainerChanges = "events.log_container_changes"

// RecorderConfig wires the event recorder.
type RecorderConfig struct {
	Resolver    *resolver.Resolver
	Serializer  types.Serializer
	Masker      *masker.Masker
	FeatureGate featuregate.FeatureGate
	Clock       types.Clock
	IDGen       types.IDGenerator
	Logger      types.Logger
	Hooks       types.Hooks
}

// Recorder writes audit facts. Every method takes the caller's bun.IDB so
// the event rows join the open transaction: a failed business write never
// leaves an orphaned event, and a failed event write rolls the business row
// back with it.
type Recorder struct {
	resolver    *resolver.Resolver
	serializer  types.Serializer
	masker      *masker.Masker
	featureGate featuregate.FeatureGate
	clock       types.Clock
	idGen       types.IDGenerator
	logger      types.Logger
	hooks       types.Hooks
}

// NewRecorder validates dependencies and builds a Recorder.
func NewRecorder(cfg RecorderConfig) (*Recorder, error) {
	if cfg.Resolver == nil {
		return nil, types.ErrMissingResolver
	}
	serializer := cfg.Serializer
	if serializer == nil {
		serializer = DefaultSerializer
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Recorder{
		resolver:    cfg.Resolver,
		serializer:  serializer,
		masker:      cfg.Masker,
		featureGate: cfg.FeatureGate,
		clock:       clock,
		idGen:       idGen,
		logger:      logger,
		hooks:       cfg.Hooks,
	}, nil
}

// effect is one pending entity-change row of an event being recorded.
type effect struct {
	kind       types.ResourceKind
	id         uuid.UUID
	changeKind types.ChangeKind
	details    map[string]any
}

// RecordCreate writes the creation fact for a freshly inserted resource.
// Call it after the insert so the resolver sees the new row.
func (r *Recorder) RecordCreate(ctx context.Context, idb bun.IDB, actor types.ActorRef, snapshot types.Snapshot) error {
	if snapshot == nil {
		return types.ErrResourceIDRequired
	}
	fields := snapshot.Fields()
	return r.record(ctx, idb, actor, snapshot.ResourceKind(), snapshot.ResourceID(), types.ChangeCreate, fields, []effect{
		{
			kind:       snapshot.ResourceKind(),
			id:         snapshot.ResourceID(),
			changeKind: types.ChangeCreate,
			details:    fields,
		},
	})
}

// RecordUpdate diffs the two snapshots and writes the update fact. An empty
// diff still records: the caller performed a write and the log keeps it.
func (r *Recorder) RecordUpdate(ctx context.Context, idb bun.IDB, actor types.ActorRef, before, after types.Snapshot) error {
	changed, err := diff.Diff(before, after)
	if err != nil {
		return err
	}
	return r.record(ctx, idb, actor, after.ResourceKind(), after.ResourceID(), types.ChangeUpdate, changed, []effect{
		{
			kind:       after.ResourceKind(),
			id:         after.ResourceID(),
			changeKind: types.ChangeUpdate,
			details:    changed,
		},
	})
}

// RecordDelete writes the deletion fact carrying the final snapshot. Call it
// before the row is removed so project resolution still succeeds; the event
// row survives the delete unless the whole project goes with it.
func (r *Recorder) RecordDelete(ctx context.Context, idb bun.IDB, actor types.ActorRef, snapshot types.Snapshot) error {
	if snapshot == nil {
		return types.ErrResourceIDRequired
	}
	fields := snapshot.Fields()
	return r.record(ctx, idb, actor, snapshot.ResourceKind(), snapshot.ResourceID(), types.ChangeDelete, fields, []effect{
		{
			kind:       snapshot.ResourceKind(),
			id:         snapshot.ResourceID(),
			changeKind: types.ChangeDelete,
			details:    fields,
		},
	})
}

// RecordMove writes the relocation fact for a resource changing containers.
// Either side may be nil, meaning unassigned. The moved resource always gets
// its row; the affected containers get add_child/remove_child rows under the
// same event when container logging is enabled.
func (r *Recorder) RecordMove(ctx context.Context, idb bun.IDB, actor types.ActorRef, moved types.Snapshot, from, to *types.ContainerRef) error {
	if moved == nil {
		return types.ErrResourceIDRequired
	}

	details := map[string]any{
		"from": containerDetails(from),
		"to":   containerDetails(to),
	}
	effects := []effect{
		{
			kind:       moved.ResourceKind(),
			id:         moved.ResourceID(),
			changeKind: types.ChangeMove,
			details:    details,
		},
	}
	if r.containerLoggingEnabled(ctx, actor) {
		child := map[string]any{
			"child_kind": string(moved.ResourceKind()),
			"child_id":   moved.ResourceID().String(),
		}
		if from != nil {
			effects = append(effects, effect{
				kind:       from.Kind,
				id:         from.ID,
				changeKind: types.ChangeRemoveChild,
				details:    child,
			})
		}
		if to != nil {
			effects = append(effects, effect{
				kind:       to.Kind,
				id:         to.ID,
				changeKind: types.ChangeAddChild,
				details:    child,
			})
		}
	}
	return r.record(ctx, idb, actor, moved.ResourceKind(), moved.ResourceID(), types.ChangeMove, details, effects)
}

// RecordAddChild writes a standalone containment fact for a resource placed
// into a container outside a move, such as assignment at creation time.
func (r *Recorder) RecordAddChild(ctx context.Context, idb bun.IDB, actor types.ActorRef, container types.ContainerRef, childKind types.ResourceKind, childID uuid.UUID) error {
	details := map[string]any{
		"child_kind": string(childKind),
		"child_id":   childID.String(),
	}
	return r.record(ctx, idb, actor, container.Kind, container.ID, types.ChangeAddChild, details, []effect{
		{
			kind:       container.Kind,
			id:         container.ID,
			changeKind: types.ChangeAddChild,
			details:    details,
		},
	})
}

// RecordRemoveChild mirrors RecordAddChild for removals.
func (r *Recorder) RecordRemoveChild(ctx context.Context, idb bun.IDB, actor types.ActorRef, container types.ContainerRef, childKind types.ResourceKind, childID uuid.UUID) error {
	details := map[string]any{
		"child_kind": string(childKind),
		"child_id":   childID.String(),
	}
	return r.record(ctx, idb, actor, container.Kind, container.ID, types.ChangeRemoveChild, details, []effect{
		{
			kind:       container.Kind,
			id:         container.ID,
			changeKind: types.ChangeRemoveChild,
			details:    details,
		},
	})
}

// record resolves the owning project, then writes the event row and its
// entity-change rows sharing one id, timestamp, and actor.
func (r *Recorder) record(ctx context.Context, idb bun.IDB, actor types.ActorRef, kind types.ResourceKind, id uuid.UUID, changeKind types.ChangeKind, payload map[string]any, effects []effect) error {
	if actor.ID == uuid.Nil {
		return types.ErrActorRequired
	}

	ref, err := r.resolver.ResolveOwningProject(ctx, idb, kind, id)
	if err != nil {
		return err
	}

	eventID := r.idGen.UUID()
	now := r.clock.Now()

	encoded, err := r.encode(payload)
	if err != nil {
		return err
	}
	event := &Event{
		ID:           eventID,
		ResourceKind: kind,
		ResourceID:   id,
		ChangeKind:   changeKind,
		Payload:      encoded,
		ProjectID:    ref.ID,
		ActorID:      actor.ID,
		CreatedAt:    now,
	}
	if _, err := idb.NewInsert().Model(event).Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "clutter-map: event insert failed").
			WithCode(errors.CodeInternal)
	}

	for _, eff := range effects {
		detailBytes, err := r.encode(eff.details)
		if err != nil {
			return err
		}
		change := &EntityChange{
			ID:           r.idGen.UUID(),
			EventID:      eventID,
			ResourceKind: eff.kind,
			ResourceID:   eff.id,
			ChangeKind:   eff.changeKind,
			Details:      detailBytes,
		}
		if _, err := idb.NewInsert().Model(change).Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "clutter-map: entity change insert failed").
				WithCode(errors.CodeInternal)
		}
	}

	r.logger.Debug("event recorded",
		"event_id", eventID,
		"resource_kind", kind,
		"resource_id", id,
		"change_kind", changeKind,
		"project_id", ref.ID,
	)

	if r.hooks.AfterRecord != nil {
		r.hooks.AfterRecord(ctx, types.RecordedEvent{
			EventID:      eventID,
			ResourceKind: kind,
			ResourceID:   id,
			ChangeKind:   changeKind,
			ProjectID:    ref.ID,
			ActorID:      actor.ID,
			OccurredAt:   now,
		})
	}
	return nil
}

func containerDetails(ref *types.ContainerRef) any {
	if ref == nil {
		return nil
	}
	return map[string]any{
		"kind": string(ref.Kind),
		"id":   ref.ID.String(),
	}
}

func (r *Recorder) encode(details map[string]any) ([]byte, error) {
	if details == nil {
		return nil, nil
	}
	sanitized := SanitizeDetails(r.masker, details)
	data, err := r.serializer.Marshal(sanitized)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "clutter-map: payload serialization failed").
			WithCode(errors.CodeInternal)
	}
	return data, nil
}

func (r *Recorder) containerLoggingEnabled(ctx context.Context, actor types.ActorRef) bool {
	if r.featureGate == nil {
		return true
	}
	scopeSet := featuregate.ScopeSet{System: true}
	if actor.ID != uuid.Nil {
		scopeSet.UserID = actor.ID.String()
	}
	enabled, err := r.featureGate.Enabled(ctx, FeatureLogContainerChanges, featuregate.WithScopeSet(scopeSet))
	if err != nil {
		r.logger.Error("container logging gate check failed", err)
		return true
	}
	return enabled
}
