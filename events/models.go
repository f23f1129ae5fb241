package events

import (
	"time"

	"github.com/croysdar/clutter-map-sub000/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Event is one recorded operation: who did what to which resource, stamped
// with the owning project at write time so feed queries never re-resolve.
type Event struct {
	bun.BaseModel `bun:"table:events,alias:e"`

	ID           uuid.UUID          `bun:",pk,type:uuid"`
	ResourceKind types.ResourceKind `bun:"resource_kind"`
	ResourceID   uuid.UUID          `bun:"resource_id,type:uuid"`
	ChangeKind   types.ChangeKind   `bun:"change_kind"`
	Payload      []byte             `bun:"payload,nullzero"`
	ProjectID    uuid.UUID          `bun:"project_id,type:uuid"`
	ActorID      uuid.UUID          `bun:"actor_id,type:uuid"`
	CreatedAt    time.Time          `bun:"created_at"`
}

// EntityChange is one per-resource effect row of an event. A simple create
// carries exactly one; a move carries the moved resource plus, when container
// logging is enabled, one row per affected container.
type EntityChange struct {
	bun.BaseModel `bun:"table:event_entity_changes,alias:ec"`

	ID           uuid.UUID          `bun:",pk,type:uuid"`
	EventID      uuid.UUID          `bun:"event_id,type:uuid"`
	ResourceKind types.ResourceKind `bun:"resource_kind"`
	ResourceID   uuid.UUID          `bun:"resource_id,type:uuid"`
	ChangeKind   types.ChangeKind   `bun:"change_kind"`
	Details      []byte             `bun:"details,nullzero"`
}
