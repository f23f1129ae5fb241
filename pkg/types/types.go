package types

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ResourceKind is the closed set of resource types the audit core can
// identify polymorphically. Every kind either is a project or carries a
// denormalized reference to the project that owns it.
type ResourceKind string

const (
	ResourceProject ResourceKind = "project"
	ResourceRoom    ResourceKind = "room"
	ResourceOrgUnit ResourceKind = "org_unit"
	ResourceItem    ResourceKind = "item"
)

// KnownResourceKinds returns the closed enumeration in stable order.
func KnownResourceKinds() []ResourceKind {
	return []ResourceKind{ResourceProject, ResourceRoom, ResourceOrgUnit, ResourceItem}
}

// ParseResourceKind normalizes raw transport input into a ResourceKind.
func ParseResourceKind(raw string) (ResourceKind, bool) {
	kind := ResourceKind(strings.ToLower(strings.TrimSpace(raw)))
	switch kind {
	case ResourceProject, ResourceRoom, ResourceOrgUnit, ResourceItem:
		return kind, true
	}
	return "", false
}

// Valid reports whether the kind belongs to the closed enumeration.
func (k ResourceKind) Valid() bool {
	_, ok := ParseResourceKind(string(k))
	return ok
}

// ChangeKind classifies both the top-level event action and the per-resource
// effect rows attached to it.
type ChangeKind string

const (
	ChangeCreate      ChangeKind = "create"
	ChangeUpdate      ChangeKind = "update"
	ChangeDelete      ChangeKind = "delete"
	ChangeMove        ChangeKind = "move"
	ChangeAddChild    ChangeKind = "add_child"
	ChangeRemoveChild ChangeKind = "remove_child"
)

// ActorRef identifies who or what performed an operation.
type ActorRef struct {
	ID   uuid.UUID
	Type string
}

// ProjectRef is the resolved aggregate root for a resource: the project id
// plus its owner, which is all the authorization gate needs.
type ProjectRef struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
}

// ContainerRef points at the immediate container involved in a move
// operation (a room for org units, an org unit for items). A nil
// *ContainerRef means "unassigned" on that side of the move.
type ContainerRef struct {
	Kind ResourceKind
	ID   uuid.UUID
}

// Snapshot is the per-kind diff capability: each concrete resource exposes
// its identity, its denormalized owning project, and a stable enumeration of
// its scalar attributes. Child collections are deliberately excluded;
// containment changes travel as move/add_child/remove_child events instead.
type Snapshot interface {
	ResourceKind() ResourceKind
	ResourceID() uuid.UUID
	OwningProjectID() uuid.UUID
	Fields() map[string]any
}

// HistoryEntry is the read-model projection of one EventEntityChange row
// joined with its parent event's actor and timestamp.
type HistoryEntry struct {
	ResourceKind ResourceKind
	ResourceID   uuid.UUID
	ChangeKind   ChangeKind
	Details      map[string]any
	ActorID      uuid.UUID
	ActorName    string
	OccurredAt   time.Time
}

// HistoryPage represents a paginated per-entity timeline response.
type HistoryPage struct {
	Entries    []HistoryEntry
	Total      int
	NextOffset int
	HasMore    bool
}

// Pagination supports offset paging on the history timeline.
type Pagination struct {
	Limit  int
	Offset int
}

// EntityHistoryFilter narrows the per-entity timeline query.
type EntityHistoryFilter struct {
	Actor        ActorRef
	ResourceKind ResourceKind
	ResourceID   uuid.UUID
	Pagination   Pagination
}

// Type implements gocommand.Message for query inputs.
func (EntityHistoryFilter) Type() string {
	return "query.events.entity_history"
}

// Validate implements gocommand.Message.
func (filter EntityHistoryFilter) Validate() error {
	switch {
	case filter.Actor.ID == uuid.Nil:
		return ErrActorRequired
	case !filter.ResourceKind.Valid():
		return ErrResourceKindRequired
	case filter.ResourceID == uuid.Nil:
		return ErrResourceIDRequired
	default:
		return nil
	}
}

// ChangesSinceFilter describes the incremental sync read. ProjectIDs, when
// set, further restricts the feed; the executed query is always bounded by
// the actor's accessible projects regardless.
type ChangesSinceFilter struct {
	Actor      ActorRef
	Since      time.Time
	ProjectIDs []uuid.UUID
}

// Type implements gocommand.Message for query inputs.
func (ChangesSinceFilter) Type() string {
	return "query.events.changes_since"
}

// Validate implements gocommand.Message.
func (filter ChangesSinceFilter) Validate() error {
	if filter.Actor.ID == uuid.Nil {
		return ErrActorRequired
	}
	return nil
}

// EventRepository exposes read-side access to the persisted audit log.
type EventRepository interface {
	ListEntityHistory(ctx context.Context, filter EntityHistoryFilter) (HistoryPage, error)
	ListChangesSince(ctx context.Context, since time.Time, projectIDs []uuid.UUID) ([]HistoryEntry, error)
}

// Actor is a stored identity the gate can resolve credentials against.
type Actor struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
}

// ActorDirectory resolves actor ids to stored identities. Implementations
// typically wrap the users table or a go-auth repository.
type ActorDirectory interface {
	GetActor(ctx context.Context, id uuid.UUID) (*Actor, error)
}

// ProjectDirectory lists the projects an owner can access. The changes-since
// feed derives its scope through this contract, never from caller input alone.
type ProjectDirectory interface {
	ListProjectIDsByOwner(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error)
}

// Serializer encodes snapshot and diff payloads for storage. One immutable
// instance is constructed at startup and passed by reference wherever
// payloads are written.
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Clock abstracts time retrieval for deterministic testing.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID creation.
type IDGenerator interface {
	UUID() uuid.UUID
}

// Logger captures basic logging hooks used across the module.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// RecordedEvent is handed to hooks after an audit fact is persisted.
type RecordedEvent struct {
	EventID      uuid.UUID
	ResourceKind ResourceKind
	ResourceID   uuid.UUID
	ChangeKind   ChangeKind
	ProjectID    uuid.UUID
	ActorID      uuid.UUID
	OccurredAt   time.Time
}

// Hooks groups optional callbacks invoked after key workflows complete.
type Hooks struct {
	AfterRecord func(context.Context, RecordedEvent)
}

// SystemClock defers to time.Now for production usage.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator produces UUIDv4 identifiers.
type UUIDGenerator struct{}

// UUID returns a randomly generated UUID.
func (UUIDGenerator) UUID() uuid.UUID { return uuid.New() }

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}

var (
	// ErrActorRequired indicates an actor reference was not supplied.
	ErrActorRequired = errors.New("clutter-map: actor reference required")
	// ErrResourceKindRequired indicates the resource kind was missing or outside the closed set.
	ErrResourceKindRequired = errors.New("clutter-map: resource kind required")
	// ErrResourceIDRequired indicates a resource identifier was omitted.
	ErrResourceIDRequired = errors.New("clutter-map: resource id required")
	// ErrProjectScopeRequired indicates a changes-since read was attempted without project scoping.
	ErrProjectScopeRequired = errors.New("clutter-map: changes-since requires at least one project id")
	// ErrMissingEventRepository occurs when no event repository was supplied.
	ErrMissingEventRepository = errors.New("clutter-map: missing event repository")
	// ErrMissingRecorder occurs when commands lack an event recorder.
	ErrMissingRecorder = errors.New("clutter-map: missing event recorder")
	// ErrMissingResolver occurs when a component lacks the entity resolver.
	ErrMissingResolver = errors.New("clutter-map: missing entity resolver")
	// ErrMissingActorDirectory occurs when the gate lacks an actor directory.
	ErrMissingActorDirectory = errors.New("clutter-map: missing actor directory")
	// ErrMissingProjectDirectory occurs when feed scoping lacks a project directory.
	ErrMissingProjectDirectory = errors.New("clutter-map: missing project directory")
	// ErrMissingStores occurs when commands lack the inventory stores.
	ErrMissingStores = errors.New("clutter-map: missing inventory stores")
	// ErrServiceNotReady indicates the service has not been properly configured.
	ErrServiceNotReady = errors.New("clutter-map: service not ready")
)
