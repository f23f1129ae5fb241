package inventory

import (
	"time"

	"github.com/croysdar/clutter-map-sub000/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User models the persisted row in users. It backs the actor directory; the
// host application owns credential issuance and verification.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID          uuid.UUID `bun:",pk,type:uuid"`
	Email       string    `bun:"email"`
	DisplayName string    `bun:"display_name"`
	CreatedAt   time.Time `bun:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at"`
}

// Project models the persisted row in projects: the aggregate root that owns
// every other resource and scopes all access.
type Project struct {
	bun.BaseModel `bun:"table:projects"`

	ID          uuid.UUID `bun:",pk,type:uuid"`
	OwnerID     uuid.UUID `bun:"owner_id,type:uuid"`
	Name        string    `bun:"name"`
	Description string    `bun:"description"`
	CreatedAt   time.Time `bun:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at"`
}

// ResourceKind implements types.Snapshot.
func (p *Project) ResourceKind() types.ResourceKind { return types.ResourceProject }

// ResourceID implements types.Snapshot.
func (p *Project) ResourceID() uuid.UUID { return p.ID }

// OwningProjectID implements types.Snapshot. A project is its own root.
func (p *Project) OwningProjectID() uuid.UUID { return p.ID }

// Fields enumerates the diffable scalar attributes in stable form.
func (p *Project) Fields() map[string]any {
	return map[string]any{
		"name":        p.Name,
		"description": p.Description,
	}
}

// Room models the persisted row in rooms.
type Room struct {
	bun.BaseModel `bun:"table:rooms"`

	ID          uuid.UUID `bun:",pk,type:uuid"`
	ProjectID   uuid.UUID `bun:"project_id,type:uuid"`
	Name        string    `bun:"name"`
	Description string    `bun:"description"`
	CreatedAt   time.Time `bun:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at"`
}

// ResourceKind implements types.Snapshot.
func (r *Room) ResourceKind() types.ResourceKind { return types.ResourceRoom }

// ResourceID implements types.Snapshot.
func (r *Room) ResourceID() uuid.UUID { return r.ID }

// OwningProjectID implements types.Snapshot.
func (r *Room) OwningProjectID() uuid.UUID { return r.ProjectID }

// Fields enumerates the diffable scalar attributes in stable form.
func (r *Room) Fields() map[string]any {
	return map[string]any{
		"name":        r.Name,
		"description": r.Description,
	}
}

// OrgUnit models the persisted row in org_units. RoomID is nil while the
// unit is unassigned; ProjectID is always set.
type OrgUnit struct {
	bun.BaseModel `bun:"table:org_units"`

	ID          uuid.UUID  `bun:",pk,type:uuid"`
	ProjectID   uuid.UUID  `bun:"project_id,type:uuid"`
	RoomID      *uuid.UUID `bun:"room_id,type:uuid"`
	Name        string     `bun:"name"`
	Description string     `bun:"description"`
	CreatedAt   time.Time  `bun:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at"`
}

// ResourceKind implements types.Snapshot.
func (o *OrgUnit) ResourceKind() types.ResourceKind { return types.ResourceOrgUnit }

// ResourceID implements types.Snapshot.
func (o *OrgUnit) ResourceID() uuid.UUID { return o.ID }

// OwningProjectID implements types.Snapshot.
func (o *OrgUnit) OwningProjectID() uuid.UUID { return o.ProjectID }

// Fields enumerates the diffable scalar attributes. Room containment is
// excluded; it changes through move events.
func (o *OrgUnit) Fields() map[string]any {
	return map[string]any{
		"name":        o.Name,
		"description": o.Description,
	}
}

// Item models the persisted row in items. OrgUnitID is nil while the item is
// unassigned; ProjectID is always set.
type Item struct {
	bun.BaseModel `bun:"table:items"`

	ID          uuid.UUID  `bun:",pk,type:uuid"`
	ProjectID   uuid.UUID  `bun:"project_id,type:uuid"`
	OrgUnitID   *uuid.UUID `bun:"org_unit_id,type:uuid"`
	Name        string     `bun:"name"`
	Description string     `bun:"description"`
	Quantity    int        `bun:"quantity"`
	Tags        []string   `bun:"tags,type:jsonb"`
	CreatedAt   time.Time  `bun:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at"`
}

// ResourceKind implements types.Snapshot.
func (i *Item) ResourceKind() types.ResourceKind { return types.ResourceItem }

// ResourceID implements types.Snapshot.
func (i *Item) ResourceID() uuid.UUID { return i.ID }

// OwningProjectID implements types.Snapshot.
func (i *Item) OwningProjectID() uuid.UUID { return i.ProjectID }

// Fields enumerates the diffable scalar attributes. Org unit containment is
// excluded; it changes through move events.
func (i *Item) Fields() map[string]any {
	return map[string]any{
		"name":        i.Name,
		"description": i.Description,
		"quantity":    i.Quantity,
		"tags":        i.Tags,
	}
}

var (
	_ types.Snapshot = (*Project)(nil)
	_ types.Snapshot = (*Room)(nil)
	_ types.Snapshot = (*OrgUnit)(nil)
	_ types.Snapshot = (*Item)(nil)
)
