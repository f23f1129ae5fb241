package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Transactional write helpers. Commands pass their open transaction so the
// business row and its audit record share fate; the recorder appends to the
// same handle.

// CreateUser inserts an actor row. Exposed for seeding and tests; identity
// management proper belongs to the host application.
func (s *Stores) CreateUser(ctx context.Context, user *User) error {
	s.stampNew(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	_, err := s.db.NewInsert().Model(user).Exec(ctx)
	return err
}

// CreateProjectTx inserts a project row inside the supplied transaction.
func (s *Stores) CreateProjectTx(ctx context.Context, idb bun.IDB, project *Project) error {
	s.stampNew(&project.ID, &project.CreatedAt, &project.UpdatedAt)
	_, err := idb.NewInsert().Model(project).Exec(ctx)
	return err
}

// UpdateProjectTx rewrites a project row inside the supplied transaction.
func (s *Stores) UpdateProjectTx(ctx context.Context, idb bun.IDB, project *Project) error {
	project.UpdatedAt = s.clock.Now()
	_, err := idb.NewUpdate().Model(project).WherePK().Exec(ctx)
	return err
}

// DeleteProjectTx removes a project row; events, rooms, org units, and items
// scoped to it go with it through FK cascades.
func (s *Stores) DeleteProjectTx(ctx context.Context, idb bun.IDB, id uuid.UUID) error {
	_, err := idb.NewDelete().Model((*Project)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}

// CreateRoomTx inserts a room row inside the supplied transaction.
func (s *Stores) CreateRoomTx(ctx context.Context, idb bun.IDB, room *Room) error {
	s.stampNew(&room.ID, &room.CreatedAt, &room.UpdatedAt)
	_, err := idb.NewInsert().Model(room).Exec(ctx)
	return err
}

// UpdateRoomTx rewrites a room row inside the supplied transaction.
func (s *Stores) UpdateRoomTx(ctx context.Context, idb bun.IDB, room *Room) error {
	room.UpdatedAt = s.clock.Now()
	_, err := idb.NewUpdate().Model(room).WherePK().Exec(ctx)
	return err
}

// DeleteRoomTx removes a room row. Org units inside it fall back to
// unassigned through the FK's SET NULL.
func (s *Stores) DeleteRoomTx(ctx context.Context, idb bun.IDB, id uuid.UUID) error {
	_, err := idb.NewDelete().Model((*Room)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}

// CreateOrgUnitTx inserts an org unit row inside the supplied transaction.
func (s *Stores) CreateOrgUnitTx(ctx context.Context, idb bun.IDB, unit *OrgUnit) error {
	s.stampNew(&unit.ID, &unit.CreatedAt, &unit.UpdatedAt)
	_, err := idb.NewInsert().Model(unit).Exec(ctx)
	return err
}

// UpdateOrgUnitTx rewrites an org unit row inside the supplied transaction.
func (s *Stores) UpdateOrgUnitTx(ctx context.Context, idb bun.IDB, unit *OrgUnit) error {
	unit.UpdatedAt = s.clock.Now()
	_, err := idb.NewUpdate().Model(unit).WherePK().Exec(ctx)
	return err
}

// DeleteOrgUnitTx removes an org unit row. Items inside it fall back to
// unassigned through the FK's SET NULL.
func (s *Stores) DeleteOrgUnitTx(ctx context.Context, idb bun.IDB, id uuid.UUID) error {
	_, err := idb.NewDelete().Model((*OrgUnit)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}

// CreateItemTx inserts an item row inside the supplied transaction.
func (s *Stores) CreateItemTx(ctx context.Context, idb bun.IDB, item *Item) error {
	s.stampNew(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	_, err := idb.NewInsert().Model(item).Exec(ctx)
	return err
}

// UpdateItemTx rewrites an item row inside the supplied transaction.
func (s *Stores) UpdateItemTx(ctx context.Context, idb bun.IDB, item *Item) error {
	item.UpdatedAt = s.clock.Now()
	_, err := idb.NewUpdate().Model(item).WherePK().Exec(ctx)
	return err
}

// DeleteItemTx removes an item row inside the supplied transaction.
func (s *Stores) DeleteItemTx(ctx context.Context, idb bun.IDB, id uuid.UUID) error {
	_, err := idb.NewDelete().Model((*Item)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}

func (s *Stores) stampNew(id *uuid.UUID, createdAt, updatedAt *time.Time) {
	if *id == uuid.Nil {
		*id = s.idGen.UUID()
	}
	now := s.clock.Now()
	if createdAt.IsZero() {
		*createdAt = now
	}
	if updatedAt.IsZero() {
		*updatedAt = now
	}
}
