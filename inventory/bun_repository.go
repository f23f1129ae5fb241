package inventory

import (
	"context"
	"errors"

	"github.com/croysdar/clutter-map-sub000/pkg/types"
	"github.com/croysdar/clutter-map-sub000/resolver"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// StoresConfig wires the Bun-backed inventory stores.
type StoresConfig struct {
	DB       *bun.DB
	Projects repository.Repository[*Project]
	Rooms    repository.Repository[*Room]
	OrgUnits repository.Repository[*OrgUnit]
	Items    repository.Repository[*Item]
	Users    repository.Repository[*User]
	Clock    types.Clock
	IDGen    types.IDGenerator
}

// Stores groups one repository per resource kind plus the actor directory.
// It also provides the per-kind locators consumed by the entity resolver.
type Stores struct {
	db       *bun.DB
	projects repository.Repository[*Project]
	rooms    repository.Repository[*Room]
	orgUnits repository.Repository[*OrgUnit]
	items    repository.Repository[*Item]
	users    repository.Repository[*User]
	clock    types.Clock
	idGen    types.IDGenerator
}

// NewStores constructs the inventory stores. Repositories default to
// go-repository-bun over the supplied DB; options can decorate them (see
// WithCache).
func NewStores(cfg StoresConfig, options ...RepositoryOption) (*Stores, error) {
	if cfg.DB == nil {
		return nil, errors.New("inventory: db required")
	}
	opts := applyRepositoryOptions(options)

	projects := cfg.Projects
	if projects == nil {
		projects = repository.NewRepository(cfg.DB, repository.ModelHandlers[*Project]{
			NewRecord: func() *Project { return &Project{} },
			GetID: func(p *Project) uuid.UUID {
				if p == nil {
					return uuid.Nil
				}
				return p.ID
			},
			SetID: func(p *Project, id uuid.UUID) {
				if p != nil {
					p.ID = id
				}
			},
		})
	}
	rooms := cfg.Rooms
	if rooms == nil {
		rooms = repository.NewRepository(cfg.DB, repository.ModelHandlers[*Room]{
			NewRecord: func() *Room { return &Room{} },
			GetID: func(r *Room) uuid.UUID {
				if r == nil {
					return uuid.Nil
				}
				return r.ID
			},
			SetID: func(r *Room, id uuid.UUID) {
				if r != nil {
					r.ID = id
				}
			},
		})
	}
	orgUnits := cfg.OrgUnits
	if orgUnits == nil {
		orgUnits = repository.NewRepository(cfg.DB, repository.ModelHandlers[*OrgUnit]{
			NewRecord: func() *OrgUnit { return &OrgUnit{} },
			GetID: func(o *OrgUnit) uuid.UUID {
				if o == nil {
					return uuid.Nil
				}
				return o.ID
			},
			SetID: func(o *OrgUnit, id uuid.UUID) {
				if o != nil {
					o.ID = id
				}
			},
		})
	}
	items := cfg.Items
	if items == nil {
		items = repository.NewRepository(cfg.DB, repository.ModelHandlers[*Item]{
			NewRecord: func() *Item { return &Item{} },
			GetID: func(i *Item) uuid.UUID {
				if i == nil {
					return uuid.Nil
				}
				return i.ID
			},
			SetID: func(i *Item, id uuid.UUID) {
				if i != nil {
					i.ID = id
				}
			},
		})
	}
	users := cfg.Users
	if users == nil {
		users = repository.NewRepository(cfg.DB, repository.ModelHandlers[*User]{
			NewRecord: func() *User { return &User{} },
			GetID: func(u *User) uuid.UUID {
				if u == nil {
					return uuid.Nil
				}
				return u.ID
			},
			SetID: func(u *User, id uuid.UUID) {
				if u != nil {
					u.ID = id
				}
			},
		})
	}

	projects = maybeCacheProjects(projects, opts)

	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}

	return &Stores{
		db:       cfg.DB,
		projects: projects,
		rooms:    rooms,
		orgUnits: orgUnits,
		items:    items,
		users:    users,
		clock:    clock,
		idGen:    idGen,
	}, nil
}

var (
	_ types.ActorDirectory   = (*Stores)(nil)
	_ types.ProjectDirectory = (*Stores)(nil)
	_ resolver.ProjectSource = (*Stores)(nil)
)

// DB exposes the underlying handle for transaction management.
func (s *Stores) DB() *bun.DB { return s.db }

// RunInTx opens a transaction and runs fn inside it.
func (s *Stores) RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	return s.db.RunInTx(ctx, nil, fn)
}

// GetProject loads one project by id.
func (s *Stores) GetProject(ctx context.Context, id uuid.UUID) (*Project, error) {
	return s.projects.GetByID(ctx, id.String())
}

// GetRoom loads one room by id.
func (s *Stores) GetRoom(ctx context.Context, id uuid.UUID) (*Room, error) {
	return s.rooms.GetByID(ctx, id.String())
}

// GetOrgUnit loads one org unit by id.
func (s *Stores) GetOrgUnit(ctx context.Context, id uuid.UUID) (*OrgUnit, error) {
	return s.orgUnits.GetByID(ctx, id.String())
}

// GetItem loads one item by id.
func (s *Stores) GetItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	return s.items.GetByID(ctx, id.String())
}

// ListRoomsByProject returns a project's rooms ordered by name.
func (s *Stores) ListRoomsByProject(ctx context.Context, projectID uuid.UUID) ([]*Room, error) {
	rows, _, err := s.rooms.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("project_id = ?", projectID).OrderExpr("name ASC")
	})
	return rows, err
}

// ListItemsByOrgUnit returns the items currently assigned to an org unit.
func (s *Stores) ListItemsByOrgUnit(ctx context.Context, orgUnitID uuid.UUID) ([]*Item, error) {
	rows, _, err := s.items.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("org_unit_id = ?", orgUnitID).OrderExpr("name ASC")
	})
	return rows, err
}

// GetActor implements types.ActorDirectory.
func (s *Stores) GetActor(ctx context.Context, id uuid.UUID) (*types.Actor, error) {
	user := new(User)
	err := s.db.NewSelect().Model(user).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &types.Actor{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}, nil
}

// ListProjectIDsByOwner implements types.ProjectDirectory.
func (s *Stores) ListProjectIDsByOwner(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.NewSelect().
		Model((*Project)(nil)).
		Column("id").
		Where("owner_id = ?", ownerID).
		OrderExpr("created_at ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ProjectRef implements resolver.ProjectSource. It reads through the
// supplied handle so in-transaction rows are visible.
func (s *Stores) ProjectRef(ctx context.Context, idb bun.IDB, id uuid.UUID) (types.ProjectRef, error) {
	project := new(Project)
	err := idb.NewSelect().
		Model(project).
		Column("id", "owner_id").
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		return types.ProjectRef{}, err
	}
	return types.ProjectRef{ID: project.ID, OwnerID: project.OwnerID}, nil
}

// RoomProjectID reads the denormalized owning-project pointer of a room.
func (s *Stores) RoomProjectID(ctx context.Context, idb bun.IDB, id uuid.UUID) (uuid.UUID, error) {
	return scanProjectID(ctx, idb, (*Room)(nil), id)
}

// OrgUnitProjectID reads the denormalized owning-project pointer of an org unit.
func (s *Stores) OrgUnitProjectID(ctx context.Context, idb bun.IDB, id uuid.UUID) (uuid.UUID, error) {
	return scanProjectID(ctx, idb, (*OrgUnit)(nil), id)
}

// ItemProjectID reads the denormalized owning-project pointer of an item.
func (s *Stores) ItemProjectID(ctx context.Context, idb bun.IDB, id uuid.UUID) (uuid.UUID, error) {
	return scanProjectID(ctx, idb, (*Item)(nil), id)
}

// NewResolver builds an entity resolver with one locator registered per
// nested resource kind.
func (s *Stores) NewResolver(logger types.Logger) (*resolver.Resolver, error) {
	return resolver.New(resolver.Config{
		Projects: s,
		Logger:   logger,
		Locators: map[types.ResourceKind]resolver.Locator{
			types.ResourceRoom:    s.RoomProjectID,
			types.ResourceOrgUnit: s.OrgUnitProjectID,
			types.ResourceItem:    s.ItemProjectID,
		},
	})
}

func scanProjectID(ctx context.Context, idb bun.IDB, model any, id uuid.UUID) (uuid.UUID, error) {
	var projectID uuid.UUID
	err := idb.NewSelect().
		Model(model).
		Column("project_id").
		Where("id = ?", id).
		Scan(ctx, &projectID)
	if err != nil {
		return uuid.Nil, err
	}
	return projectID, nil
}
