package events

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/croysdar/clutter-map-sub000/pkg/types"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-masker"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed event repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Events     repository.Repository[*Event]
	Changes    repository.Repository[*EntityChange]
	Serializer types.Serializer
	Masker     *masker.Masker
}

// Repository serves the audit log's two read shapes and exposes the raw
// event stores for maintenance tooling.
type Repository struct {
	db         *bun.DB
	events     repository.Repository[*Event]
	changes    repository.Repository[*EntityChange]
	serializer types.Serializer
	masker     *masker.Masker
}

// NewRepository constructs the repository. The serializer must be the same
// instance the recorder writes with.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.DB == nil {
		return nil, stderrors.New("events: db required")
	}
	eventsRepo := cfg.Events
	if eventsRepo == nil {
		eventsRepo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*Event]{
			NewRecord: func() *Event { return &Event{} },
			GetID: func(e *Event) uuid.UUID {
				if e == nil {
					return uuid.Nil
				}
				return e.ID
			},
			SetID: func(e *Event, id uuid.UUID) {
				if e != nil {
					e.ID = id
				}
			},
		})
	}
	changesRepo := cfg.Changes
	if changesRepo == nil {
		changesRepo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*EntityChange]{
			NewRecord: func() *EntityChange { return &EntityChange{} },
			GetID: func(c *EntityChange) uuid.UUID {
				if c == nil {
					return uuid.Nil
				}
				return c.ID
			},
			SetID: func(c *EntityChange, id uuid.UUID) {
				if c != nil {
					c.ID = id
				}
			},
		})
	}
	serializer := cfg.Serializer
	if serializer == nil {
		serializer = DefaultSerializer
	}
	return &Repository{
		db:         cfg.DB,
		events:     eventsRepo,
		changes:    changesRepo,
		serializer: serializer,
		masker:     cfg.Masker,
	}, nil
}

var _ types.EventRepository = (*Repository)(nil)

// Events exposes the raw event store.
func (r *Repository) Events() repository.Repository[*Event] { return r.events }

// Changes exposes the raw entity-change store.
func (r *Repository) Changes() repository.Repository[*EntityChange] { return r.changes }

// historyRow is the join projection scanned for both read shapes.
type historyRow struct {
	ResourceKind string         `bun:"resource_kind"`
	ResourceID   uuid.UUID      `bun:"resource_id"`
	ChangeKind   string         `bun:"change_kind"`
	Details      []byte         `bun:"details"`
	ActorID      uuid.UUID      `bun:"actor_id"`
	ActorName    sql.NullString `bun:"actor_name"`
	OccurredAt   time.Time      `bun:"occurred_at"`
}

// ListEntityHistory returns the change timeline of one resource, newest
// first, with an exact total for pagination. Entries for deleted resources
// remain readable until their project is removed.
func (r *Repository) ListEntityHistory(ctx context.Context, filter types.EntityHistoryFilter) (types.HistoryPage, error) {
	if err := filter.Validate(); err != nil {
		return types.HistoryPage{}, err
	}
	pagination := normalizePagination(filter.Pagination, 50, 200)

	var rows []historyRow
	err := r.historySelect().
		Where("ec.resource_kind = ?", string(filter.ResourceKind)).
		Where("ec.resource_id = ?", filter.ResourceID).
		OrderExpr("e.created_at DESC, e.id DESC").
		Limit(pagination.Limit).
		Offset(pagination.Offset).
		Scan(ctx, &rows)
	if err != nil {
		return types.HistoryPage{}, errors.Wrap(err, errors.CategoryInternal, "clutter-map: entity history query failed").
			WithCode(errors.CodeInternal)
	}

	total, err := r.db.NewSelect().
		TableExpr("event_entity_changes AS ec").
		Where("ec.resource_kind = ?", string(filter.ResourceKind)).
		Where("ec.resource_id = ?", filter.ResourceID).
		Count(ctx)
	if err != nil {
		return types.HistoryPage{}, errors.Wrap(err, errors.CategoryInternal, "clutter-map: entity history count failed").
			WithCode(errors.CodeInternal)
	}

	entries, err := r.toEntries(rows)
	if err != nil {
		return types.HistoryPage{}, err
	}
	return types.HistoryPage{
		Entries:    SanitizeEntries(r.masker, entries),
		Total:      total,
		NextOffset: pagination.Offset + pagination.Limit,
		HasMore:    pagination.Offset+pagination.Limit < total,
	}, nil
}

// ListChangesSince returns every change strictly after the watermark across
// the supplied projects, oldest first, so clients replay in order. An empty
// scope is rejected rather than silently reading everything.
func (r *Repository) ListChangesSince(ctx context.Context, since time.Time, projectIDs []uuid.UUID) ([]types.HistoryEntry, error) {
	if len(projectIDs) == 0 {
		return nil, types.ErrProjectScopeRequired
	}

	var rows []historyRow
	err := r.historySelect().
		Where("e.project_id IN (?)", bun.In(projectIDs)).
		Where("e.created_at > ?", since).
		OrderExpr("e.created_at ASC, e.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "clutter-map: changes-since query failed").
			WithCode(errors.CodeInternal)
	}

	entries, err := r.toEntries(rows)
	if err != nil {
		return nil, err
	}
	return SanitizeEntries(r.masker, entries), nil
}

// ResourceProjectID returns the project an audited resource belongs to,
// derived from its most recent event. It keeps deleted resources
// authorizable for history reads after the live row is gone.
func (r *Repository) ResourceProjectID(ctx context.Context, kind types.ResourceKind, id uuid.UUID) (uuid.UUID, error) {
	var projectID uuid.UUID
	err := r.db.NewSelect().
		Model((*Event)(nil)).
		Column("project_id").
		Where("resource_kind = ?", string(kind)).
		Where("resource_id = ?", id).
		OrderExpr("created_at DESC").
		Limit(1).
		Scan(ctx, &projectID)
	if err != nil {
		return uuid.Nil, err
	}
	return projectID, nil
}

func (r *Repository) historySelect() *bun.SelectQuery {
	return r.db.NewSelect().
		TableExpr("event_entity_changes AS ec").
		Join("JOIN events AS e ON e.id = ec.event_id").
		Join("LEFT JOIN users AS u ON u.id = e.actor_id").
		ColumnExpr("ec.resource_kind, ec.resource_id, ec.change_kind, ec.details").
		ColumnExpr("e.actor_id AS actor_id, e.created_at AS occurred_at").
		ColumnExpr("u.display_name AS actor_name")
}

func (r *Repository) toEntries(rows []historyRow) ([]types.HistoryEntry, error) {
	entries := make([]types.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entry := types.HistoryEntry{
			ResourceKind: types.ResourceKind(row.ResourceKind),
			ResourceID:   row.ResourceID,
			ChangeKind:   types.ChangeKind(row.ChangeKind),
			ActorID:      row.ActorID,
			ActorName:    row.ActorName.String,
			OccurredAt:   row.OccurredAt,
		}
		if len(row.Details) > 0 {
			details := map[string]any{}
			if err := r.serializer.Unmarshal(row.Details, &details); err != nil {
				return nil, errors.Wrap(err, errors.CategoryInternal, "clutter-map: details decode failed").
					WithCode(errors.CodeInternal)
			}
			entry.Details = details
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func normalizePagination(p types.Pagination, defaultLimit, maxLimit int) types.Pagination {
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
