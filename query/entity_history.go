package query

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/croysdar/clutter-map-sub000/pkg/types"
	"github.com/croysdar/clutter-map-sub000/resolver"
	"github.com/croysdar/clutter-map-sub000/scope"
	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"
)

// HistorySource is the read surface the history query needs: the audit feed
// plus the event-derived project lookup used to authorize reads on resources
// whose live row is already gone.
type HistorySource interface {
	types.EventRepository
	ResourceProjectID(ctx context.Context, kind types.ResourceKind, id uuid.UUID) (uuid.UUID, error)
}

// EntityHistoryQuery serves the per-entity change timeline.
type EntityHistoryQuery struct {
	repo HistorySource
	gate *scope.Gate
}

// NewEntityHistoryQuery constructs the history query helper.
func NewEntityHistoryQuery(repo HistorySource, gate *scope.Gate) *EntityHistoryQuery {
	return &EntityHistoryQuery{
		repo: repo,
		gate: gate,
	}
}

var _ gocommand.Querier[types.EntityHistoryFilter, types.HistoryPage] = (*EntityHistoryQuery)(nil)

// Query authorizes the read and fetches the timeline page. Resources that no
// longer exist are authorized through the project stamped on their audit
// trail, so deletion history stays readable by the owner.
func (q *EntityHistoryQuery) Query(ctx context.Context, filter types.EntityHistoryFilter) (types.HistoryPage, error) {
	if q.repo == nil {
		return types.HistoryPage{}, types.ErrMissingEventRepository
	}
	if q.gate == nil {
		return types.HistoryPage{}, types.ErrServiceNotReady
	}

	actor, err := q.gate.CurrentActor(ctx)
	if err != nil {
		return types.HistoryPage{}, err
	}
	filter.Actor = actor
	if err := filter.Validate(); err != nil {
		return types.HistoryPage{}, err
	}

	if err := q.authorize(ctx, filter.ResourceKind, filter.ResourceID); err != nil {
		return types.HistoryPage{}, err
	}
	return q.repo.ListEntityHistory(ctx, filter)
}

func (q *EntityHistoryQuery) authorize(ctx context.Context, kind types.ResourceKind, id uuid.UUID) error {
	_, _, err := q.gate.RequireOwner(ctx, kind, id)
	if err == nil || !resolver.IsNotFound(err) {
		return err
	}

	// live row is gone; fall back to the project its events were stamped with
	projectID, lookupErr := q.repo.ResourceProjectID(ctx, kind, id)
	if lookupErr != nil {
		if stderrors.Is(lookupErr, sql.ErrNoRows) {
			return err
		}
		return lookupErr
	}
	_, _, err = q.gate.RequireOwner(ctx, types.ResourceProject, projectID)
	return err
}
