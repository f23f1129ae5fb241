package query

import (
	"context"

	"github.com/croysdar/clutter-map-sub000/pkg/types"
	"github.com/croysdar/clutter-map-sub000/scope"
	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"
)

// ChangesSinceQuery serves the incremental sync feed. The executed scope is
// always the intersection of the caller's requested projects and the
// projects the actor owns; callers can never widen it.
type ChangesSinceQuery struct {
	repo types.EventRepository
	gate *scope.Gate
}

// NewChangesSinceQuery constructs the sync feed helper.
func NewChangesSinceQuery(repo types.EventRepository, gate *scope.Gate) *ChangesSinceQuery {
	return &ChangesSinceQuery{
		repo: repo,
		gate: gate,
	}
}

var _ gocommand.Querier[types.ChangesSinceFilter, []types.HistoryEntry] = (*ChangesSinceQuery)(nil)

// Query returns every change strictly after the watermark across the
// actor's accessible projects, oldest first. An actor with no projects, or a
// requested scope disjoint from the accessible one, gets an empty feed.
func (q *ChangesSinceQuery) Query(ctx context.Context, filter types.ChangesSinceFilter) ([]types.HistoryEntry, error) {
	if q.repo == nil {
		return nil, types.ErrMissingEventRepository
	}
	if q.gate == nil {
		return nil, types.ErrServiceNotReady
	}

	actor, accessible, err := q.gate.AccessibleProjectIDs(ctx)
	if err != nil {
		return nil, err
	}
	filter.Actor = actor
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	scoped := intersect(accessible, filter.ProjectIDs)
	if len(scoped) == 0 {
		return []types.HistoryEntry{}, nil
	}
	return q.repo.ListChangesSince(ctx, filter.Since, scoped)
}

// intersect narrows accessible to the requested set. An empty request means
// "everything I can see".
func intersect(accessible, requested []uuid.UUID) []uuid.UUID {
	if len(requested) == 0 {
		return accessible
	}
	allowed := make(map[uuid.UUID]struct{}, len(accessible))
	for _, id := range accessible {
		allowed[id] = struct{}{}
	}
	out := make([]uuid.UUID, 0, len(requested))
	for _, id := range requested {
		if _, ok := allowed[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
