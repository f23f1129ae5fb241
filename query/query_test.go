package query_test

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/croysdar/clutter-map-sub000/events"
	"github.com/croysdar/clutter-map-sub000/inventory"
	"github.com/croysdar/clutter-map-sub000/pkg/types"
	"github.com/croysdar/clutter-map-sub000/query"
	"github.com/croysdar/clutter-map-sub000/scope"
	auth "github.com/goliatone/go-auth"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type stubClock struct {
	now time.Time
}

func (c *stubClock) Now() time.Time { return c.now }

func (c *stubClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type queryFixture struct {
	db       *bun.DB
	stores   *inventory.Stores
	recorder *events.Recorder
	repo     *events.Repository
	history  *query.EntityHistoryQuery
	changes  *query.ChangesSinceQuery
	clock    *stubClock
	owner    *inventory.User
	rival    *inventory.User
	project  *inventory.Project
	item     *inventory.Item
}

func newQueryFixture(t *testing.T) *queryFixture {
	t.Helper()
	ctx := context.Background()

	db := newTestDB(t)
	applyDDL(t, db,
		"../data/sql/migrations/sqlite/00001_users.up.sql",
		"../data/sql/migrations/sqlite/00002_inventory.up.sql",
		"../data/sql/migrations/sqlite/00003_events.up.sql",
	)

	stores, err := inventory.NewStores(inventory.StoresConfig{DB: db})
	require.NoError(t, err)
	res, err := stores.NewResolver(nil)
	require.NoError(t, err)

	gate, err := scope.NewGate(scope.GateConfig{
		DB:       db,
		Resolver: res,
		Actors:   stores,
		Projects: stores,
	})
	require.NoError(t, err)

	clock := &stubClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	recorder, err := events.NewRecorder(events.RecorderConfig{Resolver: res, Clock: clock})
	require.NoError(t, err)
	repo, err := events.NewRepository(events.RepositoryConfig{DB: db})
	require.NoError(t, err)

	owner := &inventory.User{Email: "owner@example.com", DisplayName: "Owner"}
	require.NoError(t, stores.CreateUser(ctx, owner))
	rival := &inventory.User{Email: "rival@example.com", DisplayName: "Rival"}
	require.NoError(t, stores.CreateUser(ctx, rival))

	actor := types.ActorRef{ID: owner.ID, Type: "owner"}
	project := &inventory.Project{OwnerID: owner.ID, Name: "Garage"}
	require.NoError(t, stores.CreateProjectTx(ctx, db, project))
	require.NoError(t, recorder.RecordCreate(ctx, db, actor, project))
	clock.Advance(time.Second)

	item := &inventory.Item{ProjectID: project.ID, Name: "Socket Set", Quantity: 1}
	require.NoError(t, stores.CreateItemTx(ctx, db, item))
	require.NoError(t, recorder.RecordCreate(ctx, db, actor, item))
	clock.Advance(time.Second)

	return &queryFixture{
		db:       db,
		stores:   stores,
		recorder: recorder,
		repo:     repo,
		history:  query.NewEntityHistoryQuery(repo, gate),
		changes:  query.NewChangesSinceQuery(repo, gate),
		clock:    clock,
		owner:    owner,
		rival:    rival,
		project:  project,
		item:     item,
	}
}

func asActor(user *inventory.User) context.Context {
	return auth.WithActorContext(context.Background(), &auth.ActorContext{
		ActorID: user.ID.String(),
		Role:    "owner",
		Subject: user.Email,
	})
}

func TestEntityHistoryQuery_OwnerReads(t *testing.T) {
	fx := newQueryFixture(t)

	page, err := fx.history.Query(asActor(fx.owner), types.EntityHistoryFilter{
		ResourceKind: types.ResourceItem,
		ResourceID:   fx.item.ID,
	})
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	require.Equal(t, types.ChangeCreate, page.Entries[0].ChangeKind)
	require.Equal(t, "Owner", page.Entries[0].ActorName)
}

func TestEntityHistoryQuery_NonOwnerDenied(t *testing.T) {
	fx := newQueryFixture(t)

	_, err := fx.history.Query(asActor(fx.rival), types.EntityHistoryFilter{
		ResourceKind: types.ResourceItem,
		ResourceID:   fx.item.ID,
	})
	require.True(t, scope.IsDenied(err))
}

func TestEntityHistoryQuery_DeletedResourceStaysReadable(t *testing.T) {
	ctx := context.Background()
	fx := newQueryFixture(t)
	actor := types.ActorRef{ID: fx.owner.ID}

	require.NoError(t, fx.recorder.RecordDelete(ctx, fx.db, actor, fx.item))
	require.NoError(t, fx.stores.DeleteItemTx(ctx, fx.db, fx.item.ID))

	page, err := fx.history.Query(asActor(fx.owner), types.EntityHistoryFilter{
		ResourceKind: types.ResourceItem,
		ResourceID:   fx.item.ID,
	})
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	require.Equal(t, types.ChangeDelete, page.Entries[0].ChangeKind)

	// the rival still cannot read it
	_, err = fx.history.Query(asActor(fx.rival), types.EntityHistoryFilter{
		ResourceKind: types.ResourceItem,
		ResourceID:   fx.item.ID,
	})
	require.True(t, scope.IsDenied(err))
}

func TestEntityHistoryQuery_UnknownResource(t *testing.T) {
	fx := newQueryFixture(t)

	_, err := fx.history.Query(asActor(fx.owner), types.EntityHistoryFilter{
		ResourceKind: types.ResourceItem,
		ResourceID:   uuid.New(),
	})
	require.Error(t, err)
	require.False(t, scope.IsDenied(err))
}

func TestChangesSinceQuery_ScopedToOwnedProjects(t *testing.T) {
	fx := newQueryFixture(t)

	entries, err := fx.changes.Query(asActor(fx.owner), types.ChangesSinceFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, types.ResourceProject, entries[0].ResourceKind)
	require.Equal(t, types.ResourceItem, entries[1].ResourceKind)

	// an actor with no projects gets an empty feed, not an error
	entries, err = fx.changes.Query(asActor(fx.rival), types.ChangesSinceFilter{})
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestChangesSinceQuery_RequestedScopeIntersected(t *testing.T) {
	fx := newQueryFixture(t)

	// requesting a foreign project yields nothing
	entries, err := fx.changes.Query(asActor(fx.rival), types.ChangesSinceFilter{
		ProjectIDs: []uuid.UUID{fx.project.ID},
	})
	require.NoError(t, err)
	require.Empty(t, entries)

	entries, err = fx.changes.Query(asActor(fx.owner), types.ChangesSinceFilter{
		ProjectIDs: []uuid.UUID{fx.project.ID, uuid.New()},
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestChangesSinceQuery_Watermark(t *testing.T) {
	fx := newQueryFixture(t)

	// the project event sits exactly on the watermark and is excluded
	watermark := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	entries, err := fx.changes.Query(asActor(fx.owner), types.ChangesSinceFilter{
		Since: watermark,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, types.ResourceItem, entries[0].ResourceKind)
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open("sqlite3", ":memory:?cache=shared&_foreign_keys=on")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
		_ = sqldb.Close()
	})
	return db
}

func applyDDL(t *testing.T, db *bun.DB, paths ...string) {
	t.Helper()
	for _, path := range paths {
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		for _, stmt := range splitStatements(string(content)) {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			_, err := db.Exec(stmt)
			require.NoError(t, err)
		}
	}
}

func splitStatements(sql string) []string {
	lines := strings.Split(sql, "\n")
	var builder strings.Builder
	var statements []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		builder.WriteString(line)
		if strings.HasSuffix(line, ";") {
			statements = append(statements, strings.TrimSuffix(builder.String(), ";"))
			builder.Reset()
		} else {
			builder.WriteString(" ")
		}
	}
	if builder.Len() > 0 {
		statements = append(statements, builder.String())
	}
	return statements
}
