package resolver_test

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"

	"github.com/croysdar/clutter-map-sub000/inventory"
	"github.com/croysdar/clutter-map-sub000/pkg/types"
	"github.com/croysdar/clutter-map-sub000/resolver"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type fixture struct {
	db       *bun.DB
	stores   *inventory.Stores
	resolver *resolver.Resolver
	owner    *inventory.User
	project  *inventory.Project
	room     *inventory.Room
	orgUnit  *inventory.OrgUnit
	item     *inventory.Item
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db := newTestDB(t)
	applyDDL(t, db,
		"../data/sql/migrations/sqlite/00001_users.up.sql",
		"../data/sql/migrations/sqlite/00002_inventory.up.sql",
	)

	stores, err := inventory.NewStores(inventory.StoresConfig{DB: db})
	require.NoError(t, err)

	res, err := stores.NewResolver(nil)
	require.NoError(t, err)

	owner := &inventory.User{Email: "owner@example.com", DisplayName: "Owner"}
	require.NoError(t, stores.CreateUser(ctx, owner))

	project := &inventory.Project{OwnerID: owner.ID, Name: "Garage"}
	require.NoError(t, stores.CreateProjectTx(ctx, db, project))

	room := &inventory.Room{ProjectID: project.ID, Name: "Workbench Corner"}
	require.NoError(t, stores.CreateRoomTx(ctx, db, room))

	orgUnit := &inventory.OrgUnit{ProjectID: project.ID, RoomID: &room.ID, Name: "Tool Chest"}
	require.NoError(t, stores.CreateOrgUnitTx(ctx, db, orgUnit))

	item := &inventory.Item{ProjectID: project.ID, OrgUnitID: &orgUnit.ID, Name: "Socket Set", Quantity: 1}
	require.NoError(t, stores.CreateItemTx(ctx, db, item))

	return &fixture{
		db:       db,
		stores:   stores,
		resolver: res,
		owner:    owner,
		project:  project,
		room:     room,
		orgUnit:  orgUnit,
		item:     item,
	}
}

func TestResolveOwningProject_AllKinds(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	cases := []struct {
		kind types.ResourceKind
		id   uuid.UUID
	}{
		{types.ResourceProject, fx.project.ID},
		{types.ResourceRoom, fx.room.ID},
		{types.ResourceOrgUnit, fx.orgUnit.ID},
		{types.ResourceItem, fx.item.ID},
	}
	for _, tc := range cases {
		ref, err := fx.resolver.ResolveOwningProject(ctx, fx.db, tc.kind, tc.id)
		require.NoError(t, err, "kind %s", tc.kind)
		require.Equal(t, fx.project.ID, ref.ID)
		require.Equal(t, fx.owner.ID, ref.OwnerID)
	}
}

func TestResolveOwningProject_UnassignedResources(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	looseUnit := &inventory.OrgUnit{ProjectID: fx.project.ID, Name: "Loose Bin"}
	require.NoError(t, fx.stores.CreateOrgUnitTx(ctx, fx.db, looseUnit))

	looseItem := &inventory.Item{ProjectID: fx.project.ID, Name: "Extension Cord", Quantity: 2}
	require.NoError(t, fx.stores.CreateItemTx(ctx, fx.db, looseItem))

	ref, err := fx.resolver.ResolveOwningProject(ctx, fx.db, types.ResourceOrgUnit, looseUnit.ID)
	require.NoError(t, err)
	require.Equal(t, fx.project.ID, ref.ID)

	ref, err = fx.resolver.ResolveOwningProject(ctx, fx.db, types.ResourceItem, looseItem.ID)
	require.NoError(t, err)
	require.Equal(t, fx.project.ID, ref.ID)
}

func TestResolveOwningProject_NotFound(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	for _, kind := range types.KnownResourceKinds() {
		_, err := fx.resolver.ResolveOwningProject(ctx, fx.db, kind, uuid.New())
		require.Error(t, err, "kind %s", kind)
		require.True(t, resolver.IsNotFound(err), "kind %s: %v", kind, err)
	}
}

func TestResolveOwningProject_NilID(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	_, err := fx.resolver.ResolveOwningProject(ctx, fx.db, types.ResourceItem, uuid.Nil)
	require.Error(t, err)
	require.True(t, resolver.IsNotFound(err))
}

func TestResolveOwningProject_UnregisteredKind(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	bare, err := resolver.New(resolver.Config{Projects: fx.stores})
	require.NoError(t, err)

	_, err = bare.ResolveOwningProject(ctx, fx.db, types.ResourceRoom, fx.room.ID)
	require.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	require.Equal(t, resolver.TextCodeUnknownResourceKind, richErr.TextCode)
}

func TestResolveOwningProject_SeesUncommittedRows(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	tx, err := fx.db.BeginTx(ctx, nil)
	require.NoError(t, err)

	room := &inventory.Room{ProjectID: fx.project.ID, Name: "Attic"}
	require.NoError(t, fx.stores.CreateRoomTx(ctx, tx, room))

	ref, err := fx.resolver.ResolveOwningProject(ctx, tx, types.ResourceRoom, room.ID)
	require.NoError(t, err)
	require.Equal(t, fx.project.ID, ref.ID)

	require.NoError(t, tx.Rollback())

	_, err = fx.resolver.ResolveOwningProject(ctx, fx.db, types.ResourceRoom, room.ID)
	require.True(t, resolver.IsNotFound(err))
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open("sqlite3", ":memory:?cache=shared")
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
