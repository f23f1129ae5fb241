package inventory

import (
	"database/sql"
	"testing"

	"github.com/goliatone/go-repository-cache/repositorycache"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func TestWithCacheWrapsProjectRepository(t *testing.T) {
	db := openBareDB(t)

	stores, err := NewStores(StoresConfig{DB: db}, WithCache(true))
	require.NoError(t, err)

	_, ok := stores.projects.(*repositorycache.CachedRepository[*Project])
	require.True(t, ok, "expected cached project repository")
}

func TestCacheDisabledByDefault(t *testing.T) {
	db := openBareDB(t)

	stores, err := NewStores(StoresConfig{DB: db})
	require.NoError(t, err)

	_, ok := stores.projects.(*repositorycache.CachedRepository[*Project])
	require.False(t, ok, "expected plain project repository")
}

func TestCacheDoesNotDoubleWrap(t *testing.T) {
	db := openBareDB(t)

	stores, err := NewStores(StoresConfig{DB: db}, WithCache(true))
	require.NoError(t, err)

	rewrapped := maybeCacheProjects(stores.projects, RepositoryOptions{CacheEnabled: true})
	require.Same(t, stores.projects, rewrapped)
}

func openBareDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
		_ = sqldb.Close()
	})
	return db
}
