package cluttermap

import "embed"

// MigrationsFS contains SQL migrations for both PostgreSQL and SQLite.
//
// The migrations are organized in a dialect-aware structure:
//   - Root files (data/sql/migrations/*.sql) contain PostgreSQL migrations
//   - SQLite overrides are in data/sql/migrations/sqlite/*.sql
//
// Dialect-aware loaders (go-persistence-bun and similar) can select the
// correct variant based on the database being used.
//
//go:embed data/sql/migrations
var MigrationsFS embed.FS
