package migrations

import (
	"io/fs"

	cluttermap "github.com/croysdar/clutter-map-sub000"
)

func init() {
	coreFS, err := fs.Sub(cluttermap.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return
	}
	Register(coreFS)
}
