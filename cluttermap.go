package cluttermap

import "github.com/croysdar/clutter-map-sub000/service"

// Re-export the service package entry point so consumers can do
// `cluttermap.New(...)` without importing internal wiring helpers.
type (
	Service  = service.Service
	Config   = service.Config
	Commands = service.Commands
	Queries  = service.Queries
)

// New constructs the clutter-map runtime using the provided configuration.
func New(cfg Config) (*Service, error) {
	return service.New(cfg)
}
