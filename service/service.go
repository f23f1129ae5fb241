package service

import (
	"context"

	"github.com/croysdar/clutter-map-sub000/command"
	"github.com/croysdar/clutter-map-sub000/events"
	"github.com/croysdar/clutter-map-sub000/inventory"
	"github.com/croysdar/clutter-map-sub000/pkg/types"
	"github.com/croysdar/clutter-map-sub000/query"
	"github.com/croysdar/clutter-map-sub000/resolver"
	"github.com/croysdar/clutter-map-sub000/scope"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-masker"
	"github.com/uptrace/bun"
)

// Service is the entry point for clutter-map. It wires the inventory stores,
// entity resolver, authorization gate, event recorder, and the command/query
// facades supplied to host applications.
type Service struct {
	cfg       Config
	commands  Commands
	queries   Queries
	stores    *inventory.Stores
	resolver  *resolver.Resolver
	gate      *scope.Gate
	guard     scope.Guard
	recorder  *events.Recorder
	eventRepo *events.Repository
}

// Commands exposes the service command handlers.
type Commands struct {
	ProjectCreate *command.ProjectCreateCommand
	ProjectUpdate *command.ProjectUpdateCommand
	ProjectDelete *command.ProjectDeleteCommand
	RoomCreate    *command.RoomCreateCommand
	RoomUpdate    *command.RoomUpdateCommand
	RoomDelete    *command.RoomDeleteCommand
	OrgUnitCreate *command.OrgUnitCreateCommand
	OrgUnitUpdate *command.OrgUnitUpdateCommand
	OrgUnitMove   *command.OrgUnitMoveCommand
	OrgUnitDelete *command.OrgUnitDeleteCommand
	ItemCreate    *command.ItemCreateCommand
	ItemUpdate    *command.ItemUpdateCommand
	ItemMove      *command.ItemMoveCommand
	ItemDelete    *command.ItemDeleteCommand
}

// Queries exposes read-model helpers.
type Queries struct {
	EntityHistory *query.EntityHistoryQuery
	ChangesSince  *query.ChangesSinceQuery
}

// Config captures all required dependencies so callers can provide their own
// instances (bun.DB, cached repositories, feature gates, hooks, etc.).
type Config struct {
	DB           *bun.DB
	Stores       *inventory.Stores
	Actors       types.ActorDirectory
	Projects     types.ProjectDirectory
	FeatureGate  featuregate.FeatureGate
	Serializer   types.Serializer
	Masker       *masker.Masker
	Hooks        types.Hooks
	Clock        types.Clock
	IDGenerator  types.IDGenerator
	Logger       types.Logger
	StoreOptions []inventory.RepositoryOption
}

// New constructs a Service from the supplied configuration.
func New(cfg Config) (*Service, error) {
	norm := normalizeConfig(cfg)

	stores := norm.Stores
	if stores == nil {
		built, err := inventory.NewStores(inventory.StoresConfig{
			DB:    norm.DB,
			Clock: norm.Clock,
			IDGen: norm.IDGenerator,
		}, norm.StoreOptions...)
		if err != nil {
			return nil, err
		}
		stores = built
	}

	res, err := stores.NewResolver(norm.Logger)
	if err != nil {
		return nil, err
	}

	actors := norm.Actors
	if actors == nil {
		actors = stores
	}
	projects := norm.Projects
	if projects == nil {
		projects = stores
	}

	gate, err := scope.NewGate(scope.GateConfig{
		DB:       stores.DB(),
		Resolver: res,
		Actors:   actors,
		Projects: projects,
		Logger:   norm.Logger,
	})
	if err != nil {
		return nil, err
	}

	recorder, err := events.NewRecorder(events.RecorderConfig{
		Resolver:    res,
		Serializer:  norm.Serializer,
		Masker:      norm.Masker,
		FeatureGate: norm.FeatureGate,
		Clock:       norm.Clock,
		IDGen:       norm.IDGenerator,
		Logger:      norm.Logger,
		Hooks:       norm.Hooks,
	})
	if err != nil {
		return nil, err
	}

	eventRepo, err := events.NewRepository(events.RepositoryConfig{
		DB:         stores.DB(),
		Serializer: norm.Serializer,
		Masker:     norm.Masker,
	})
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:       norm,
		stores:    stores,
		resolver:  res,
		gate:      gate,
		guard:     scope.NewGuard(scope.NewOwnershipPolicy(gate)),
		recorder:  recorder,
		eventRepo: eventRepo,
	}
	if err := s.buildCommands(); err != nil {
		return nil, err
	}
	s.queries = Queries{
		EntityHistory: query.NewEntityHistoryQuery(eventRepo, gate),
		ChangesSince:  query.NewChangesSinceQuery(eventRepo, gate),
	}
	return s, nil
}

func normalizeConfig(cfg Config) Config {
	if cfg.Clock == nil {
		cfg.Clock = types.SystemClock{}
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = types.UUIDGenerator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}
	if cfg.Serializer == nil {
		cfg.Serializer = events.DefaultSerializer
	}
	if cfg.Masker == nil {
		cfg.Masker = events.DefaultMasker()
	}
	return cfg
}

// Commands returns the command facade.
func (s *Service) Commands() Commands {
	return s.commands
}

// Queries returns the query facade.
func (s *Service) Queries() Queries {
	return s.queries
}

// Stores returns the inventory stores used by the command handlers.
func (s *Service) Stores() *inventory.Stores {
	if s == nil {
		return nil
	}
	return s.stores
}

// Events returns the audit log read repository.
func (s *Service) Events() *events.Repository {
	if s == nil {
		return nil
	}
	return s.eventRepo
}

// Recorder returns the event recorder so hosts can stamp audit rows from
// auxiliary workflows that bypass the command handlers.
func (s *Service) Recorder() *events.Recorder {
	if s == nil {
		return nil
	}
	return s.recorder
}

// Gate returns the authorization gate backing the command handlers.
func (s *Service) Gate() *scope.Gate {
	if s == nil {
		return nil
	}
	return s.gate
}

// ScopeGuard exposes the guard instance used internally so transports can
// reuse the same ownership policy for HTTP adapters.
func (s *Service) ScopeGuard() scope.Guard {
	if s == nil {
		return scope.NopGuard()
	}
	return scope.Ensure(s.guard)
}

// Ready reports whether the service has the required dependencies wired in.
func (s *Service) Ready() bool {
	return s != nil &&
		s.stores != nil &&
		s.resolver != nil &&
		s.gate != nil &&
		s.recorder != nil &&
		s.eventRepo != nil
}

// HealthCheck surfaces missing configuration to upstream transports
// (REST/gRPC/jobs) before they start serving traffic.
func (s *Service) HealthCheck(ctx context.Context) error {
	if !s.Ready() {
		return types.ErrServiceNotReady
	}
	if s.stores.DB() == nil {
		return types.ErrMissingStores
	}
	return s.stores.DB().PingContext(ctx)
}

func (s *Service) buildCommands() error {
	cfg := command.Config{
		Stores:   s.stores,
		Recorder: s.recorder,
		Gate:     s.gate,
		Resolver: s.resolver,
		Clock:    s.cfg.Clock,
		Logger:   s.cfg.Logger,
	}

	var err error
	if s.commands.ProjectCreate, err = command.NewProjectCreateCommand(cfg); err != nil {
		return err
	}
	if s.commands.ProjectUpdate, err = command.NewProjectUpdateCommand(cfg); err != nil {
		return err
	}
	if s.commands.ProjectDelete, err = command.NewProjectDeleteCommand(cfg); err != nil {
		return err
	}
	if s.commands.RoomCreate, err = command.NewRoomCreateCommand(cfg); err != nil {
		return err
	}
	if s.commands.RoomUpdate, err = command.NewRoomUpdateCommand(cfg); err != nil {
		return err
	}
	if s.commands.RoomDelete, err = command.NewRoomDeleteCommand(cfg); err != nil {
		return err
	}
	if s.commands.OrgUnitCreate, err = command.NewOrgUnitCreateCommand(cfg); err != nil {
		return err
	}
	if s.commands.OrgUnitUpdate, err = command.NewOrgUnitUpdateCommand(cfg); err != nil {
		return err
	}
	if s.commands.OrgUnitMove, err = command.NewOrgUnitMoveCommand(cfg); err != nil {
		return err
	}
	if s.commands.OrgUnitDelete, err = command.NewOrgUnitDeleteCommand(cfg); err != nil {
		return err
	}
	if s.commands.ItemCreate, err = command.NewItemCreateCommand(cfg); err != nil {
		return err
	}
	if s.commands.ItemUpdate, err = command.NewItemUpdateCommand(cfg); err != nil {
		return err
	}
	if s.commands.ItemMove, err = command.NewItemMoveCommand(cfg); err != nil {
		return err
	}
	if s.commands.ItemDelete, err = command.NewItemDeleteCommand(cfg); err != nil {
		return err
	}
	return nil
}
