package inventory

import (
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	repository "github.com/goliatone/go-repository-bun"
)

// RepositoryOption configures inventory store construction.
type RepositoryOption func(*RepositoryOptions)

// RepositoryOptions captures optional behavior for inventory persistence.
type RepositoryOptions struct {
	CacheEnabled bool
	CacheConfig  *cache.Config
}

// WithCache toggles the cache decorator on the project repository. It stays
// off by default: ownership resolution must observe rows written in the
// current request, so only hosts with read-heavy project listings opt in.
func WithCache(enabled bool) RepositoryOption {
	return func(opts *RepositoryOptions) {
		if opts == nil {
			return
		}
		opts.CacheEnabled = enabled
	}
}

// WithCacheConfig supplies the cache configuration to use when caching is enabled.
func WithCacheConfig(cfg cache.Config) RepositoryOption {
	return func(opts *RepositoryOptions) {
		if opts == nil {
			return
		}
		opts.CacheConfig = &cfg
	}
}

func applyRepositoryOptions(options []RepositoryOption) RepositoryOptions {
	var opts RepositoryOptions
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&opts)
	}
	return opts
}

func maybeCacheProjects(repo repository.Repository[*Project], opts RepositoryOptions) repository.Repository[*Project] {
	if !opts.CacheEnabled {
		return repo
	}
	if _, ok := repo.(*repositorycache.CachedRepository[*Project]); ok {
		return repo
	}
	cfg := cache.DefaultConfig()
	if opts.CacheConfig != nil {
		cfg = *opts.CacheConfig
	}
	service, err := cache.NewCacheService(cfg)
	if err != nil {
		return repo
	}
	return repositorycache.New(repo, service, cache.NewDefaultKeySerializer())
}
