package di

import (
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-repository-kit/cache"
	"github.com/goliatone/go-repository-kit/repository"
	"github.com/goliatone/go-repository-kit/repositorycache"
	"github.com/goliatone/go-repository-kit/uow"
)

// Container provides dependency injection for the data-access components.
// It manages singleton instances of the cache service and key serializer and
// offers factory helpers for repositories, cached decorators and units of
// work.
type Container struct {
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
	config        cache.Config
	logger        zerolog.Logger
}

// Option configures a Container at construction time.
type Option func(*Container)

// WithLogger sets the logger handed to every component the container builds.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Container) { c.logger = logger }
}

// NewContainer creates a DI container with the provided cache configuration.
func NewContainer(config cache.Config, opts ...Option) (*Container, error) {
	cacheService, err := cache.NewCacheService(config)
	if err != nil {
		return nil, err
	}

	c := &Container{
		cacheService:  cacheService,
		keySerializer: cache.NewDefaultKeySerializer(),
		config:        config,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewContainerWithDefaults creates a DI container using default cache
// configuration.
func NewContainerWithDefaults(opts ...Option) (*Container, error) {
	return NewContainer(cache.DefaultConfig(), opts...)
}

// CacheService returns the singleton cache service instance.
func (c *Container) CacheService() cache.CacheService {
	return c.cacheService
}

// KeySerializer returns the singleton key serializer instance.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Config returns a copy of the cache configuration used by this container.
func (c *Container) Config() cache.Config {
	return c.config
}

// NewUnitOfWork creates a unit of work over db, wired with the container's
// logger.
func (c *Container) NewUnitOfWork(db *bun.DB, opts ...uow.Option) *uow.UnitOfWork {
	opts = append([]uow.Option{uow.WithLogger(c.logger)}, opts...)
	return uow.New(db, opts...)
}

// NewRepository creates a base repository over db.
//
// Since Go methods cannot have type parameters, the repository factories are
// package-level functions: NewRepository[*User](container, db, handlers).
func NewRepository[T any](container *Container, db bun.IDB, handlers repository.ModelHandlers[T]) (repository.Repository[T], error) {
	return repository.New(db, handlers, repository.WithLogger[T](container.logger))
}

// NewCachedRepository wraps base with the container's cache service and key
// serializer.
func NewCachedRepository[T any](container *Container, base repository.Repository[T]) *repositorycache.CachedRepository[T] {
	return repositorycache.New(base, container.cacheService, container.keySerializer,
		repositorycache.WithLogger[T](container.logger))
}

// NewCachedBunRepository builds the base repository and decorates it in one
// step.
func NewCachedBunRepository[T any](container *Container, db bun.IDB, handlers repository.ModelHandlers[T]) (*repositorycache.CachedRepository[T], error) {
	base, err := NewRepository(container, db, handlers)
	if err != nil {
		return nil, err
	}
	return NewCachedRepository(container, base), nil
}
