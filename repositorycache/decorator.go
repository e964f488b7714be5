package repositorycache

import (
	"context"
	"reflect"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-repository-kit/cache"
	"github.com/goliatone/go-repository-kit/repository"
)

// Interface assertion to ensure CachedRepository implements Repository[T].
var _ repository.Repository[any] = (*CachedRepository[any])(nil)

// CachedRepository decorates a base repository with read-through caching and
// write-triggered invalidation. It holds the wrapped repository by
// composition and forwards every call, so it works over any Repository[T]
// implementation.
type CachedRepository[T any] struct {
	base          repository.Repository[T]
	cache         cache.CacheService
	keySerializer cache.KeySerializer

	// keyRegistry holds every key this instance has ever issued. It drives
	// invalidation only; a registered key may have already expired or been
	// evicted from the cache.
	keyRegistry *xsync.MapOf[string, struct{}]

	namespace string
	logger    zerolog.Logger
	closeOnce sync.Once
}

// Option configures a CachedRepository at construction time.
type Option[T any] func(*CachedRepository[T])

// WithLogger replaces the default no-op logger.
func WithLogger[T any](logger zerolog.Logger) Option[T] {
	return func(c *CachedRepository[T]) { c.logger = logger }
}

// New creates a CachedRepository that wraps base with caching. Keys are
// namespaced by the entity type name so decorators sharing one cache backend
// cannot collide.
func New[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer, opts ...Option[T]) *CachedRepository[T] {
	c := &CachedRepository[T]{
		base:          base,
		cache:         cacheService,
		keySerializer: keySerializer,
		keyRegistry:   xsync.NewMapOf[string, struct{}](),
		namespace:     typeNamespace[T](),
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetByID retrieves a record by identity, with caching. A nil result is
// cached too, so repeated lookups of absent data do not hit the store.
func (c *CachedRepository[T]) GetByID(ctx context.Context, id any) (T, error) {
	key := c.key("GetByID", id)
	if cached, ok := cache.TryGet[T](ctx, c.cache, key); ok {
		return cached, nil
	}
	record, err := c.base.GetByID(ctx, id)
	if err != nil {
		return record, err
	}
	c.cache.Set(ctx, key, record)
	return record, nil
}

// GetAll retrieves every record, with caching.
func (c *CachedRepository[T]) GetAll(ctx context.Context) ([]T, error) {
	key := c.key("GetAll")
	if cached, ok := cache.TryGet[[]T](ctx, c.cache, key); ok {
		return cached, nil
	}
	records, err := c.base.GetAll(ctx)
	if err != nil {
		return records, err
	}
	c.cache.Set(ctx, key, records)
	return records, nil
}

// Find retrieves records matching the predicate, with caching. The predicate
// serializes by function pointer, so distinct closures produce distinct keys
// even when they express the same filter; that approximation costs extra
// misses, never stale hits. Empty result sets are cached.
func (c *CachedRepository[T]) Find(ctx context.Context, predicate repository.SelectCriteria) ([]T, error) {
	if predicate == nil {
		// Fail fast before a key is derived for a caller error.
		return nil, repository.ErrNilPredicate
	}
	key := c.key("Find", predicate)
	if cached, ok := cache.TryGet[[]T](ctx, c.cache, key); ok {
		return cached, nil
	}
	records, err := c.base.Find(ctx, predicate)
	if err != nil {
		return records, err
	}
	c.cache.Set(ctx, key, records)
	return records, nil
}

// Count returns the total row count, with caching. A count of zero is
// deliberately not cached: a just-created collection should not lock in a
// zero total for a full TTL.
func (c *CachedRepository[T]) Count(ctx context.Context) (int, error) {
	key := c.key("Count")
	if cached, ok := cache.TryGet[int](ctx, c.cache, key); ok {
		return cached, nil
	}
	count, err := c.base.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		c.cache.Set(ctx, key, count)
	}
	return count, nil
}

// GetPaged retrieves an offset page, with caching.
func (c *CachedRepository[T]) GetPaged(ctx context.Context, pageIndex, pageSize int, criteria ...repository.SelectCriteria) (*repository.PaginatedList[T], error) {
	key := c.key("GetPaged", pageIndex, pageSize, criteria)
	if cached, ok := cache.TryGet[*repository.PaginatedList[T]](ctx, c.cache, key); ok {
		return cached, nil
	}
	page, err := c.base.GetPaged(ctx, pageIndex, pageSize, criteria...)
	if err != nil {
		return nil, err
	}
	c.cache.Set(ctx, key, page)
	return page, nil
}

// GetPagedByCursor retrieves a cursor page, with caching.
func (c *CachedRepository[T]) GetPagedByCursor(ctx context.Context, lastCursor any, pageSize int, criteria ...repository.SelectCriteria) (*repository.CursorPaginatedList[T], error) {
	key := c.key("GetPagedByCursor", lastCursor, pageSize, criteria)
	if cached, ok := cache.TryGet[*repository.CursorPaginatedList[T]](ctx, c.cache, key); ok {
		return cached, nil
	}
	page, err := c.base.GetPagedByCursor(ctx, lastCursor, pageSize, criteria...)
	if err != nil {
		return nil, err
	}
	c.cache.Set(ctx, key, page)
	return page, nil
}

// Add delegates to the base repository and invalidates on success.
func (c *CachedRepository[T]) Add(ctx context.Context, record T) (T, error) {
	result, err := c.base.Add(ctx, record)
	if err == nil {
		c.invalidateAll(ctx)
	}
	return result, err
}

// AddRange delegates to the base repository and invalidates on success.
func (c *CachedRepository[T]) AddRange(ctx context.Context, records []T) (int64, error) {
	affected, err := c.base.AddRange(ctx, records)
	if err == nil {
		c.invalidateAll(ctx)
	}
	return affected, err
}

// Update delegates to the base repository and invalidates on success.
func (c *CachedRepository[T]) Update(ctx context.Context, record T) (T, error) {
	result, err := c.base.Update(ctx, record)
	if err == nil {
		c.invalidateAll(ctx)
	}
	return result, err
}

// Remove delegates to the base repository and invalidates on success.
func (c *CachedRepository[T]) Remove(ctx context.Context, record T) error {
	err := c.base.Remove(ctx, record)
	if err == nil {
		c.invalidateAll(ctx)
	}
	return err
}

// RemoveRange delegates to the base repository and invalidates on success.
func (c *CachedRepository[T]) RemoveRange(ctx context.Context, records []T) error {
	err := c.base.RemoveRange(ctx, records)
	if err == nil {
		c.invalidateAll(ctx)
	}
	return err
}

// SoftDelete delegates to the base repository and invalidates on success.
// Soft deletes sweep the full registry like every other write: a flagged row
// changes list, page and count results just as a hard delete does.
func (c *CachedRepository[T]) SoftDelete(ctx context.Context, record T) error {
	err := c.base.SoftDelete(ctx, record)
	if err == nil {
		c.invalidateAll(ctx)
	}
	return err
}

// Undelete delegates to the base repository and invalidates on success.
func (c *CachedRepository[T]) Undelete(ctx context.Context, record T) error {
	err := c.base.Undelete(ctx, record)
	if err == nil {
		c.invalidateAll(ctx)
	}
	return err
}

// SetErrorHandler forwards to the wrapped repository.
func (c *CachedRepository[T]) SetErrorHandler(handler repository.ErrorHandler) {
	c.base.SetErrorHandler(handler)
}

// Handlers forwards to the wrapped repository.
func (c *CachedRepository[T]) Handlers() repository.ModelHandlers[T] {
	return c.base.Handlers()
}

// Close releases the cache resource exactly once. The wrapped repository's
// store handle is owned elsewhere and is left untouched.
func (c *CachedRepository[T]) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.cache.Close()
	})
	return err
}

// key derives the namespaced cache key for an operation and registers it.
func (c *CachedRepository[T]) key(method string, args ...any) string {
	key := c.namespace + cache.KeySeparator + c.keySerializer.SerializeKey(method, args...)
	c.keyRegistry.Store(key, struct{}{})
	return key
}

// invalidateAll sweeps every key this instance has ever issued and clears the
// registry. Keys are not indexed by the entities their results depend on, so
// partial invalidation cannot be done safely; the cold cache after a write is
// the accepted cost. A read that has already missed may re-populate its entry
// after the sweep, leaving a stale value until the next write (bounded
// staleness, one TTL at worst).
func (c *CachedRepository[T]) invalidateAll(ctx context.Context) {
	c.keyRegistry.Range(func(key string, _ struct{}) bool {
		if err := c.cache.Delete(ctx, key); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache invalidation delete failed")
		}
		c.keyRegistry.Delete(key)
		return true
	})
}

// typeNamespace derives the cache namespace from the entity type name.
func typeNamespace[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	return toSnake(name)
}
