// Package repositorycache decorates a repository with read-through caching.
//
// # Overview
//
// CachedRepository[T] wraps any repository.Repository[T] by composition and
// implements the same interface, so it is a drop-in replacement:
//
//	base, _ := repository.New(db, handlers)
//	svc, _ := cache.NewCacheService(cache.DefaultConfig())
//	cached := repositorycache.New(base, svc, cache.NewDefaultKeySerializer())
//
//	user, err := cached.GetByID(ctx, "user-123") // miss: hits the store
//	user, err = cached.GetByID(ctx, "user-123")  // hit: served from cache
//
// # Read path
//
// GetByID, GetAll, Find, GetPaged, GetPagedByCursor and Count check the cache
// first and fall through to the wrapped repository on a miss, storing the
// result with the service's construction-time TTL. Negative results (nil
// records, empty slices) are cached so absent data does not cause repeated
// store reads; a Count of zero is the one exception and is never cached.
//
// # Write path and invalidation
//
// Add, AddRange, Update, Remove, RemoveRange, SoftDelete and Undelete
// delegate first, then sweep every key this instance has ever issued and
// clear the key registry. The sweep is instance wide rather than targeted
// because keys carry no index of the entities their results depend on:
// correctness is bought with a cold cache after every write.
//
// The registry is a concurrent map, so key registration and the sweep are
// atomic relative to each other. They are not atomic relative to an in-flight
// read that has already missed: such a read may re-populate its entry right
// after a sweep, and that entry stays stale until the next write or TTL
// expiry. This bounded staleness is an accepted property of the design.
//
// # Disposal
//
// Close releases the cache resource exactly once. The wrapped repository's
// store handle is not owned by the decorator and is never touched.
package repositorycache
