package cache

import "context"

// KeySerializer builds a cache key from a method name and the call's
// arguments. Identical logical calls must produce identical keys; the mapping
// is not injective for arguments that have no stable serialization (e.g.
// function criteria), which is an accepted approximation.
type KeySerializer interface {
	SerializeKey(method string, args ...any) string
}

// CacheService is the cache capability the repository decorator depends on.
// Values are stored with the TTL fixed when the service is constructed.
// Close releases the underlying cache resource and must be idempotent.
type CacheService interface {
	TryGet(ctx context.Context, key string) (any, bool)
	Set(ctx context.Context, key string, value any)
	Delete(ctx context.Context, key string) error
	Close() error
}

// TryGet is a type-safe wrapper over CacheService.TryGet. A hit whose value
// is not a T is treated as a miss so a corrupt entry never poisons callers.
func TryGet[T any](ctx context.Context, service CacheService, key string) (T, bool) {
	var zero T
	value, ok := service.TryGet(ctx, key)
	if !ok {
		return zero, false
	}
	typed, ok := value.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
