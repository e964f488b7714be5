// Package cache provides the caching interfaces and key serialization used
// by the repository decorator.
//
// CacheService is the minimal capability a backend must offer: TryGet, Set
// with a construction-time TTL, Delete, and an idempotent Close. The default
// implementation (see NewCacheService) is backed by sturdyc via the internal
// cacheinfra adapter.
//
// KeySerializer turns a method name plus its arguments into a stable key:
//
//	serializer := cache.NewDefaultKeySerializer()
//	key := serializer.SerializeKey("GetByID", "user-123")
//
// The default serializer handles pointers, slices, maps (sorted), structs and
// falls back to JSON for everything else. Function arguments serialize by
// pointer and are therefore only stable within a single process; supply a
// custom KeySerializer if keys must survive restarts. Keys longer than
// MaxKeyLength collapse their argument tail to an xxhash digest while keeping
// the method prefix intact.
package cache
