package cache

import (
	"context"
	"testing"
)

// stubCache returns a canned value for every key.
type stubCache struct {
	value any
	found bool
}

func (s *stubCache) TryGet(ctx context.Context, key string) (any, bool) { return s.value, s.found }
func (s *stubCache) Set(ctx context.Context, key string, value any)    {}
func (s *stubCache) Delete(ctx context.Context, key string) error      { return nil }
func (s *stubCache) Close() error                                      { return nil }

func TestTryGet_Hit(t *testing.T) {
	svc := &stubCache{value: 42, found: true}
	got, ok := TryGet[int](context.Background(), svc, "k")
	if !ok || got != 42 {
		t.Errorf("expected (42, true), got (%d, %v)", got, ok)
	}
}

func TestTryGet_Miss(t *testing.T) {
	svc := &stubCache{found: false}
	if _, ok := TryGet[int](context.Background(), svc, "k"); ok {
		t.Error("expected miss")
	}
}

func TestTryGet_WrongTypeIsMiss(t *testing.T) {
	svc := &stubCache{value: "not an int", found: true}
	if _, ok := TryGet[int](context.Background(), svc, "k"); ok {
		t.Error("a hit of the wrong type must behave like a miss")
	}
}

func TestTryGet_TypedNil(t *testing.T) {
	svc := &stubCache{value: (*string)(nil), found: true}
	got, ok := TryGet[*string](context.Background(), svc, "k")
	if !ok {
		t.Fatal("typed nil is a valid cached value")
	}
	if got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}

	bad := cfg
	bad.Capacity = 0
	if err := bad.Validate(); err == nil {
		t.Error("zero capacity must fail validation")
	}

	bad = cfg
	bad.EvictionPercentage = 101
	if err := bad.Validate(); err == nil {
		t.Error("eviction percentage above 100 must fail validation")
	}
}
