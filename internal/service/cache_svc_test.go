package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCacheServiceWithClient(rdb)
	t.Cleanup(func() { cache.Close() })
	return cache, mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := testCache(t)
	ctx := context.Background()

	data, err := cache.GetVideo(ctx, "vid1")
	if err != nil || data != nil {
		t.Fatalf("empty cache: got %q, %v", data, err)
	}

	payload := map[string]any{"videoID": "vid1"}
	if err := cache.SetVideo(ctx, "vid1", payload); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	data, err = cache.GetVideo(ctx, "vid1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected cached payload after set")
	}
}

func TestCacheInvalidate(t *testing.T) {
	cache, _ := testCache(t)
	ctx := context.Background()

	if err := cache.SetVideo(ctx, "vid1", map[string]any{"videoID": "vid1"}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := cache.InvalidateVideo(ctx, "vid1"); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}

	data, err := cache.GetVideo(ctx, "vid1")
	if err != nil || data != nil {
		t.Errorf("after invalidate: got %q, %v, want nil", data, err)
	}
}

func TestCacheExpiry(t *testing.T) {
	cache, mr := testCache(t)
	ctx := context.Background()

	if err := cache.SetVideo(ctx, "vid1", map[string]any{"videoID": "vid1"}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	mr.FastForward(SegmentCacheTTL + 1)

	data, err := cache.GetVideo(ctx, "vid1")
	if err != nil || data != nil {
		t.Errorf("after TTL: got %q, %v, want nil", data, err)
	}
}

func TestCacheDisabledIsNoOp(t *testing.T) {
	cache := NewCacheService("")
	ctx := context.Background()

	if err := cache.SetVideo(ctx, "vid1", map[string]any{}); err != nil {
		t.Errorf("disabled set: %v", err)
	}
	data, err := cache.GetVideo(ctx, "vid1")
	if err != nil || data != nil {
		t.Errorf("disabled get: %q, %v", data, err)
	}
	if err := cache.InvalidateVideo(ctx, "vid1"); err != nil {
		t.Errorf("disabled invalidate: %v", err)
	}
}
