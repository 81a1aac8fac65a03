package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type cachedIssue struct {
	ID     uint   `json:"id"`
	Status string `json:"status"`
}

func newTestCache(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCacheManager(client), mr
}

func TestCacheHelper_SetGet(t *testing.T) {
	cm, _ := newTestCache(t)
	ctx := context.Background()

	want := cachedIssue{ID: 7, Status: "open"}
	if err := cm.Issue.Set(ctx, "id:7", want, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got cachedIssue
	if err := cm.Issue.Get(ctx, "id:7", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != want {
		t.Errorf("Get = %+v, want %+v", got, want)
	}
}

func TestCacheHelper_GetMiss(t *testing.T) {
	cm, _ := newTestCache(t)

	var got cachedIssue
	err := cm.Issue.Get(context.Background(), "id:404", &got)
	if !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("expected ErrCacheNotFound, got %v", err)
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	cm, _ := newTestCache(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return &cachedIssue{ID: 9, Status: "in_progress"}, nil
	}

	var first cachedIssue
	if err := cm.Issue.CacheOrExecute(ctx, "id:9", &first, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}
	if calls != 1 || first.ID != 9 {
		t.Fatalf("fetch calls = %d, first = %+v", calls, first)
	}

	// Background Set is asynchronous; poll until the key lands.
	deadline := time.Now().Add(time.Second)
	for {
		var second cachedIssue
		if err := cm.Issue.Get(ctx, "id:9", &second); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("cached value never appeared")
		}
		time.Sleep(5 * time.Millisecond)
	}

	var second cachedIssue
	if err := cm.Issue.CacheOrExecute(ctx, "id:9", &second, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("fetch ran %d times, want 1 (second read should hit cache)", calls)
	}
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	cm, _ := newTestCache(t)
	ctx := context.Background()

	for _, key := range []string{"list:a", "list:b", "id:1"} {
		if err := cm.Issue.Set(ctx, key, cachedIssue{ID: 1}, time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := cm.Issue.InvalidatePattern(ctx, "list:*"); err != nil {
		t.Fatalf("InvalidatePattern failed: %v", err)
	}

	var got cachedIssue
	if err := cm.Issue.Get(ctx, "list:a", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("list:a should be gone, got %v", err)
	}
	if err := cm.Issue.Get(ctx, "id:1", &got); err != nil {
		t.Errorf("id:1 should survive, got %v", err)
	}
}

func TestCacheManager_NilClientDegradesGracefully(t *testing.T) {
	cm := NewCacheManager(nil)
	ctx := context.Background()

	// Writes are silently dropped without redis
	if err := cm.Issue.Set(ctx, "id:1", cachedIssue{}, time.Minute); err != nil {
		t.Errorf("Set = %v, want nil on missing client", err)
	}
	if err := cm.Issue.Get(ctx, "id:1", &cachedIssue{}); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("Get = %v, want ErrCacheNotAvailable", err)
	}

	// CacheOrExecute falls through to the fetch
	var got cachedIssue
	err := cm.Issue.CacheOrExecute(ctx, "id:1", &got, time.Minute, func() (interface{}, error) {
		return &cachedIssue{ID: 3, Status: "open"}, nil
	})
	if err != nil {
		t.Fatalf("CacheOrExecute failed without redis: %v", err)
	}
	if got.ID != 3 {
		t.Errorf("got = %+v, want fetched value", got)
	}

	if err := cm.HealthCheck(ctx); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("HealthCheck = %v, want ErrCacheNotAvailable", err)
	}
}

func TestInvalidateIssueCache(t *testing.T) {
	cm, _ := newTestCache(t)
	ctx := context.Background()

	if err := cm.Issue.Set(ctx, "id:5", cachedIssue{ID: 5, Status: "open"}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := cm.Issue.Set(ctx, "details:5", cachedIssue{ID: 5, Status: "open"}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	InvalidateIssueCache(ctx, cm, 5)

	var got cachedIssue
	if err := cm.Issue.Get(ctx, "id:5", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("id:5 should be invalidated, got %v", err)
	}
	if err := cm.Issue.Get(ctx, "details:5", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("details:5 should be invalidated, got %v", err)
	}
}
