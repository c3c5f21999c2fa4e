package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestScoreCachePutGet(t *testing.T) {
	cache := NewScoreCache(DefaultScoreTTL)
	userID := uuid.New()
	momentID := uuid.New()

	if _, ok := cache.Get(userID, momentID); ok {
		t.Fatal("empty cache should miss")
	}

	cache.Put(userID, momentID, 0.7)
	got, ok := cache.Get(userID, momentID)
	if !ok || got != 0.7 {
		t.Fatalf("Get = (%f, %v), want (0.7, true)", got, ok)
	}

	// Last writer wins.
	cache.Put(userID, momentID, 0.2)
	got, _ = cache.Get(userID, momentID)
	if got != 0.2 {
		t.Fatalf("Get after overwrite = %f, want 0.2", got)
	}
}

func TestScoreCacheTTLExpiry(t *testing.T) {
	cache := NewScoreCache(30 * time.Minute)
	current := time.Now()
	cache.now = func() time.Time { return current }

	userID := uuid.New()
	momentID := uuid.New()
	cache.Put(userID, momentID, 0.9)

	current = current.Add(29 * time.Minute)
	if _, ok := cache.Get(userID, momentID); !ok {
		t.Fatal("entry younger than TTL should hit")
	}

	current = current.Add(2 * time.Minute)
	if _, ok := cache.Get(userID, momentID); ok {
		t.Fatal("entry older than TTL should miss")
	}
}

func TestScoreCacheClearOperations(t *testing.T) {
	cache := NewScoreCache(DefaultScoreTTL)
	userA := uuid.New()
	userB := uuid.New()
	momentID := uuid.New()

	cache.Put(userA, momentID, 0.4)
	cache.Put(userB, momentID, 0.6)

	cache.ClearUser(userA)
	if _, ok := cache.Get(userA, momentID); ok {
		t.Fatal("cleared user should miss")
	}
	if _, ok := cache.Get(userB, momentID); !ok {
		t.Fatal("other user must survive ClearUser")
	}

	cache.ClearAll()
	if _, ok := cache.Get(userB, momentID); ok {
		t.Fatal("ClearAll should drop everything")
	}
}

func TestScoreCacheEvictMoment(t *testing.T) {
	cache := NewScoreCache(DefaultScoreTTL)
	userA := uuid.New()
	userB := uuid.New()
	deleted := uuid.New()
	kept := uuid.New()

	cache.Put(userA, deleted, 0.8)
	cache.Put(userB, deleted, 0.3)
	cache.Put(userA, kept, 0.5)

	cache.EvictMoment(deleted)

	if _, ok := cache.Get(userA, deleted); ok {
		t.Fatal("evicted moment should miss for user A")
	}
	if _, ok := cache.Get(userB, deleted); ok {
		t.Fatal("evicted moment should miss for user B")
	}
	if _, ok := cache.Get(userA, kept); !ok {
		t.Fatal("unrelated moment must survive eviction")
	}
}
