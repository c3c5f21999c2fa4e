package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultScoreTTL bounds how long a cached relevance score may serve reads.
const DefaultScoreTTL = 30 * time.Minute

const scoreCacheShards = 16

type scoreEntry struct {
	score    float64
	cachedAt time.Time
}

type scoreCacheShard struct {
	mu     sync.RWMutex
	byUser map[uuid.UUID]map[uuid.UUID]scoreEntry
}

// ScoreCache is the process-wide (user, moment) -> score store with TTL
// semantics. Writes are last-writer-wins upserts; cached scores are advisory,
// so overlapping requests need no coordination beyond the shard locks.
type ScoreCache struct {
	ttl    time.Duration
	shards [scoreCacheShards]*scoreCacheShard
	now    func() time.Time
}

func NewScoreCache(ttl time.Duration) *ScoreCache {
	if ttl <= 0 {
		ttl = DefaultScoreTTL
	}
	c := &ScoreCache{ttl: ttl, now: time.Now}
	for i := range c.shards {
		c.shards[i] = &scoreCacheShard{byUser: map[uuid.UUID]map[uuid.UUID]scoreEntry{}}
	}
	return c
}

func (c *ScoreCache) shardFor(userID uuid.UUID) *scoreCacheShard {
	return c.shards[int(userID[0])%scoreCacheShards]
}

// Get returns the cached score for (userID, momentID) if it is younger than
// the TTL.
func (c *ScoreCache) Get(userID, momentID uuid.UUID) (float64, bool) {
	shard := c.shardFor(userID)
	shard.mu.RLock()
	entry, ok := shard.byUser[userID][momentID]
	shard.mu.RUnlock()
	if !ok {
		return 0, false
	}
	if c.now().Sub(entry.cachedAt) >= c.ttl {
		return 0, false
	}
	return entry.score, true
}

func (c *ScoreCache) Put(userID, momentID uuid.UUID, score float64) {
	shard := c.shardFor(userID)
	shard.mu.Lock()
	user, ok := shard.byUser[userID]
	if !ok {
		user = map[uuid.UUID]scoreEntry{}
		shard.byUser[userID] = user
	}
	user[momentID] = scoreEntry{score: score, cachedAt: c.now()}
	shard.mu.Unlock()
}

// ClearUser drops every cached score for one user.
func (c *ScoreCache) ClearUser(userID uuid.UUID) {
	shard := c.shardFor(userID)
	shard.mu.Lock()
	delete(shard.byUser, userID)
	shard.mu.Unlock()
}

// ClearAll drops the whole cache.
func (c *ScoreCache) ClearAll() {
	for _, shard := range c.shards {
		shard.mu.Lock()
		shard.byUser = map[uuid.UUID]map[uuid.UUID]scoreEntry{}
		shard.mu.Unlock()
	}
}

// EvictMoment drops a single moment's scores for every user. Used when a
// moment is deleted or its caption edited, so a stale score never outlives
// the content it described.
func (c *ScoreCache) EvictMoment(momentID uuid.UUID) {
	for _, shard := range c.shards {
		shard.mu.Lock()
		for _, user := range shard.byUser {
			delete(user, momentID)
		}
		shard.mu.Unlock()
	}
}
