package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/gymdesk/backend/internal/models"
)

// SummaryCache keeps computed summaries in Redis. Every tenant has a
// generation counter that is part of each key; a posting bumps the counter,
// which orphans all earlier entries (they age out through their TTL). A
// summary computed across a posting is written under the old generation and
// is never served.
//
// A missing counter is seeded with a time-based value rather than 0, so a
// counter lost to eviction cannot resurrect entries of an earlier life. When
// a bump fails the tenant is marked dirty and bypasses the cache until a
// later bump succeeds.
//
// A nil client disables caching. Redis failures are logged and treated as
// misses.
type SummaryCache struct {
	redis *redis.Client
	ttl   time.Duration
	seed  func() int64

	mu    sync.Mutex
	dirty map[string]bool
}

func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{
		redis: client,
		ttl:   ttl,
		seed:  func() int64 { return time.Now().UnixNano() },
		dirty: make(map[string]bool),
	}
}

func generationKey(tenantID string) string {
	return fmt.Sprintf("cashier:summary-gen:%s", tenantID)
}

func summaryKey(tenantID string, generation int64, start, end string) string {
	return fmt.Sprintf("cashier:summary:%s:%d:%s:%s", tenantID, generation, start, end)
}

func (c *SummaryCache) enabled() bool {
	return c != nil && c.redis != nil
}

func (c *SummaryCache) isDirty(tenantID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty[tenantID]
}

func (c *SummaryCache) setDirty(tenantID string, dirty bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if dirty {
		c.dirty[tenantID] = true
	} else {
		delete(c.dirty, tenantID)
	}
}

// Generation returns the tenant's current cache generation, seeding the
// counter when it does not exist.
func (c *SummaryCache) Generation(ctx context.Context, tenantID string) (int64, error) {
	key := generationKey(tenantID)
	gen, err := c.redis.Get(ctx, key).Int64()
	if err != redis.Nil {
		return gen, err
	}

	seed := c.seed()
	set, err := c.redis.SetNX(ctx, key, seed, 0).Result()
	if err != nil {
		return 0, err
	}
	if set {
		return seed, nil
	}
	// another instance seeded it first
	return c.redis.Get(ctx, key).Int64()
}

// bump moves the tenant to a new generation. A counter that INCR had to
// create is reseeded away from the low values an earlier life used.
func (c *SummaryCache) bump(ctx context.Context, tenantID string) (int64, error) {
	key := generationKey(tenantID)
	gen, err := c.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if gen == 1 {
		gen = c.seed()
		if err := c.redis.Set(ctx, key, gen, 0).Err(); err != nil {
			return 0, err
		}
	}
	return gen, nil
}

// Get looks up a summary. The returned generation must be passed to Put; it
// is negative when the generation could not be established, and Put then
// skips the write.
func (c *SummaryCache) Get(ctx context.Context, tenantID, start, end string) (*models.Summary, int64, bool) {
	if !c.enabled() {
		return nil, -1, false
	}

	var (
		gen int64
		err error
	)
	if c.isDirty(tenantID) {
		gen, err = c.bump(ctx, tenantID)
		if err != nil {
			log.Printf("[REPORT] summary cache still dirty for %s, bypassing: %v", tenantID, err)
			return nil, -1, false
		}
		c.setDirty(tenantID, false)
	} else {
		gen, err = c.Generation(ctx, tenantID)
		if err != nil {
			log.Printf("[REPORT] summary cache unavailable for %s: %v", tenantID, err)
			return nil, -1, false
		}
	}

	data, err := c.redis.Get(ctx, summaryKey(tenantID, gen, start, end)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[REPORT] summary cache read failed for %s: %v", tenantID, err)
		}
		return nil, gen, false
	}

	var summary models.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		log.Printf("[REPORT] discarding corrupt cached summary for %s: %v", tenantID, err)
		return nil, gen, false
	}
	return &summary, gen, true
}

func (c *SummaryCache) Put(ctx context.Context, generation int64, summary *models.Summary) {
	if !c.enabled() || generation < 0 || c.isDirty(summary.TenantID) {
		return
	}

	data, err := json.Marshal(summary)
	if err != nil {
		log.Printf("[REPORT] failed to encode summary for cache: %v", err)
		return
	}

	key := summaryKey(summary.TenantID, generation, summary.StartDate, summary.EndDate)
	if err := c.redis.Set(ctx, key, string(data), c.ttl).Err(); err != nil {
		log.Printf("[REPORT] summary cache write failed for %s: %v", summary.TenantID, err)
	}
}

// Invalidate drops every cached summary of the tenant. If Redis cannot be
// reached the tenant bypasses the cache until the next successful bump.
func (c *SummaryCache) Invalidate(ctx context.Context, tenantID string) {
	if !c.enabled() {
		return
	}
	if _, err := c.bump(ctx, tenantID); err != nil {
		c.setDirty(tenantID, true)
		log.Printf("[REPORT] summary cache invalidation failed for %s, bypassing until it succeeds: %v", tenantID, err)
		return
	}
	c.setDirty(tenantID, false)
}
