package api

import (
	"os"
	"strconv"
	"sync"

	"github.com/fitscore/fitscore/pkg/lcia"
	"github.com/fitscore/fitscore/pkg/scoring"
)

var _ scoring.PlanCache = (*PlanCache)(nil)

// PlanCache is a thread-safe LRU cache of prepared scoring plans, one per
// weighting scheme.
type PlanCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[lcia.WeightingSchemeID]*scoring.Plan
	order   []lcia.WeightingSchemeID // oldest first
}

// NewPlanCache creates a cache with the given maximum number of entries.
// If maxSize <= 0, it defaults to 8.
func NewPlanCache(maxSize int) *PlanCache {
	if maxSize <= 0 {
		maxSize = 8
	}
	return &PlanCache{
		maxSize: maxSize,
		entries: make(map[lcia.WeightingSchemeID]*scoring.Plan),
	}
}

// NewPlanCacheFromEnv creates a cache with size from FITSCORE_PLAN_CACHE_SIZE.
func NewPlanCacheFromEnv() *PlanCache {
	size := 8
	if v := os.Getenv("FITSCORE_PLAN_CACHE_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			size = parsed
		}
	}
	return NewPlanCache(size)
}

// Get retrieves a plan from the cache, or nil if not found.
func (c *PlanCache) Get(scheme lcia.WeightingSchemeID) *scoring.Plan {
	c.mu.Lock()
	defer c.mu.Unlock()

	plan, ok := c.entries[scheme]
	if !ok {
		return nil
	}

	// Move to end (most recently used)
	c.moveToEnd(scheme)
	return plan
}

// Put adds a plan to the cache, evicting the oldest if full.
func (c *PlanCache) Put(scheme lcia.WeightingSchemeID, plan *scoring.Plan) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[scheme]; ok {
		c.entries[scheme] = plan
		c.moveToEnd(scheme)
		return
	}

	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[scheme] = plan
	c.order = append(c.order, scheme)
}

// Purge drops every plan. Call it after the dataset changes.
func (c *PlanCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[lcia.WeightingSchemeID]*scoring.Plan)
	c.order = nil
}

// Len returns the number of cached plans.
func (c *PlanCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *PlanCache) moveToEnd(scheme lcia.WeightingSchemeID) {
	for i, k := range c.order {
		if k == scheme {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, scheme)
			return
		}
	}
}
