package delivery

import (
	"context"
	"fmt"
	"sync"

	"delivery-scheduler-be/internal/constant"
	"delivery-scheduler-be/internal/entity"
	ierr "delivery-scheduler-be/internal/errors"
	"delivery-scheduler-be/internal/pkg/logger"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// PolicyStore is the read side of the schedule policy table
type PolicyStore interface {
	FindByCategory(ctx context.Context, category constant.Category) (*entity.SchedulePolicy, error)
}

// PolicyCache keeps one resolved policy per category with no expiration.
// Entries are dropped only by Invalidate or InvalidateAll.
type PolicyCache struct {
	store  PolicyStore
	logger logger.ILogger

	cache *cache.Cache
	group singleflight.Group

	// generations guards repopulation: a load that started before an invalidation
	// of the same category never writes its result back
	mu          sync.Mutex
	generations map[constant.Category]uint64
}

func NewPolicyCache(store PolicyStore, logger logger.ILogger) *PolicyCache {
	return &PolicyCache{
		store:       store,
		logger:      logger,
		cache:       cache.New(cache.NoExpiration, 0),
		generations: make(map[constant.Category]uint64),
	}
}

// Resolve returns the cached policy, loading it from the store on a miss.
// A degraded store yields the built-in default for the category, which is not cached.
func (c *PolicyCache) Resolve(ctx context.Context, category constant.Category) (entity.SchedulePolicy, error) {
	if !category.IsValid() {
		return entity.SchedulePolicy{}, ierr.NewError("unknown category").
			WithHintf("Category %q does not exist", category).
			Mark(ierr.ErrNotFound)
	}

	c.mu.Lock()
	if cached, found := c.cache.Get(string(category)); found {
		c.mu.Unlock()
		return cached.(entity.SchedulePolicy), nil
	}
	generation := c.generations[category]
	c.mu.Unlock()

	key := fmt.Sprintf("%s:%d", category, generation)
	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		return c.load(ctx, category, generation)
	})
	if err != nil {
		return entity.SchedulePolicy{}, err
	}
	return result.(entity.SchedulePolicy), nil
}

func (c *PolicyCache) load(ctx context.Context, category constant.Category, generation uint64) (entity.SchedulePolicy, error) {
	policy, err := c.store.FindByCategory(ctx, category)
	if err == nil && policy != nil {
		err = ValidatePolicy(*policy)
	}
	if err != nil || policy == nil {
		return c.fallback(category, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[category] == generation {
		c.cache.Set(string(category), *policy, cache.NoExpiration)
	}
	return *policy, nil
}

func (c *PolicyCache) fallback(category constant.Category, cause error) (entity.SchedulePolicy, error) {
	details := map[string]interface{}{"category": category}
	if cause != nil {
		details["error"] = cause.Error()
	}

	policy, ok := entity.DefaultSchedulePolicy(category)
	if !ok {
		c.logger.Error("POLICY_CACHE", "No policy and no built-in default", details)
		return entity.SchedulePolicy{}, ierr.NewError("schedule policy unavailable").
			WithHintf("No cadence policy is available for category %s", category).
			Mark(ierr.ErrPolicyUnavailable)
	}

	c.logger.Warn("POLICY_CACHE", "Using built-in default policy", details)
	return policy, nil
}

// Invalidate drops the cached policy of one category
func (c *PolicyCache) Invalidate(category constant.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[category]++
	c.cache.Delete(string(category))
}

// InvalidateAll drops every cached policy
func (c *PolicyCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, category := range constant.Categories {
		c.generations[category]++
	}
	c.cache.Flush()
}

// Len is the number of cached categories
func (c *PolicyCache) Len() int {
	return c.cache.ItemCount()
}

// PolicyResolver is the read path every date computation goes through
type PolicyResolver interface {
	Resolve(ctx context.Context, category constant.Category) (entity.SchedulePolicy, error)
}

var _ PolicyResolver = (*PolicyCache)(nil)
