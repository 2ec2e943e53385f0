package memory

import (
	"sync"

	"github.com/nattawatt/canteen-cancellation/internal/domain"
)

// scheduleCache is the shared shop-state cache the rest of the console
// renders open/closed badges from.
type scheduleCache struct {
	mu        sync.RWMutex
	schedules map[string]domain.ShopSchedule
}

// NewScheduleCache returns an in-memory ScheduleCache.
func NewScheduleCache() domain.ScheduleCache {
	return &scheduleCache{schedules: make(map[string]domain.ShopSchedule)}
}

func (c *scheduleCache) Put(schedule domain.ShopSchedule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schedules[schedule.ShopID] = schedule
}

func (c *scheduleCache) Get(shopID string) (domain.ShopSchedule, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	schedule, ok := c.schedules[shopID]
	return schedule, ok
}

var _ domain.ScheduleCache = (*scheduleCache)(nil)
