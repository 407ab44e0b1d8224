package fieldops

import (
	"sync"
)

// PeriodKey identifies one cached aggregation: an equipment and an inclusive
// date range. Empty Start or End means the range is open on that side.
type PeriodKey struct {
	EquipmentID string
	Start       string
	End         string
}

// Aggregation is a cached aggregation result for one period.
type Aggregation struct {
	Cells   []Cell
	Metrics EquipmentMetrics
}

// PartitionCache caches aggregation results per equipment and period.
// Invalidation is explicit: whoever writes new zones for an equipment must
// drop every period that equipment has cached.
type PartitionCache interface {
	Get(key PeriodKey) (Aggregation, bool)
	Put(key PeriodKey, agg Aggregation)
	Invalidate(equipmentID string)
}

// MemoryCache is an in-process PartitionCache safe for concurrent use.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[PeriodKey]Aggregation
}

var _ PartitionCache = (*MemoryCache)(nil)

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[PeriodKey]Aggregation)}
}

func (c *MemoryCache) Get(key PeriodKey) (Aggregation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	agg, ok := c.entries[key]
	return agg, ok
}

func (c *MemoryCache) Put(key PeriodKey, agg Aggregation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = agg
}

// Invalidate drops every cached period of the given equipment. Periods of
// other equipment are untouched.
func (c *MemoryCache) Invalidate(equipmentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key.EquipmentID == equipmentID {
			delete(c.entries, key)
		}
	}
}

// Len reports the number of cached periods.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
