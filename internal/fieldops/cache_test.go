package fieldops

import (
	"fmt"
	"sync"
	"testing"
)

func TestMemoryCachePutGet(t *testing.T) {
	c := NewMemoryCache()
	key := PeriodKey{EquipmentID: "eq-1", Start: "2023-01-01", End: "2023-01-31"}

	if _, ok := c.Get(key); ok {
		t.Fatal("expected miss on empty cache")
	}

	agg := Aggregation{Metrics: EquipmentMetrics{TotalHectares: 12.5}}
	c.Put(key, agg)

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("expected hit after put")
	}
	if got.Metrics.TotalHectares != 12.5 {
		t.Errorf("expected cached total 12.5, got %f", got.Metrics.TotalHectares)
	}
}

func TestMemoryCacheDistinctPeriods(t *testing.T) {
	c := NewMemoryCache()
	january := PeriodKey{EquipmentID: "eq-1", Start: "2023-01-01", End: "2023-01-31"}
	february := PeriodKey{EquipmentID: "eq-1", Start: "2023-02-01", End: "2023-02-28"}

	c.Put(january, Aggregation{Metrics: EquipmentMetrics{TotalHectares: 1}})
	c.Put(february, Aggregation{Metrics: EquipmentMetrics{TotalHectares: 2}})

	if got, _ := c.Get(january); got.Metrics.TotalHectares != 1 {
		t.Errorf("january entry clobbered: %f", got.Metrics.TotalHectares)
	}
	if got, _ := c.Get(february); got.Metrics.TotalHectares != 2 {
		t.Errorf("february entry clobbered: %f", got.Metrics.TotalHectares)
	}
}

func TestMemoryCacheInvalidateSweepsEquipment(t *testing.T) {
	c := NewMemoryCache()
	c.Put(PeriodKey{EquipmentID: "eq-1", Start: "2023-01-01", End: "2023-01-31"}, Aggregation{})
	c.Put(PeriodKey{EquipmentID: "eq-1"}, Aggregation{})
	other := PeriodKey{EquipmentID: "eq-2", Start: "2023-01-01", End: "2023-01-31"}
	c.Put(other, Aggregation{})

	c.Invalidate("eq-1")

	if c.Len() != 1 {
		t.Errorf("expected only the other equipment's entry to survive, got %d", c.Len())
	}
	if _, ok := c.Get(other); !ok {
		t.Error("invalidation removed another equipment's entry")
	}
}

func TestMemoryCacheInvalidateUnknownEquipment(t *testing.T) {
	c := NewMemoryCache()
	c.Put(PeriodKey{EquipmentID: "eq-1"}, Aggregation{})

	c.Invalidate("eq-404")
	if c.Len() != 1 {
		t.Errorf("expected entries untouched, got %d", c.Len())
	}
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	c := NewMemoryCache()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			eq := fmt.Sprintf("eq-%d", w%2)
			for i := 0; i < 100; i++ {
				key := PeriodKey{EquipmentID: eq, Start: fmt.Sprintf("2023-01-%02d", i%28+1)}
				c.Put(key, Aggregation{})
				c.Get(key)
				if i%10 == 0 {
					c.Invalidate(eq)
				}
			}
		}(w)
	}
	wg.Wait()
}
