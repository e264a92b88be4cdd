package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCache_InsertWithinBudget(t *testing.T) {
	c := NewCache[string, string](3)
	c.Insert("A", "valueA", 1, 0)
	c.Insert("B", "valueB", 1, 0)
	c.Insert("C", "valueC", 1, 0)

	assert.Equal(t, 3, c.GetWeight())
	assert.Equal(t, 3, c.GetBudget())

	for _, key := range []string{"A", "B", "C"} {
		value, ok := c.Retrieve(key)
		require.True(t, ok)
		assert.Equal(t, "value"+key, value)
	}
}

func TestCache_InsertReplaces(t *testing.T) {
	c := NewCache[string, int](10)
	c.Insert("A", 1, 2, 0)
	c.Insert("A", 2, 3, 0)

	value, ok := c.Retrieve("A")
	require.True(t, ok)
	assert.Equal(t, 2, value)
	assert.Equal(t, 3, c.GetWeight())
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache[string, string](2)
	c.Insert("evicted", "valueEvicted", 1, 0)
	c.Insert("A", "valueA", 1, 0)
	c.Insert("B", "valueB", 1, 0)

	assert.Equal(t, 2, c.GetWeight())

	_, ok := c.Retrieve("evicted")
	assert.False(t, ok)

	_, ok = c.Retrieve("A")
	assert.True(t, ok)
	_, ok = c.Retrieve("B")
	assert.True(t, ok)
}

func TestCache_EvictsLeastRecentlyRetrieved(t *testing.T) {
	c := NewCache[string, string](2)
	c.Insert("A", "valueA", 1, 0)
	c.Insert("B", "valueB", 1, 0)

	// Accessing A leaves B as the least recently used entry
	_, ok := c.Retrieve("A")
	require.True(t, ok)

	c.Insert("C", "valueC", 1, 0)

	_, ok = c.Retrieve("B")
	assert.False(t, ok)
	_, ok = c.Retrieve("A")
	assert.True(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	clock := &testClock{now: time.Unix(1700000000, 0)}
	c := newCache[string, string](10, clock.Now)

	c.Insert("short", "a", 1, time.Minute)
	c.Insert("forever", "b", 1, 0)

	clock.Advance(59 * time.Second)
	_, ok := c.Retrieve("short")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = c.Retrieve("short")
	assert.False(t, ok)
	assert.Equal(t, 1, c.GetWeight())

	clock.Advance(24 * time.Hour)
	value, ok := c.Retrieve("forever")
	assert.True(t, ok)
	assert.Equal(t, "b", value)
}

func TestCache_DeleteAndClear(t *testing.T) {
	c := NewCache[string, string](10)
	c.Insert("A", "valueA", 1, 0)
	c.Insert("B", "valueB", 1, 0)

	c.Delete("A")
	c.Delete("missing")
	_, ok := c.Retrieve("A")
	assert.False(t, ok)
	assert.Equal(t, 1, c.GetWeight())

	c.Clear()
	_, ok = c.Retrieve("B")
	assert.False(t, ok)
	assert.Equal(t, 0, c.GetWeight())
}

func TestCache_Concurrency(t *testing.T) {
	c := NewCache[string, int](50)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("%d-%d", worker, j%20)
				c.Insert(key, j, 1, time.Minute)
				c.Retrieve(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.GetWeight(), c.GetBudget())
}
