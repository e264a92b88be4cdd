package cache

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Cache is a weighted LRU cache whose entries also expire after a per entry
// time to live.
type Cache[K comparable, V any] interface {
	// GetWeight returns the current weight of the cache.
	GetWeight() int

	// GetBudget returns the weight budget of the cache.
	GetBudget() int

	// Insert adds or replaces the value for key. A ttl of zero never expires.
	Insert(key K, value V, weight int, ttl time.Duration)

	// Retrieve returns the live value for key, if present.
	Retrieve(key K) (V, bool)

	// Delete removes key, if present.
	Delete(key K)

	// Clear removes every entry.
	Clear()
}

type cacheNode[K comparable, V any] struct {
	next      *cacheNode[K, V]
	prev      *cacheNode[K, V]
	key       K
	value     V
	weight    int
	expiresAt time.Time
}

func (n *cacheNode[K, V]) expired(now time.Time) bool {
	return !n.expiresAt.IsZero() && !now.Before(n.expiresAt)
}

type cache[K comparable, V any] struct {
	log *logrus.Entry
	now func() time.Time

	mu     sync.Mutex
	head   *cacheNode[K, V]
	tail   *cacheNode[K, V]
	lookup map[K]*cacheNode[K, V]
	weight int
	budget int
}

// NewCache returns a cache that evicts least recently used entries once the
// total weight exceeds budget.
func NewCache[K comparable, V any](budget int) Cache[K, V] {
	return newCache[K, V](budget, time.Now)
}

func newCache[K comparable, V any](budget int, now func() time.Time) *cache[K, V] {
	return &cache[K, V]{
		log:    logrus.StandardLogger().WithField("type", "cache"),
		now:    now,
		lookup: make(map[K]*cacheNode[K, V]),
		budget: budget,
	}
}

func (c *cache[K, V]) GetWeight() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.weight
}

func (c *cache[K, V]) GetBudget() int {
	return c.budget
}

func (c *cache[K, V]) Insert(key K, value V, weight int, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.lookup[key]; ok {
		c.remove(existing)
	}

	node := &cacheNode[K, V]{
		key:    key,
		value:  value,
		weight: weight,
	}
	if ttl > 0 {
		node.expiresAt = c.now().Add(ttl)
	}

	c.pushFront(node)
	c.lookup[key] = node
	c.weight += weight

	for c.weight > c.budget && c.tail != nil {
		evicted := c.tail
		c.remove(evicted)

		c.log.WithFields(logrus.Fields{
			"key":          evicted.key,
			"weight":       evicted.weight,
			"spare_weight": c.budget - c.weight,
		}).Trace("evicted cache entry")
	}
}

func (c *cache[K, V]) Retrieve(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V

	node, ok := c.lookup[key]
	if !ok {
		return zero, false
	}

	if node.expired(c.now()) {
		c.remove(node)
		return zero, false
	}

	if node != c.head {
		c.unlink(node)
		c.pushFront(node)
	}

	return node.value, true
}

func (c *cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.lookup[key]; ok {
		c.remove(node)
	}
}

func (c *cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.head = nil
	c.tail = nil
	c.lookup = make(map[K]*cacheNode[K, V])
	c.weight = 0
}

func (c *cache[K, V]) pushFront(node *cacheNode[K, V]) {
	node.prev = nil
	node.next = c.head
	if c.head != nil {
		c.head.prev = node
	}
	c.head = node
	if c.tail == nil {
		c.tail = node
	}
}

func (c *cache[K, V]) unlink(node *cacheNode[K, V]) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		c.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		c.tail = node.prev
	}
	node.next = nil
	node.prev = nil
}

func (c *cache[K, V]) remove(node *cacheNode[K, V]) {
	c.unlink(node)
	delete(c.lookup, node.key)
	c.weight -= node.weight
}
