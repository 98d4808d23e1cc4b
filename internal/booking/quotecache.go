package booking

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"baydelivery/internal/pricing"
)

// DefaultQuoteTTL is how long a computed quote stays actionable. Quotes
// are transient: nothing is persisted until the customer decides, so an
// expired quote simply 404s and the customer recalculates.
const DefaultQuoteTTL = 24 * time.Hour

type CachedQuote struct {
	ID        string
	Request   *pricing.Request
	Breakdown *pricing.Breakdown
	CreatedAt time.Time
}

// QuoteCache holds computed-but-undecided quotes in memory. Mutex-guarded
// map; entries expire after TTL and are swept lazily on access.
type QuoteCache struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]*CachedQuote
}

func NewQuoteCache(ttl time.Duration) *QuoteCache {
	if ttl <= 0 {
		ttl = DefaultQuoteTTL
	}
	return &QuoteCache{ttl: ttl, m: make(map[string]*CachedQuote)}
}

func (c *QuoteCache) Put(req *pricing.Request, b *pricing.Breakdown) *CachedQuote {
	q := &CachedQuote{
		ID:        uuid.NewString(),
		Request:   req,
		Breakdown: b,
		CreatedAt: time.Now(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked()
	c.m[q.ID] = q
	return q
}

func (c *QuoteCache) Get(id string) (*CachedQuote, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.m[id]
	if !ok {
		return nil, false
	}
	if time.Since(q.CreatedAt) > c.ttl {
		delete(c.m, id)
		return nil, false
	}
	return q, true
}

// Delete removes a quote once a request row exists for it.
func (c *QuoteCache) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, id)
}

func (c *QuoteCache) sweepLocked() {
	now := time.Now()
	for id, q := range c.m {
		if now.Sub(q.CreatedAt) > c.ttl {
			delete(c.m, id)
		}
	}
}
