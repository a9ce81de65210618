package cache

import (
	"fmt"
	"time"

	"multicurrency/internal/domain"

	"github.com/dgraph-io/ristretto"
)

// RistrettoCurrencyCache keeps recently read currencies keyed by code. Entries
// expire after ttl even when nothing invalidates them.
type RistrettoCurrencyCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

func NewCurrencyCache(maxItems int64, ttl time.Duration) (*RistrettoCurrencyCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * maxItems,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create currency cache failed: %w", err)
	}
	return &RistrettoCurrencyCache{cache: c, ttl: ttl}, nil
}

func (c *RistrettoCurrencyCache) Get(code string) (domain.Currency, bool) {
	if v, ok := c.cache.Get(code); ok {
		cur, ok := v.(domain.Currency)
		return cur, ok
	}
	return domain.Currency{}, false
}

func (c *RistrettoCurrencyCache) Set(cur domain.Currency) {
	if c.ttl > 0 {
		c.cache.SetWithTTL(cur.Code, cur, 1, c.ttl)
		return
	}
	c.cache.Set(cur.Code, cur, 1)
}

func (c *RistrettoCurrencyCache) Invalidate(codes ...string) {
	for _, code := range codes {
		c.cache.Del(code)
	}
}

func (c *RistrettoCurrencyCache) Clear() { c.cache.Clear() }

func (c *RistrettoCurrencyCache) Close() { c.cache.Close() }
