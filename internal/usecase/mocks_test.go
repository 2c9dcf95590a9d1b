package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/dealhound/backend/internal/domain"
)

// stubGenerator returns canned JSON or an error and records prompts.
type stubGenerator struct {
	mu       sync.Mutex
	response []byte
	err      error
	prompts  []string
	calls    int
}

func (g *stubGenerator) GenerateJSON(ctx context.Context, prompt string, temperature float64) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return nil, g.err
	}
	return g.response, nil
}

// stubSearcher maps query text to canned candidates; unknown queries return
// the fallback error if set, otherwise an empty list.
type stubSearcher struct {
	mu      sync.Mutex
	results map[string][]domain.ProductCandidate
	err     error
	queries []string
}

func (s *stubSearcher) Search(ctx context.Context, query string, filters domain.SearchFilters) ([]domain.ProductCandidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	if candidates, ok := s.results[query]; ok {
		return candidates, nil
	}
	if s.err != nil {
		return nil, s.err
	}
	return nil, nil
}

// stubCache is an in-memory CacheRepository without expiration.
type stubCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newStubCache() *stubCache {
	return &stubCache{data: make(map[string][]byte)}
}

func (c *stubCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return value, nil
}

func (c *stubCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *stubCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *stubCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

// candidate builds a minimal product candidate for tests.
func candidate(id, name, currency string, price float64, discount int, quantity string) domain.ProductCandidate {
	return domain.ProductCandidate{
		ID:                       id,
		ProductName:              name,
		StoreID:                  "store-1",
		Country:                  "BG",
		DiscountPercent:          discount,
		PriceBeforeDiscountLocal: price,
		CurrencyLocal:            currency,
		Quantity:                 quantity,
		SimilarityScore:          0.9,
	}
}
