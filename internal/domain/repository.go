package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Generator defines the interface for JSON-shaped language model completions.
// Implementations must return the raw response text; callers own schema
// validation and treat empty or unparseable output as recoverable.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, temperature float64) ([]byte, error)
}

// Embedder converts query text into a numeric vector representation
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float64, error)
}

// ProductSearcher defines the pluggable product search backend. The
// similarity score scale is backend-defined (vector cosine similarity or
// lexical text match) and is only a relevance hint downstream.
type ProductSearcher interface {
	Search(ctx context.Context, query string, filters SearchFilters) ([]ProductCandidate, error)
}
