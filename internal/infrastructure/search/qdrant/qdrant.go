// Package qdrant implements the vector product search backend as a minimal
// REST client. Query texts are embedded first, then searched with cosine
// similarity under validity/country/store filters.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dealhound/backend/internal/domain"
)

// Searcher is a vector-search implementation of domain.ProductSearcher.
type Searcher struct {
	httpClient *http.Client
	embedder   domain.Embedder
	url        string
	apiKey     string
	collection string
}

// Config contains connection details for a Qdrant collection.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// NewSearcher creates a Qdrant-backed product searcher.
func NewSearcher(embedder domain.Embedder, cfg Config) *Searcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &Searcher{
		httpClient: &http.Client{Timeout: timeout},
		embedder:   embedder,
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
	}
}

type searchFilterCondition struct {
	Key   string `json:"key"`
	Match *struct {
		Value string   `json:"value,omitempty"`
		Any   []string `json:"any,omitempty"`
	} `json:"match,omitempty"`
	Range *struct {
		GTE *int64 `json:"gte,omitempty"`
		LTE *int64 `json:"lte,omitempty"`
	} `json:"range,omitempty"`
}

type searchRequest struct {
	Vector      []float64 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
	Filter      struct {
		Must []searchFilterCondition `json:"must"`
	} `json:"filter"`
}

// candidatePayload is the product document stored alongside each point.
type candidatePayload struct {
	ID                       string  `json:"id"`
	ProductName              string  `json:"product_name"`
	StoreID                  string  `json:"store_id"`
	Country                  string  `json:"country"`
	DiscountPercent          int     `json:"discount_percent"`
	PriceBeforeDiscountLocal float64 `json:"price_before_discount_local"`
	CurrencyLocal            string  `json:"currency_local"`
	Quantity                 string  `json:"quantity"`
	PageNumber               int     `json:"page_number"`
	RequiresLoyaltyCard      bool    `json:"requires_loyalty_card"`
}

type searchResponse struct {
	Result []struct {
		Score   float64          `json:"score"`
		Payload candidatePayload `json:"payload"`
	} `json:"result"`
}

// Search embeds the query and runs a filtered cosine-similarity search.
// The similarity score is Qdrant's cosine score as-is.
func (s *Searcher) Search(ctx context.Context, query string, filters domain.SearchFilters) ([]domain.ProductCandidate, error) {
	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", domain.ErrSearchBackendFailure, err)
	}

	maxResults := filters.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	reqBody := searchRequest{
		Vector:      vector,
		Limit:       maxResults,
		WithPayload: true,
	}
	reqBody.Filter.Must = buildConditions(filters, time.Now())

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchBackendFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrSearchBackendFailure, resp.StatusCode, string(body))
	}

	var response searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", domain.ErrSearchBackendFailure, err)
	}

	candidates := make([]domain.ProductCandidate, 0, len(response.Result))
	for _, hit := range response.Result {
		p := hit.Payload
		candidates = append(candidates, domain.ProductCandidate{
			ID:                       p.ID,
			ProductName:              p.ProductName,
			StoreID:                  p.StoreID,
			Country:                  p.Country,
			DiscountPercent:          p.DiscountPercent,
			PriceBeforeDiscountLocal: p.PriceBeforeDiscountLocal,
			CurrencyLocal:            p.CurrencyLocal,
			Quantity:                 p.Quantity,
			PageNumber:               p.PageNumber,
			SimilarityScore:          hit.Score,
			RequiresLoyaltyCard:      p.RequiresLoyaltyCard,
		})
	}

	return candidates, nil
}

// buildConditions translates domain filters into Qdrant must-conditions:
// the validity window always applies, country and stores only when given.
func buildConditions(filters domain.SearchFilters, now time.Time) []searchFilterCondition {
	unix := now.Unix()

	validFrom := searchFilterCondition{Key: "valid_from"}
	validFrom.Range = &struct {
		GTE *int64 `json:"gte,omitempty"`
		LTE *int64 `json:"lte,omitempty"`
	}{LTE: &unix}

	validUntil := searchFilterCondition{Key: "valid_until"}
	validUntil.Range = &struct {
		GTE *int64 `json:"gte,omitempty"`
		LTE *int64 `json:"lte,omitempty"`
	}{GTE: &unix}

	conditions := []searchFilterCondition{validFrom, validUntil}

	if filters.Country != "" {
		country := searchFilterCondition{Key: "country"}
		country.Match = &struct {
			Value string   `json:"value,omitempty"`
			Any   []string `json:"any,omitempty"`
		}{Value: filters.Country}
		conditions = append(conditions, country)
	}

	if len(filters.StoreIDs) > 0 {
		stores := searchFilterCondition{Key: "store_id"}
		stores.Match = &struct {
			Value string   `json:"value,omitempty"`
			Any   []string `json:"any,omitempty"`
		}{Any: filters.StoreIDs}
		conditions = append(conditions, stores)
	}

	return conditions
}
