// Package typesense implements the lexical product search backend over the
// Typesense REST API. Full-text relevance (_text_match) stands in for the
// similarity score; its scale is backend-defined by contract.
package typesense

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dealhound/backend/internal/domain"
)

// Searcher is a lexical full-text implementation of domain.ProductSearcher.
type Searcher struct {
	httpClient *http.Client
	url        string
	apiKey     string
	collection string
}

// Config contains connection details for a Typesense collection.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// NewSearcher creates a Typesense-backed product searcher.
func NewSearcher(cfg Config) *Searcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Searcher{
		httpClient: &http.Client{Timeout: timeout},
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
	}
}

// searchDocument is the flattened product document indexed in Typesense.
type searchDocument struct {
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
	Found int `json:"found"`
	Hits  []struct {
		Document  searchDocument `json:"document"`
		TextMatch int64          `json:"text_match"`
	} `json:"hits"`
}

// Search runs a filtered full-text query over product names.
func (s *Searcher) Search(ctx context.Context, query string, filters domain.SearchFilters) ([]domain.ProductCandidate, error) {
	maxResults := filters.MaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	params := url.Values{}
	params.Add("q", query)
	params.Add("query_by", "product_name")
	params.Add("filter_by", buildFilterBy(filters, time.Now()))
	params.Add("per_page", fmt.Sprintf("%d", maxResults))
	params.Add("page", "1")
	params.Add("sort_by", "_text_match:desc")

	endpoint := fmt.Sprintf("%s/collections/%s/documents/search?%s", s.url, s.collection, params.Encode())
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-TYPESENSE-API-KEY", s.apiKey)

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

	candidates := make([]domain.ProductCandidate, 0, len(response.Hits))
	for _, hit := range response.Hits {
		d := hit.Document
		candidates = append(candidates, domain.ProductCandidate{
			ID:                       d.ID,
			ProductName:              d.ProductName,
			StoreID:                  d.StoreID,
			Country:                  d.Country,
			DiscountPercent:          d.DiscountPercent,
			PriceBeforeDiscountLocal: d.PriceBeforeDiscountLocal,
			CurrencyLocal:            d.CurrencyLocal,
			Quantity:                 d.Quantity,
			PageNumber:               d.PageNumber,
			SimilarityScore:          float64(hit.TextMatch),
			RequiresLoyaltyCard:      d.RequiresLoyaltyCard,
		})
	}

	return candidates, nil
}

// buildFilterBy renders the validity window plus optional country/store
// restrictions in Typesense filter syntax.
func buildFilterBy(filters domain.SearchFilters, now time.Time) string {
	unix := now.Unix()

	parts := []string{
		fmt.Sprintf("valid_from:<=%d", unix),
		fmt.Sprintf("valid_until:>=%d", unix),
	}

	if filters.Country != "" {
		parts = append(parts, fmt.Sprintf("country:=%s", filters.Country))
	}

	if len(filters.StoreIDs) > 0 {
		storeFilters := make([]string, 0, len(filters.StoreIDs))
		for _, id := range filters.StoreIDs {
			storeFilters = append(storeFilters, fmt.Sprintf("store_id:=%s", id))
		}
		parts = append(parts, "("+strings.Join(storeFilters, " || ")+")")
	}

	return strings.Join(parts, " && ")
}
