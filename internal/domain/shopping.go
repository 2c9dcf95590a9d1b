package domain

// ShoppingListItem represents one line a user wants to buy.
// Quantity and unit are optional free-form hints; absence means
// "one of whatever the product's natural unit is".
type ShoppingListItem struct {
	Item     string   `json:"item" binding:"required"`
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     string   `json:"unit,omitempty"`
}

// ProductCandidate is a discounted product returned by search that might
// satisfy a shopping-list item. Retrieval identity (ID) never changes;
// ConfidenceScore/IsExactMatch are assigned by the filter stage and
// QuantityMultiplier by the reconciliation stage.
type ProductCandidate struct {
	ID                       string  `json:"id"`
	ProductName              string  `json:"product_name"`
	StoreID                  string  `json:"store_id"`
	Country                  string  `json:"country"`
	DiscountPercent          int     `json:"discount_percent"`
	PriceBeforeDiscountLocal float64 `json:"price_before_discount_local"`
	CurrencyLocal            string  `json:"currency_local"`
	Quantity                 string  `json:"quantity"`
	PageNumber               int     `json:"page_number"`
	SimilarityScore          float64 `json:"similarity_score"`
	RequiresLoyaltyCard      bool    `json:"requires_loyalty_card"`
	ConfidenceScore          float64 `json:"confidence_score,omitempty"`
	IsExactMatch             bool    `json:"is_exact_match,omitempty"`
	QuantityMultiplier       float64 `json:"quantity_multiplier,omitempty"`
}

// MatchedProduct pairs a shopping-list item with its confirmed candidates,
// ordered best-first. The list is never empty: items without surviving
// candidates are reported as unmatched instead.
type MatchedProduct struct {
	ShoppingListItem ShoppingListItem   `json:"shopping_list_item"`
	MatchedProducts  []ProductCandidate `json:"matched_products"`
}

// MatchRequest is the body of a shopping-list matching request.
type MatchRequest struct {
	ShoppingList      []ShoppingListItem `json:"shopping_list" binding:"required"`
	Country           string             `json:"country,omitempty"`
	StoreIDs          []string           `json:"store_ids,omitempty"`
	MaxResultsPerItem int                `json:"max_results_per_item,omitempty"`
	DiscountLanguage  string             `json:"discount_language,omitempty"`
}

// MatchResponse is the result of matching a shopping list against current
// discounts. TotalPotentialSavingsByCurrency is only populated when savings
// totals are enabled in configuration.
type MatchResponse struct {
	Matches                         []MatchedProduct   `json:"matches"`
	UnmatchedItems                  []string           `json:"unmatched_items"`
	TotalPotentialSavingsByCurrency map[string]float64 `json:"total_potential_savings_by_currency,omitempty"`
	ProcessingTimeMs                int64              `json:"processing_time_ms"`
}

// SearchFilters restricts a product search to currently valid products in a
// country and/or set of stores.
type SearchFilters struct {
	Country    string
	StoreIDs   []string
	MaxResults int
}
