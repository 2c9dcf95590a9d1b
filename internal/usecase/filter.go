package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"

	"github.com/dealhound/backend/internal/domain"
)

// filterTemperature keeps the filter/rank call near-deterministic.
const filterTemperature = 0.1

// ItemWithCandidates pairs a shopping-list item with its retrieved,
// deduplicated candidate set ahead of the filter/rank stage.
type ItemWithCandidates struct {
	Item       domain.ShoppingListItem
	Candidates []domain.ProductCandidate
}

// FilterServiceConfig holds configuration for the filter/rank service
type FilterServiceConfig struct {
	EnableDebugLogging bool
}

// FilterService asks the language model to confirm which retrieved
// candidates genuinely match each shopping item, in a single batched call
// for the whole list. Malformed output degrades to an empty result set.
type FilterService struct {
	generator domain.Generator
	debug     bool
}

// NewFilterService creates a new filter/rank service
func NewFilterService(generator domain.Generator, config FilterServiceConfig) *FilterService {
	return &FilterService{
		generator: generator,
		debug:     config.EnableDebugLogging,
	}
}

// filterResponseItem mirrors one entry of the model's JSON array response.
type filterResponseItem struct {
	ShoppingListItem  string `json:"shopping_list_item"`
	MatchedCandidates []struct {
		ID              string  `json:"id"`
		ConfidenceScore float64 `json:"confidence_score"`
		IsExactMatch    bool    `json:"is_exact_match"`
	} `json:"matched_candidates"`
}

// FilterAndRank evaluates every item's candidates in one batched model call,
// merges the returned confidence/exact-match annotations back onto the
// original candidate objects and orders each item's survivors by confidence
// descending (ties keep the model's order). Items whose candidates are all
// rejected are excluded; they surface later as unmatched. Unknown candidate
// ids or item strings in the response are logged and dropped, never fatal.
func (s *FilterService) FilterAndRank(ctx context.Context, items []ItemWithCandidates) []domain.MatchedProduct {
	withCandidates := make([]ItemWithCandidates, 0, len(items))
	for _, it := range items {
		if len(it.Candidates) > 0 {
			withCandidates = append(withCandidates, it)
		}
	}
	if len(withCandidates) == 0 {
		return nil
	}

	candidatesByID := make(map[string]domain.ProductCandidate)
	itemsByText := make(map[string]domain.ShoppingListItem)
	for _, it := range withCandidates {
		itemsByText[it.Item.Item] = it.Item
		for _, c := range it.Candidates {
			candidatesByID[c.ID] = c
		}
	}

	prompt := buildFilterCandidatesPrompt(withCandidates)

	raw, err := s.generator.GenerateJSON(ctx, prompt, filterTemperature)
	if err != nil {
		log.Printf("[FILTER] Batch matching call failed: %v", err)
		return nil
	}

	var response []filterResponseItem
	if err := json.Unmarshal(raw, &response); err != nil {
		log.Printf("[FILTER] Failed to parse batch matching response: %v, raw: %s", err, string(raw))
		return nil
	}

	var matches []domain.MatchedProduct
	for _, entry := range response {
		if len(entry.MatchedCandidates) == 0 {
			continue
		}

		item, ok := itemsByText[entry.ShoppingListItem]
		if !ok {
			log.Printf("[FILTER] Model referenced unknown shopping item %q, dropping entry", entry.ShoppingListItem)
			continue
		}

		var confirmed []domain.ProductCandidate
		for _, mc := range entry.MatchedCandidates {
			candidate, ok := candidatesByID[mc.ID]
			if !ok {
				log.Printf("[FILTER] Model referenced unknown candidate id %q for %q, dropping", mc.ID, entry.ShoppingListItem)
				continue
			}
			candidate.ConfidenceScore = mc.ConfidenceScore
			candidate.IsExactMatch = mc.IsExactMatch
			confirmed = append(confirmed, candidate)
		}

		if len(confirmed) == 0 {
			continue
		}

		sort.SliceStable(confirmed, func(i, j int) bool {
			return confirmed[i].ConfidenceScore > confirmed[j].ConfidenceScore
		})

		matches = append(matches, domain.MatchedProduct{
			ShoppingListItem: item,
			MatchedProducts:  confirmed,
		})
	}

	if s.debug {
		log.Printf("[FILTER] %d of %d items confirmed by model", len(matches), len(withCandidates))
	}

	return matches
}

// filterPromptCandidate is the candidate projection shown to the model.
type filterPromptCandidate struct {
	ID                       string  `json:"id"`
	ProductName              string  `json:"product_name"`
	DiscountPercent          int     `json:"discount_percent"`
	PriceBeforeDiscountLocal float64 `json:"price_before_discount_local"`
	CurrencyLocal            string  `json:"currency_local"`
	Quantity                 string  `json:"quantity"`
	StoreID                  string  `json:"store_id"`
	SimilarityScore          string  `json:"similarity_score"`
	RequiresLoyaltyCard      bool    `json:"requires_loyalty_card"`
}

type filterPromptItem struct {
	ShoppingListItem     string                  `json:"shopping_list_item"`
	ShoppingItemQuantity *float64                `json:"shopping_item_quantity,omitempty"`
	ShoppingItemUnit     string                  `json:"shopping_item_unit,omitempty"`
	Candidates           []filterPromptCandidate `json:"candidates"`
}

func buildFilterCandidatesPrompt(items []ItemWithCandidates) string {
	promptData := make([]filterPromptItem, 0, len(items))
	for _, it := range items {
		candidates := make([]filterPromptCandidate, 0, len(it.Candidates))
		for _, c := range it.Candidates {
			candidates = append(candidates, filterPromptCandidate{
				ID:                       c.ID,
				ProductName:              c.ProductName,
				DiscountPercent:          c.DiscountPercent,
				PriceBeforeDiscountLocal: c.PriceBeforeDiscountLocal,
				CurrencyLocal:            c.CurrencyLocal,
				Quantity:                 c.Quantity,
				StoreID:                  c.StoreID,
				SimilarityScore:          fmt.Sprintf("%.3f", c.SimilarityScore),
				RequiresLoyaltyCard:      c.RequiresLoyaltyCard,
			})
		}
		promptData = append(promptData, filterPromptItem{
			ShoppingListItem:     it.Item.Item,
			ShoppingItemQuantity: it.Item.Quantity,
			ShoppingItemUnit:     it.Item.Unit,
			Candidates:           candidates,
		})
	}

	dataJSON, _ := json.MarshalIndent(promptData, "", "  ")

	return fmt.Sprintf(`
Task: For each shopping list item, find all matching discounted products from the provided candidates.

Here is the list of shopping items and their potential product matches:
%s

Instructions:
1. For each shopping list item, evaluate its candidates to find all that match the item.
2. A match is valid ONLY if the product is a good fit for discounting the shopping list item. Consider all attributes.
3. The 'similarity_score' is a hint, but use your judgment.
4. Reorder the matched candidates so that the best match is the FIRST element in the list. The order of the rest does not matter.
5. If there are multiple candidates that seem equally like the best match, pick the one with the greater discount_percent as the first element.
6. If no candidate is a good match, do not include it in your response.

Output Format (JSON Array):
[
  {
    "shopping_list_item": "The original shopping list item string",
    "matched_candidates": [
      {
        "id": "The id of a chosen candidate product",
        "confidence_score": number (0-100),
        "is_exact_match": boolean
      }
    ]
  }
]
`, dataJSON)
}
