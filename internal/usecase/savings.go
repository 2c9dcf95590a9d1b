package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strconv"

	"github.com/dealhound/backend/internal/domain"
)

const savingsTemperature = 0.1

// ReconcileResult carries per-currency savings totals (rounded to 2 decimal
// places after summation) and the matches annotated with quantity
// multipliers.
type ReconcileResult struct {
	SavingsByCurrency map[string]float64
	Matches           []domain.MatchedProduct
}

// SavingsServiceConfig holds configuration for the savings service
type SavingsServiceConfig struct {
	EnableDebugLogging bool
}

// SavingsService reconciles requested quantities against product sale units
// and accumulates potential savings by currency. Matches whose product
// quantity parses unambiguously are computed locally; only ambiguous ones go
// through a single batched model call, keeping model round-trips minimal.
type SavingsService struct {
	generator domain.Generator
	debug     bool
}

// NewSavingsService creates a new savings/reconciliation service
func NewSavingsService(generator domain.Generator, config SavingsServiceConfig) *SavingsService {
	return &SavingsService{
		generator: generator,
		debug:     config.EnableDebugLogging,
	}
}

// Reconcile computes savings for every match. The per-match contribution is
// price_before_discount_local * discount_percent / 100, scaled by the
// quantity multiplier for ambiguous matches. Totals are accumulated first
// and rounded once per currency at the end.
func (s *SavingsService) Reconcile(ctx context.Context, matches []domain.MatchedProduct) ReconcileResult {
	result := ReconcileResult{
		SavingsByCurrency: make(map[string]float64),
		Matches:           matches,
	}
	if len(matches) == 0 {
		return result
	}

	var ambiguousIdx []int
	for i, match := range matches {
		best := &matches[i].MatchedProducts[0]

		// A candidate without a quantity description is treated as one
		// default unit, no conversion attempted.
		if best.Quantity != "" && ParseQuantity(best.Quantity).IsAmbiguous {
			ambiguousIdx = append(ambiguousIdx, i)
			continue
		}

		savings := best.PriceBeforeDiscountLocal * float64(best.DiscountPercent) / 100
		result.SavingsByCurrency[best.CurrencyLocal] += savings

		if s.debug {
			log.Printf("[SAVINGS] Local calculation for %q: %.4f %s",
				match.ShoppingListItem.Item, savings, best.CurrencyLocal)
		}
	}

	if len(ambiguousIdx) > 0 {
		multipliers := s.resolveMultipliers(ctx, matches, ambiguousIdx)
		for _, i := range ambiguousIdx {
			best := &matches[i].MatchedProducts[0]
			best.QuantityMultiplier = multipliers[i]

			savings := best.PriceBeforeDiscountLocal * float64(best.DiscountPercent) / 100 * best.QuantityMultiplier
			result.SavingsByCurrency[best.CurrencyLocal] += savings

			if s.debug {
				log.Printf("[SAVINGS] Model-assisted calculation for %q: multiplier %.2f, %.4f %s",
					matches[i].ShoppingListItem.Item, best.QuantityMultiplier, savings, best.CurrencyLocal)
			}
		}
	}

	for currency, total := range result.SavingsByCurrency {
		result.SavingsByCurrency[currency] = math.Round(total*100) / 100
	}

	return result
}

// multiplierPromptEntry is one ambiguous match shown to the model.
type multiplierPromptEntry struct {
	ID              string   `json:"id"`
	ShoppingItem    string   `json:"shopping_item"`
	ItemQuantity    *float64 `json:"item_quantity,omitempty"`
	ItemUnit        string   `json:"item_unit,omitempty"`
	ProductName     string   `json:"product_name"`
	ProductQuantity string   `json:"product_quantity"`
}

type multiplierResponse struct {
	QuantityCalculations []struct {
		ID                 json.Number `json:"id"`
		QuantityMultiplier float64     `json:"quantity_multiplier"`
	} `json:"quantity_calculations"`
}

// resolveMultipliers asks the model for a quantity multiplier per ambiguous
// match in one batched call. The returned map is keyed by match index and is
// total over ambiguousIdx: any id the model omits, any invalid multiplier
// and a failed or unparseable call all default to exactly 1, never 0.
func (s *SavingsService) resolveMultipliers(ctx context.Context, matches []domain.MatchedProduct, ambiguousIdx []int) map[int]float64 {
	multipliers := make(map[int]float64, len(ambiguousIdx))
	for _, i := range ambiguousIdx {
		multipliers[i] = 1
	}

	entries := make([]multiplierPromptEntry, 0, len(ambiguousIdx))
	for _, i := range ambiguousIdx {
		best := matches[i].MatchedProducts[0]
		quantity := best.Quantity
		if quantity == "" {
			quantity = "1 pcs"
		}
		entries = append(entries, multiplierPromptEntry{
			ID:              strconv.Itoa(i),
			ShoppingItem:    matches[i].ShoppingListItem.Item,
			ItemQuantity:    matches[i].ShoppingListItem.Quantity,
			ItemUnit:        matches[i].ShoppingListItem.Unit,
			ProductName:     best.ProductName,
			ProductQuantity: quantity,
		})
	}

	raw, err := s.generator.GenerateJSON(ctx, buildMultiplierPrompt(entries), savingsTemperature)
	if err != nil {
		log.Printf("[SAVINGS] Quantity multiplier call failed, defaulting multipliers to 1: %v", err)
		return multipliers
	}

	var response multiplierResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		log.Printf("[SAVINGS] Failed to parse quantity multiplier response, defaulting to 1: %v, raw: %s", err, string(raw))
		return multipliers
	}

	for _, calc := range response.QuantityCalculations {
		idx, err := strconv.Atoi(calc.ID.String())
		if err != nil {
			log.Printf("[SAVINGS] Model returned unknown multiplier id %q, dropping", calc.ID.String())
			continue
		}
		if _, ok := multipliers[idx]; !ok {
			log.Printf("[SAVINGS] Model returned multiplier for unrequested id %d, dropping", idx)
			continue
		}
		if calc.QuantityMultiplier > 0 {
			multipliers[idx] = calc.QuantityMultiplier
		}
	}

	return multipliers
}

func buildMultiplierPrompt(entries []multiplierPromptEntry) string {
	dataJSON, _ := json.MarshalIndent(entries, "", "  ")

	return fmt.Sprintf(`
Calculate quantity multipliers. Products are sold per piece/package, not per gram/ml.

Data:
%s

Examples:
- User wants "1 cheese", product is "500g cheese" -> multiplier = 1 (1 package)
- User wants "2 milk", product is "1L milk" -> multiplier = 2 (2 bottles)
- User wants "500g cheese", product is "250g cheese" -> multiplier = 2 (2 packages)

IMPORTANT: Return EXACTLY this JSON structure:
{
  "quantity_calculations": [
    {
      "id": "0",
      "quantity_multiplier": 1
    },
    {
      "id": "1",
      "quantity_multiplier": 2
    }
  ]
}

Never return null for quantity_multiplier - use 1 as default.
`, dataJSON)
}
