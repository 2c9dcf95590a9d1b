package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dealhound/backend/internal/domain"
)

// Translation modes. Dual mode produces discount-language and English
// translations to widen recall; discount-only skips the English variant.
const (
	TranslationModeDual         = "dual"
	TranslationModeDiscountOnly = "discount-only"
)

// TranslationResult holds per-item translations, index-aligned with the
// input items. English is nil in discount-only mode.
type TranslationResult struct {
	DiscountLanguage []string `json:"discountLanguage"`
	English          []string `json:"english,omitempty"`
}

// TranslationServiceConfig holds configuration for the translation service
type TranslationServiceConfig struct {
	Mode               string
	CacheTTL           time.Duration
	EnableDebugLogging bool
}

// TranslationService translates shopping-list items into the discount
// language (and English) in a single batched model call. Any failure
// degrades to identity translation so the pipeline never aborts here.
type TranslationService struct {
	generator domain.Generator
	cache     domain.CacheRepository
	mode      string
	cacheTTL  time.Duration
	debug     bool
}

// NewTranslationService creates a new translation service. The cache is
// optional; pass nil to disable translation caching.
func NewTranslationService(generator domain.Generator, cache domain.CacheRepository, config TranslationServiceConfig) *TranslationService {
	mode := config.Mode
	if mode == "" {
		mode = TranslationModeDual
	}

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	return &TranslationService{
		generator: generator,
		cache:     cache,
		mode:      mode,
		cacheTTL:  cacheTTL,
		debug:     config.EnableDebugLogging,
	}
}

// translationEnvelope mirrors the JSON shape the model is instructed to emit.
type translationEnvelope struct {
	Result TranslationResult `json:"result"`
}

// Translate translates items into the discount language and, in dual mode,
// English. Output slices are index-aligned with the input. The model call is
// batched: one call for the whole list. Count mismatches, API failures and
// unparseable output all fall back to identity translation.
func (s *TranslationService) Translate(ctx context.Context, items []string, discountLanguage string) TranslationResult {
	if len(items) == 0 {
		return TranslationResult{}
	}

	cacheKey := s.cacheKey(items, discountLanguage)
	if cached, ok := s.getCached(ctx, cacheKey); ok {
		return cached
	}

	prompt := buildTranslationPrompt(items, discountLanguage, s.mode == TranslationModeDual)

	raw, err := s.generator.GenerateJSON(ctx, prompt, 0)
	if err != nil {
		log.Printf("[TRANSLATE] Model call failed, using identity translation: %v", err)
		return s.identity(items)
	}

	var envelope translationEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		log.Printf("[TRANSLATE] Malformed model response, using identity translation: %v, raw: %s", err, string(raw))
		return s.identity(items)
	}

	result := envelope.Result
	if err := validateBatchCount(len(items), len(result.DiscountLanguage)); err != nil {
		log.Printf("[TRANSLATE] Discount-language translation %v, using identity translation", err)
		return s.identity(items)
	}
	if s.mode == TranslationModeDual {
		if err := validateBatchCount(len(items), len(result.English)); err != nil {
			log.Printf("[TRANSLATE] English translation %v, using identity translation", err)
			return s.identity(items)
		}
	} else {
		result.English = nil
	}

	s.setCached(ctx, cacheKey, result)

	if s.debug {
		log.Printf("[TRANSLATE] Translated %d items to %s (mode: %s)", len(items), discountLanguage, s.mode)
	}

	return result
}

// identity reuses each original text as its own translation.
func (s *TranslationService) identity(items []string) TranslationResult {
	result := TranslationResult{DiscountLanguage: append([]string(nil), items...)}
	if s.mode == TranslationModeDual {
		result.English = append([]string(nil), items...)
	}
	return result
}

// cacheKey hashes the item list, language and mode so identical requests hit
// the cached translation instead of a paid model call.
func (s *TranslationService) cacheKey(items []string, discountLanguage string) string {
	h := sha256.Sum256([]byte(s.mode + "|" + discountLanguage + "|" + strings.Join(items, "\x00")))
	return "translation:" + hex.EncodeToString(h[:])
}

func (s *TranslationService) getCached(ctx context.Context, key string) (TranslationResult, bool) {
	if s.cache == nil {
		return TranslationResult{}, false
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return TranslationResult{}, false
	}

	var result TranslationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return TranslationResult{}, false
	}

	if s.debug {
		log.Printf("[TRANSLATE] Cache hit for %s", key)
	}
	return result, true
}

func (s *TranslationService) setCached(ctx context.Context, key string, result TranslationResult) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		log.Printf("[TRANSLATE] Failed to cache translation: %v", err)
	}
}

// buildTranslationPrompt builds the batched translation prompt. The model
// must return arrays equal in length to the input and in the same order.
func buildTranslationPrompt(items []string, discountLanguage string, includeEnglish bool) string {
	itemsJSON, _ := json.Marshal(items)

	var b strings.Builder
	fmt.Fprintf(&b, "Task: Translate the following shopping list items into the \"discount language\"")
	if includeEnglish {
		b.WriteString(" and into English")
	}
	b.WriteString(".\n\n")
	fmt.Fprintf(&b, "Shopping List Items:\n%s\n\n", itemsJSON)
	fmt.Fprintf(&b, "Discount Language: %s\n\n", discountLanguage)
	b.WriteString("Instructions:\n")
	b.WriteString("1. Translate each item in the shopping list into the specified discount language\n")
	if includeEnglish {
		b.WriteString("2. Translate each item in the shopping list into English\n")
	}
	b.WriteString("3. Maintain the exact same order as the input items\n")
	b.WriteString("4. Return exactly the same number of translations as input items\n")
	b.WriteString("5. Use the exact JSON format specified below\n\n")
	b.WriteString("Output Format (JSON):\n")
	if includeEnglish {
		b.WriteString("{\n  \"result\": {\n    \"discountLanguage\": [\"translation1\", \"translation2\"],\n    \"english\": [\"english1\", \"english2\"]\n  }\n}\n\n")
	} else {
		b.WriteString("{\n  \"result\": {\n    \"discountLanguage\": [\"translation1\", \"translation2\"]\n  }\n}\n\n")
	}
	fmt.Fprintf(&b, "Important: The arrays must contain exactly %d items each, in the same order as the input.\n", len(items))

	return b.String()
}

// validateBatchCount enforces the list-in/list-of-same-length-out contract
// every batched model call shares.
func validateBatchCount(want, got int) error {
	if want != got {
		return fmt.Errorf("count mismatch: want %d, got %d", want, got)
	}
	return nil
}
