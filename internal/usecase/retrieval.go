package usecase

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/dealhound/backend/internal/domain"
)

// Language variant tags, in the fixed order variants are queried and merged.
const (
	VariantOriginal         = "original"
	VariantDiscountLanguage = "discount-language"
	VariantEnglish          = "english"
)

// QueryVariant is one (queryText, languageTag) pair for a shopping item.
type QueryVariant struct {
	Text     string
	Language string
}

// RetrievalServiceConfig holds configuration for the retrieval service
type RetrievalServiceConfig struct {
	MaxParallelSearches int
	EnableDebugLogging  bool
}

// RetrievalService fans product searches out across per-item language
// variants and merge-dedupes the results. A failing sub-query degrades to an
// empty candidate list for that variant and never fails the request.
type RetrievalService struct {
	searcher    domain.ProductSearcher
	maxParallel int
	debug       bool
}

// NewRetrievalService creates a new retrieval service
func NewRetrievalService(searcher domain.ProductSearcher, config RetrievalServiceConfig) *RetrievalService {
	maxParallel := config.MaxParallelSearches
	if maxParallel <= 0 {
		maxParallel = 4
	}

	return &RetrievalService{
		searcher:    searcher,
		maxParallel: maxParallel,
		debug:       config.EnableDebugLogging,
	}
}

// RetrieveForItems runs one search per (item x variant) pair with bounded
// parallelism and returns per-item candidate lists, deduplicated by product
// id with first occurrence (in variant order) winning. The output is
// index-aligned with itemVariants.
func (s *RetrievalService) RetrieveForItems(ctx context.Context, itemVariants [][]QueryVariant, filters domain.SearchFilters) [][]domain.ProductCandidate {
	perVariant := make([][][]domain.ProductCandidate, len(itemVariants))
	for i := range itemVariants {
		perVariant[i] = make([][]domain.ProductCandidate, len(itemVariants[i]))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)

	for i := range itemVariants {
		for j := range itemVariants[i] {
			i, j := i, j
			variant := itemVariants[i][j]
			g.Go(func() error {
				candidates, err := s.searcher.Search(gctx, variant.Text, filters)
				if err != nil {
					// Degrade to an empty list for this sub-query only.
					log.Printf("[RETRIEVE] Search failed for %q (%s): %v", variant.Text, variant.Language, err)
					return nil
				}
				perVariant[i][j] = candidates
				return nil
			})
		}
	}
	// Workers never return errors; Wait only synchronizes.
	_ = g.Wait()

	results := make([][]domain.ProductCandidate, len(itemVariants))
	for i := range perVariant {
		results[i] = mergeDeduped(perVariant[i])
		if s.debug {
			log.Printf("[RETRIEVE] Item %d: %d candidates after dedupe across %d variants",
				i, len(results[i]), len(itemVariants[i]))
		}
	}

	return results
}

// mergeDeduped concatenates variant result lists in order, keeping only the
// first occurrence of each candidate id.
func mergeDeduped(variantResults [][]domain.ProductCandidate) []domain.ProductCandidate {
	seen := make(map[string]bool)
	var merged []domain.ProductCandidate

	for _, candidates := range variantResults {
		for _, c := range candidates {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			merged = append(merged, c)
		}
	}

	return merged
}

// BuildQueryVariants assembles the ordered variant list for one item:
// original text first, then the discount-language translation, then the
// English translation. Duplicate texts are collapsed so a translation equal
// to the original does not trigger a redundant search.
func BuildQueryVariants(original, discountTranslation, englishTranslation string) []QueryVariant {
	variants := []QueryVariant{{Text: original, Language: VariantOriginal}}
	seen := map[string]bool{original: true}

	if discountTranslation != "" && !seen[discountTranslation] {
		variants = append(variants, QueryVariant{Text: discountTranslation, Language: VariantDiscountLanguage})
		seen[discountTranslation] = true
	}
	if englishTranslation != "" && !seen[englishTranslation] {
		variants = append(variants, QueryVariant{Text: englishTranslation, Language: VariantEnglish})
	}

	return variants
}
