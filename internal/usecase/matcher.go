package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dealhound/backend/internal/domain"
)

// Pipeline states. Failed is terminal and reachable from any state; no state
// is retried within a single request.
type pipelineState string

const (
	stateReceived    pipelineState = "received"
	stateTranslating pipelineState = "translating"
	stateRetrieving  pipelineState = "retrieving"
	stateFiltering   pipelineState = "filtering"
	stateReconciling pipelineState = "reconciling"
	stateCompleted   pipelineState = "completed"
	stateFailed      pipelineState = "failed"
)

// MatcherServiceConfig holds configuration for the matching pipeline
type MatcherServiceConfig struct {
	DefaultDiscountLanguage string
	DefaultMaxResults       int
	ProcessingTimeout       time.Duration
	IncludeSavingsTotals    bool
	EnableDebugLogging      bool
}

// MatcherService orchestrates the shopping-list pipeline:
// translation -> retrieval -> filter/rank -> reconciliation.
// Stages run strictly in sequence; only retrieval fans out internally.
type MatcherService struct {
	translation *TranslationService
	retrieval   *RetrievalService
	filter      *FilterService
	savings     *SavingsService

	defaultDiscountLanguage string
	defaultMaxResults       int
	processingTimeout       time.Duration
	includeSavingsTotals    bool
	debug                   bool
}

// NewMatcherService creates the pipeline orchestrator with its stage
// collaborators.
func NewMatcherService(
	translation *TranslationService,
	retrieval *RetrievalService,
	filter *FilterService,
	savings *SavingsService,
	config MatcherServiceConfig,
) *MatcherService {
	discountLanguage := config.DefaultDiscountLanguage
	if discountLanguage == "" {
		discountLanguage = "Bulgarian"
	}

	maxResults := config.DefaultMaxResults
	if maxResults <= 0 {
		maxResults = 10
	}

	timeout := config.ProcessingTimeout
	if timeout <= 0 {
		timeout = 300 * time.Second
	}

	return &MatcherService{
		translation:             translation,
		retrieval:               retrieval,
		filter:                  filter,
		savings:                 savings,
		defaultDiscountLanguage: discountLanguage,
		defaultMaxResults:       maxResults,
		processingTimeout:       timeout,
		includeSavingsTotals:    config.IncludeSavingsTotals,
		debug:                   config.EnableDebugLogging,
	}
}

// MatchShoppingList runs the full pipeline for one request. Individual
// sub-query failures degrade to unmatched items; an error escaping a stage's
// local recovery (including the overall timeout budget) fails the request
// with no partial result.
func (s *MatcherService) MatchShoppingList(ctx context.Context, request *domain.MatchRequest) (*domain.MatchResponse, error) {
	startTime := time.Now()
	state := stateReceived

	if request == nil || len(request.ShoppingList) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	items := make([]string, 0, len(request.ShoppingList))
	listItems := make([]domain.ShoppingListItem, 0, len(request.ShoppingList))
	for _, it := range request.ShoppingList {
		text := strings.TrimSpace(it.Item)
		if text == "" {
			continue
		}
		it.Item = text
		items = append(items, text)
		listItems = append(listItems, it)
	}
	if len(items) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	ctx, cancel := context.WithTimeout(ctx, s.processingTimeout)
	defer cancel()

	discountLanguage := request.DiscountLanguage
	if discountLanguage == "" {
		discountLanguage = s.defaultDiscountLanguage
	}

	maxResults := request.MaxResultsPerItem
	if maxResults <= 0 {
		maxResults = s.defaultMaxResults
	}

	if s.debug {
		log.Printf("[MATCHER] Processing shopping list: items=%d country=%q stores=%v language=%s",
			len(items), request.Country, request.StoreIDs, discountLanguage)
	}

	state = s.transition(state, stateTranslating)
	translations := s.translation.Translate(ctx, items, discountLanguage)
	if err := ctx.Err(); err != nil {
		return nil, s.fail(state, err)
	}

	state = s.transition(state, stateRetrieving)
	itemVariants := make([][]QueryVariant, len(items))
	for i, text := range items {
		var discountText, englishText string
		if i < len(translations.DiscountLanguage) {
			discountText = translations.DiscountLanguage[i]
		}
		if i < len(translations.English) {
			englishText = translations.English[i]
		}
		itemVariants[i] = BuildQueryVariants(text, discountText, englishText)
	}

	filters := domain.SearchFilters{
		Country:    request.Country,
		StoreIDs:   request.StoreIDs,
		MaxResults: maxResults,
	}
	candidatesPerItem := s.retrieval.RetrieveForItems(ctx, itemVariants, filters)
	if err := ctx.Err(); err != nil {
		return nil, s.fail(state, err)
	}

	state = s.transition(state, stateFiltering)
	withCandidates := make([]ItemWithCandidates, 0, len(listItems))
	for i, candidates := range candidatesPerItem {
		if len(candidates) == 0 {
			continue
		}
		withCandidates = append(withCandidates, ItemWithCandidates{
			Item:       listItems[i],
			Candidates: candidates,
		})
	}

	matches := s.filter.FilterAndRank(ctx, withCandidates)
	if err := ctx.Err(); err != nil {
		return nil, s.fail(state, err)
	}

	state = s.transition(state, stateReconciling)
	reconciled := s.savings.Reconcile(ctx, matches)
	if err := ctx.Err(); err != nil {
		return nil, s.fail(state, err)
	}

	matched := make(map[string]bool, len(reconciled.Matches))
	for _, m := range reconciled.Matches {
		matched[m.ShoppingListItem.Item] = true
	}
	unmatched := make([]string, 0)
	seenUnmatched := make(map[string]bool)
	for _, text := range items {
		if !matched[text] && !seenUnmatched[text] {
			unmatched = append(unmatched, text)
			seenUnmatched[text] = true
		}
	}

	state = s.transition(state, stateCompleted)

	response := &domain.MatchResponse{
		Matches:          reconciled.Matches,
		UnmatchedItems:   unmatched,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
	}
	if response.Matches == nil {
		response.Matches = []domain.MatchedProduct{}
	}
	if s.includeSavingsTotals {
		response.TotalPotentialSavingsByCurrency = reconciled.SavingsByCurrency
	}

	log.Printf("[MATCHER] Completed: matches=%d unmatched=%d elapsed=%dms",
		len(response.Matches), len(response.UnmatchedItems), response.ProcessingTimeMs)

	return response, nil
}

func (s *MatcherService) transition(from, to pipelineState) pipelineState {
	if s.debug {
		log.Printf("[MATCHER] State %s -> %s", from, to)
	}
	return to
}

func (s *MatcherService) fail(from pipelineState, err error) error {
	log.Printf("[MATCHER] State %s -> %s: %v", from, stateFailed, err)
	return fmt.Errorf("pipeline failed in state %s: %w", from, err)
}
