package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/dealhound/backend/config"
	"github.com/dealhound/backend/internal/domain"
)

type fakeMatcher struct {
	response *domain.MatchResponse
	err      error
	gotReq   *domain.MatchRequest
}

func (m *fakeMatcher) MatchShoppingList(ctx context.Context, req *domain.MatchRequest) (*domain.MatchResponse, error) {
	m.gotReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func testRouter(matcher ShoppingListMatcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.Server.Environment = "test"
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.RateLimit.PerIP = 1000
	return SetupRouter(cfg, NewHandler(matcher))
}

func postMatch(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/v1/discounts/match", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router := testRouter(&fakeMatcher{})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["status"] != "healthy" || body["service"] != "dealhound-backend" {
		t.Errorf("unexpected health body: %v", body)
	}
}

func TestMatchShoppingList_Success(t *testing.T) {
	matcher := &fakeMatcher{
		response: &domain.MatchResponse{
			Matches:        []domain.MatchedProduct{},
			UnmatchedItems: []string{"milk"},
			TotalPotentialSavingsByCurrency: map[string]float64{
				"EUR": 1.20,
			},
			ProcessingTimeMs: 42,
		},
	}
	router := testRouter(matcher)

	w := postMatch(router, `{"shopping_list":[{"item":"milk"}],"country":"BG"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}

	var response domain.MatchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if response.TotalPotentialSavingsByCurrency["EUR"] != 1.20 {
		t.Errorf("unexpected savings: %v", response.TotalPotentialSavingsByCurrency)
	}
	if matcher.gotReq == nil || matcher.gotReq.Country != "BG" {
		t.Errorf("request not passed through: %+v", matcher.gotReq)
	}
}

func TestMatchShoppingList_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{`},
		{name: "missing shopping list", body: `{"country":"BG"}`},
		{name: "empty shopping list", body: `{"shopping_list":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := testRouter(&fakeMatcher{})
			w := postMatch(router, tt.body)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400, body: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestMatchShoppingList_InvalidRequestFromPipeline(t *testing.T) {
	router := testRouter(&fakeMatcher{err: domain.ErrInvalidRequest})

	w := postMatch(router, `{"shopping_list":[{"item":"   "}]}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestMatchShoppingList_InternalError(t *testing.T) {
	router := testRouter(&fakeMatcher{err: errors.New("pipeline failed in state retrieving: boom")})

	w := postMatch(router, `{"shopping_list":[{"item":"milk"}]}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["error"] != "Internal server error" || body["details"] == "" {
		t.Errorf("unexpected error body: %v", body)
	}
}

func TestMatchShoppingList_MethodNotAllowed(t *testing.T) {
	router := testRouter(&fakeMatcher{})

	req := httptest.NewRequest("GET", "/api/v1/discounts/match", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}
