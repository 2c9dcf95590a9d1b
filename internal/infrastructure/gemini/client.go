package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/dealhound/backend/internal/domain"
)

const (
	defaultBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel          = "gemini-2.0-flash-lite"
	defaultEmbeddingModel = "text-embedding-004"
)

// Client handles communication with the Gemini generative language API.
// It implements domain.Generator and domain.Embedder.
type Client struct {
	httpClient     *http.Client
	apiKey         string
	baseURL        string
	model          string
	embeddingModel string
	rateLimiter    *rate.Limiter
	debug          bool
}

// NewClient creates a new Gemini API client. Empty model names fall back to
// the cheap generation model and the standard embedding model.
func NewClient(apiKey, baseURL, model, embeddingModel string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	if embeddingModel == "" {
		embeddingModel = defaultEmbeddingModel
	}

	// Generation calls cost money; keep a conservative outbound ceiling
	// with a small burst for the multi-call pipeline.
	limiter := rate.NewLimiter(rate.Limit(2), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		apiKey:         apiKey,
		baseURL:        baseURL,
		model:          model,
		embeddingModel: embeddingModel,
		rateLimiter:    limiter,
	}
}

// SetDebug enables request/response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string   `json:"responseMimeType,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GenerateJSON sends a single-turn prompt requesting JSON-shaped output and
// returns the raw response text. Generation calls are not blindly retried on
// success-with-bad-content: only transport and 5xx/429 failures retry, since
// repeated generations cost money and may differ.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, temperature float64) ([]byte, error) {
	reqBody := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: &generationConfig{
			ResponseMIMEType: "application/json",
			Temperature:      &temperature,
		},
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	body, err := c.post(ctx, endpoint, reqBody)
	if err != nil {
		return nil, err
	}

	var response generateResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedModelResponse, err)
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return nil, domain.ErrEmptyModelResponse
	}

	text := response.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return nil, domain.ErrEmptyModelResponse
	}

	if c.debug {
		log.Printf("[GEMINI] Generated %d bytes for prompt of %d bytes", len(text), len(prompt))
	}

	return []byte(text), nil
}

type embedRequest struct {
	Content  content `json:"content"`
	TaskType string  `json:"taskType,omitempty"`
}

type embedResponse struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
}

// EmbedQuery returns the embedding vector for a search query text.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	reqBody := embedRequest{
		Content:  content{Parts: []part{{Text: text}}},
		TaskType: "RETRIEVAL_QUERY",
	}

	endpoint := fmt.Sprintf("%s/models/%s:embedContent", c.baseURL, c.embeddingModel)
	body, err := c.post(ctx, endpoint, reqBody)
	if err != nil {
		return nil, err
	}

	var response embedResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedModelResponse, err)
	}

	if len(response.Embedding.Values) == 0 {
		return nil, domain.ErrEmptyModelResponse
	}

	return response.Embedding.Values, nil
}

// post executes a rate-limited JSON POST with up to 3 attempts for
// transient failures.
func (c *Client) post(ctx context.Context, endpoint string, reqBody interface{}) ([]byte, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("[GEMINI] Request error (attempt %d): %v", attempt, err)
			lastErr = fmt.Errorf("%w: %v", domain.ErrModelAPIFailure, err)
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			log.Printf("[GEMINI] API error (attempt %d) - Status: %d, Body: %s", attempt, resp.StatusCode, string(body))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrModelAPIFailure, resp.StatusCode)
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrModelAPIFailure, resp.StatusCode, string(body))
		}

		return body, nil
	}

	return nil, lastErr
}

// exponentialBackoff returns the wait before retry attempt+1: 500ms, 1s, 2s.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<(attempt-1)) * 500 * time.Millisecond
}
