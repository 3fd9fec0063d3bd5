// Package enrich upgrades normalized products with an OpenAI-compatible
// model: structured brand/model/category extraction from titles, and
// same-product judgements for cross-site matching. Everything here runs
// after normalization and is strictly optional; scrape jobs never depend
// on it.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Modzmart2112/Tracker-sub001/config"
	"github.com/Modzmart2112/Tracker-sub001/models"
	"github.com/Modzmart2112/Tracker-sub001/similarity"
)

// Client is a lightweight OpenAI-compatible API client for enrichment.
// It uses net/http directly — no third-party SDK needed.
type Client struct {
	httpClient *http.Client
	cfg        config.EnrichConfig
}

// NewClient creates an enrichment client. Pass nil to use a default
// http.Client.
func NewClient(httpClient *http.Client, cfg config.EnrichConfig) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{httpClient: httpClient, cfg: cfg}
}

// Enabled reports whether the client has credentials to call out with.
func (c *Client) Enabled() bool {
	return c.cfg.APIKey != "" && c.cfg.BaseURL != ""
}

// Enrichment is the structured read of one product title.
type Enrichment struct {
	Brand      string            `json:"brand"`
	Model      string            `json:"model"`
	Category   string            `json:"category"`
	Specs      map[string]string `json:"specs,omitempty"`
	Confidence float64           `json:"confidence"`
}

// MatchResult is a same-product judgement between two listings.
type MatchResult struct {
	Same       bool    `json:"same_product"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// chatRequest is the OpenAI chat completion request body.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatResponse is the minimal chat completion response we need.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// chatErrorResponse captures an API error from the provider.
type chatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

const enrichSystemPrompt = `You are a product catalog assistant. Given a raw product listing title, identify the brand, the model designation, a short category, and any specs embedded in the title (voltage, capacity, piece count). Return ONLY valid JSON of the form:
{"brand": string, "model": string, "category": string, "specs": object of string to string, "confidence": number between 0 and 1}
Use "" or {} for anything you cannot determine and lower the confidence accordingly. No markdown fences, no explanation.`

const matchSystemPrompt = `You are a product matching assistant. Given two product listings from different retailers, judge whether they describe the same physical product (same brand, same model, same variant). Return ONLY valid JSON of the form:
{"same_product": boolean, "confidence": number between 0 and 1, "rationale": string}
No markdown fences, no explanation.`

// EnrichTitle asks the model for brand/model/category of one title.
func (c *Client) EnrichTitle(ctx context.Context, title string) (*Enrichment, error) {
	raw, err := c.complete(ctx, enrichSystemPrompt, title)
	if err != nil {
		return nil, err
	}
	var out Enrichment
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeEnrichFailure, "enrichment returned malformed JSON", err)
	}
	return &out, nil
}

// MatchProducts asks the model whether a and b are the same product.
func (c *Client) MatchProducts(ctx context.Context, a, b *models.ScrapedProduct) (*MatchResult, error) {
	user := fmt.Sprintf("Listing A:\ntitle: %s\nbrand: %s\nmodel: %s\n\nListing B:\ntitle: %s\nbrand: %s\nmodel: %s",
		a.Title, a.Brand, a.Model, b.Title, b.Brand, b.Model)

	raw, err := c.complete(ctx, matchSystemPrompt, user)
	if err != nil {
		return nil, err
	}
	var out MatchResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeEnrichFailure, "match judgement returned malformed JSON", err)
	}
	return &out, nil
}

// MatchProductsFallback is the no-credentials path: a SimHash comparison of
// normalized titles. Lower fidelity, zero cost, always available.
func MatchProductsFallback(a, b *models.ScrapedProduct) *MatchResult {
	same := similarity.SameProduct(a.Title, b.Title)
	dist := similarity.Distance(
		similarity.FingerprintTitle(a.Title),
		similarity.FingerprintTitle(b.Title),
	)
	confidence := 1.0 - float64(dist)/64.0
	if confidence < 0 {
		confidence = 0
	}
	return &MatchResult{
		Same:       same,
		Confidence: confidence,
		Rationale:  fmt.Sprintf("simhash title distance %d", dist),
	}
}

// complete runs one chat completion and returns the validated JSON content.
func (c *Client) complete(ctx context.Context, system, user string) (json.RawMessage, error) {
	reqBody := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    0,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeEnrichFailure, "enrichment request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeEnrichFailure, "failed to read enrichment response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyError(resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeEnrichFailure, "failed to parse enrichment response", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, models.NewScrapeError(models.ErrCodeEnrichFailure, "enrichment returned no choices", nil)
	}

	raw := chatResp.Choices[0].Message.Content
	if !json.Valid([]byte(raw)) {
		return nil, models.NewScrapeError(models.ErrCodeEnrichFailure, "enrichment returned invalid JSON", nil)
	}
	return json.RawMessage(raw), nil
}

// classifyError maps HTTP status codes to appropriate error codes.
func classifyError(statusCode int, body []byte) *models.ScrapeError {
	var errResp chatErrorResponse
	msg := "enrichment API error"
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		msg = errResp.Error.Message
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return models.NewScrapeError(models.ErrCodeEnrichAuthFailure, msg, nil)
	case statusCode == http.StatusTooManyRequests:
		return models.NewScrapeError(models.ErrCodeEnrichRateLimited, msg, nil)
	default:
		return models.NewScrapeError(models.ErrCodeEnrichFailure, fmt.Sprintf("enrichment API returned %d: %s", statusCode, msg), nil)
	}
}
