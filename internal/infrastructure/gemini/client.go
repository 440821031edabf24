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

	"github.com/labelcheck/backend/internal/domain"
	"github.com/labelcheck/backend/internal/metrics"
)

const requestTimeout = 12 * time.Second

// Client calls the Gemini generateContent REST API. When no API key is
// configured the client starts disabled and callers degrade to placeholder
// results instead of failing.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	enabled    bool
}

// NewClient creates a Gemini client. An empty apiKey yields a disabled client.
func NewClient(apiKey, baseURL, model string) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: requestTimeout},
		enabled:    apiKey != "",
	}

	if c.enabled {
		keyPreview := apiKey
		if len(keyPreview) > 8 {
			keyPreview = keyPreview[:8] + "..."
		}
		log.Printf("[GEMINI] enabled (model=%s, key=%s)", model, keyPreview)
	} else {
		log.Printf("[GEMINI] disabled (no API key configured)")
	}

	return c
}

// Enabled reports whether a credential is configured
func (c *Client) Enabled() bool {
	return c.enabled
}

// generateRequest is the generateContent request body
type generateRequest struct {
	Contents         []content `json:"contents"`
	GenerationConfig genConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type genConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// generateResponse is the generateContent response body
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate sends a prompt and returns the raw completion text. Any transport
// or API failure is returned as an error for the caller to absorb; this
// layer never retries (analyses are cached, a retry on the next request is
// cheaper than blocking the user longer).
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.enabled {
		metrics.ModelRequestsTotal.WithLabelValues("disabled").Inc()
		return "", domain.ErrModelUnavailable
	}

	reqBody := generateRequest{
		Contents: []content{
			{Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: genConfig{
			Temperature:     0.4,
			MaxOutputTokens: 2048,
		},
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqJSON))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ModelRequestsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	metrics.ModelLatency.Observe(time.Since(start).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ModelRequestsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.ModelRequestsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		metrics.ModelRequestsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if genResp.Error != nil {
		metrics.ModelRequestsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("API error %d: %s", genResp.Error.Code, genResp.Error.Message)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		// Model declined or returned an empty completion
		metrics.ModelRequestsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("empty completion")
	}

	metrics.ModelRequestsTotal.WithLabelValues("success").Inc()
	return genResp.Candidates[0].Content.Parts[0].Text, nil
}
