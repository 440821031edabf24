package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/labelcheck/backend/internal/domain"
	"github.com/labelcheck/backend/internal/metrics"
	"golang.org/x/time/rate"
)

const (
	maxAttempts    = 3
	requestTimeout = 12 * time.Second
)

// Client handles communication with the OpenFoodFacts API, the primary
// product source. No API key is required; OFF asks clients to identify
// themselves via User-Agent and stay under ~100 req/min.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	debug       bool
}

// NewClient creates a new OpenFoodFacts API client
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		baseURL:     baseURL,
		rateLimiter: rate.NewLimiter(rate.Limit(1), 5),
		backoff:     linearBackoff,
	}
}

// SetDebug enables verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Name returns the source identifier carried in resolved records
func (c *Client) Name() string {
	return domain.SourceOpenFoodFacts
}

// linearBackoff returns the wait before retrying: 1s, 2s, 3s
func linearBackoff(attempt int) time.Duration {
	return time.Duration(attempt) * time.Second
}

// getJSON executes a GET with retry. Non-2xx statuses and unparsable bodies
// both count as transient failures; after maxAttempts the last error is
// returned wrapped in ErrSourceUnavailable or ErrMalformedResponse.
func (c *Client) getJSON(ctx context.Context, reqURL string, dest any) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", "LabelCheck/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if c.debug {
				log.Printf("[OFF] request error (attempt %d): %v", attempt, err)
			}
			lastErr = fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
			time.Sleep(c.backoff(attempt))
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			if c.debug {
				log.Printf("[OFF] status %d (attempt %d): %s", resp.StatusCode, attempt, string(body))
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrSourceUnavailable, resp.StatusCode)
			time.Sleep(c.backoff(attempt))
			continue
		}

		if err := json.Unmarshal(body, dest); err != nil {
			if c.debug {
				log.Printf("[OFF] decode error (attempt %d): %v", attempt, err)
			}
			lastErr = fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
			time.Sleep(c.backoff(attempt))
			continue
		}

		return nil
	}
	return lastErr
}

// FetchProduct retrieves a product by barcode and normalizes it. A status:0
// response is a structural "not found", distinct from transport failure.
func (c *Client) FetchProduct(ctx context.Context, code string) (*domain.ProductRecord, error) {
	reqURL := fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, url.PathEscape(code))

	var resp productResponse
	if err := c.getJSON(ctx, reqURL, &resp); err != nil {
		metrics.SourceRequestsTotal.WithLabelValues(c.Name(), "error").Inc()
		return nil, err
	}

	if resp.Status != 1 {
		metrics.SourceRequestsTotal.WithLabelValues(c.Name(), "not_found").Inc()
		return nil, domain.ErrProductNotFound
	}

	metrics.SourceRequestsTotal.WithLabelValues(c.Name(), "success").Inc()
	return mapProduct(code, &resp.Product), nil
}

// SearchProducts searches OFF by free-text name and returns lightweight
// summaries, capped at limit.
func (c *Client) SearchProducts(ctx context.Context, query string, limit int) ([]domain.ProductSummary, error) {
	params := url.Values{}
	params.Add("search_terms", query)
	params.Add("search_simple", "1")
	params.Add("action", "process")
	params.Add("json", "1")
	params.Add("page_size", fmt.Sprintf("%d", limit))

	reqURL := fmt.Sprintf("%s/cgi/search.pl?%s", c.baseURL, params.Encode())

	var resp searchResponse
	if err := c.getJSON(ctx, reqURL, &resp); err != nil {
		metrics.SourceRequestsTotal.WithLabelValues(c.Name(), "error").Inc()
		return nil, err
	}

	metrics.SourceRequestsTotal.WithLabelValues(c.Name(), "success").Inc()

	summaries := make([]domain.ProductSummary, 0, len(resp.Products))
	for _, p := range resp.Products {
		if len(summaries) >= limit {
			break
		}
		name := p.ProductName
		if name == "" {
			name = domain.UnknownProduct
		}
		brand := p.Brands
		if brand == "" {
			brand = domain.UnknownBrand
		}
		summaries = append(summaries, domain.ProductSummary{
			Barcode:  p.Code,
			Name:     name,
			Brand:    brand,
			ImageURL: p.ImageURL,
		})
	}
	return summaries, nil
}
