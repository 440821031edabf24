package usda

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

// Client handles communication with the USDA FoodData Central API, the
// secondary product source. USDA is name-oriented, not barcode-oriented:
// FetchProduct sends the barcode as a free-text query and takes the first
// hit, which is a documented precision loss, not a bug.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	debug       bool
}

// NewClient creates a new USDA API client
func NewClient(apiKey, baseURL string) *Client {
	// USDA allows 1000 requests per hour: 1000/3600 ≈ 0.278 req/sec
	limiter := rate.NewLimiter(rate.Limit(0.278), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		rateLimiter: limiter,
		backoff:     linearBackoff,
	}
}

// SetDebug enables verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Name returns the source identifier carried in resolved records
func (c *Client) Name() string {
	return domain.SourceUSDA
}

// linearBackoff returns the wait before retrying: 1s, 2s, 3s
func linearBackoff(attempt int) time.Duration {
	return time.Duration(attempt) * time.Second
}

// getJSON executes a GET with retry. Non-2xx statuses and unparsable bodies
// both count as transient failures.
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
				log.Printf("[USDA] request error (attempt %d): %v", attempt, err)
			}
			lastErr = fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
			time.Sleep(c.backoff(attempt))
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			if c.debug {
				log.Printf("[USDA] status %d (attempt %d): %s", resp.StatusCode, attempt, string(body))
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrSourceUnavailable, resp.StatusCode)
			time.Sleep(c.backoff(attempt))
			continue
		}

		if err := json.Unmarshal(body, dest); err != nil {
			if c.debug {
				log.Printf("[USDA] decode error (attempt %d): %v", attempt, err)
			}
			lastErr = fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
			time.Sleep(c.backoff(attempt))
			continue
		}

		return nil
	}
	return lastErr
}

// searchFoods queries /v1/foods/search with a free-text query
func (c *Client) searchFoods(ctx context.Context, query string, pageSize int) (*searchResponse, error) {
	params := url.Values{}
	params.Add("query", query)
	params.Add("api_key", c.apiKey)
	params.Add("pageSize", fmt.Sprintf("%d", pageSize))

	reqURL := fmt.Sprintf("%s/v1/foods/search?%s", c.baseURL, params.Encode())

	var resp searchResponse
	if err := c.getJSON(ctx, reqURL, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// getFoodDetail queries /v1/food/{fdcId}
func (c *Client) getFoodDetail(ctx context.Context, fdcID int64) (*foodDetail, error) {
	params := url.Values{}
	params.Add("api_key", c.apiKey)

	reqURL := fmt.Sprintf("%s/v1/food/%d?%s", c.baseURL, fdcID, params.Encode())

	var detail foodDetail
	if err := c.getJSON(ctx, reqURL, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FetchProduct resolves a lookup key against USDA: search (key sent
// verbatim as a free-text query), then a detail fetch for the first hit.
func (c *Client) FetchProduct(ctx context.Context, code string) (*domain.ProductRecord, error) {
	search, err := c.searchFoods(ctx, code, 1)
	if err != nil {
		metrics.SourceRequestsTotal.WithLabelValues(c.Name(), "error").Inc()
		return nil, err
	}

	if len(search.Foods) == 0 {
		metrics.SourceRequestsTotal.WithLabelValues(c.Name(), "not_found").Inc()
		return nil, domain.ErrProductNotFound
	}

	first := search.Foods[0]
	detail, err := c.getFoodDetail(ctx, first.FdcID)
	if err != nil {
		metrics.SourceRequestsTotal.WithLabelValues(c.Name(), "error").Inc()
		return nil, err
	}

	metrics.SourceRequestsTotal.WithLabelValues(c.Name(), "success").Inc()
	return mapProduct(code, &first, detail), nil
}

// FetchNutrients supports the enrichment step: a nutrient-only lookup by
// product name. Returns nutrient keys in the OFF per-100g convention so the
// result merges cleanly into an existing record.
func (c *Client) FetchNutrients(ctx context.Context, query string) (map[string]float64, error) {
	search, err := c.searchFoods(ctx, query, 1)
	if err != nil {
		metrics.SourceRequestsTotal.WithLabelValues(c.Name(), "error").Inc()
		return nil, err
	}

	if len(search.Foods) == 0 {
		metrics.SourceRequestsTotal.WithLabelValues(c.Name(), "not_found").Inc()
		return nil, domain.ErrProductNotFound
	}

	detail, err := c.getFoodDetail(ctx, search.Foods[0].FdcID)
	if err != nil {
		metrics.SourceRequestsTotal.WithLabelValues(c.Name(), "error").Inc()
		return nil, err
	}

	metrics.SourceRequestsTotal.WithLabelValues(c.Name(), "success").Inc()
	return mapNutrients(detail.FoodNutrients), nil
}
