package domain

import "context"

// CacheRepository defines namespaced, TTL-bound cache operations. Get
// unmarshals the stored payload into dest and returns ErrCacheMiss for
// anything that is not a fresh, readable entry. Implementations fail soft:
// the cache is an optimization, never a source of truth.
type CacheRepository interface {
	Get(ctx context.Context, namespace, key string, dest any) error
	Set(ctx context.Context, namespace, key string, value any) error
	Delete(ctx context.Context, namespace, key string) error
}

// ProductSource fetches a normalized product record from one upstream
// provider. FetchProduct returns ErrProductNotFound when the provider
// reports no match and ErrSourceUnavailable/ErrMalformedResponse after
// exhausting its retry budget.
type ProductSource interface {
	Name() string
	FetchProduct(ctx context.Context, code string) (*ProductRecord, error)
}

// ProductSearcher searches a provider by free-text product name
type ProductSearcher interface {
	SearchProducts(ctx context.Context, query string, limit int) ([]ProductSummary, error)
}

// NutrientSource supports the enrichment step: a nutrient-only lookup by
// product name, returning keys in the same convention as ProductRecord.Nutrients.
type NutrientSource interface {
	FetchNutrients(ctx context.Context, query string) (map[string]float64, error)
}

// TextGenerator is the generative model boundary. Generate returns the raw
// completion text; Enabled reports whether a credential is configured.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Enabled() bool
}
