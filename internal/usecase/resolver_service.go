package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/labelcheck/backend/internal/domain"
)

// Cache namespaces. Product and search data share a TTL family (24h);
// analyses live much longer (7 days) since product identity barely changes.
const (
	NamespaceProduct  = "product"
	NamespaceSearch   = "search"
	NamespaceAnalysis = "analysis"
)

const (
	// searchFetchSize is what we ask the provider for; searchResultLimit is
	// what callers see
	searchFetchSize   = 10
	searchResultLimit = 5

	// minNutrientKeys is the threshold below which a resolved record gets a
	// supplementary nutrient lookup
	minNutrientKeys = 3
)

// ResolverService resolves product lookups against ranked sources with a
// cache-first policy: cache, then primary, then secondary, then not-found.
type ResolverService struct {
	cache     domain.CacheRepository
	primary   domain.ProductSource
	secondary domain.ProductSource
	searcher  domain.ProductSearcher
	nutrients domain.NutrientSource
}

// NewResolverService creates a resolver. searcher and nutrients may belong
// to the same clients as the sources; nutrients may be nil, which disables
// enrichment.
func NewResolverService(
	cache domain.CacheRepository,
	primary domain.ProductSource,
	secondary domain.ProductSource,
	searcher domain.ProductSearcher,
	nutrients domain.NutrientSource,
) *ResolverService {
	return &ResolverService{
		cache:     cache,
		primary:   primary,
		secondary: secondary,
		searcher:  searcher,
		nutrients: nutrients,
	}
}

// ResolveByBarcode returns a normalized record for a lookup key. The key is
// passed to sources verbatim; digit-only validation is the caller's concern.
// Flow: cache -> primary source -> secondary source -> ErrProductNotFound.
func (s *ResolverService) ResolveByBarcode(ctx context.Context, barcode string) (*domain.ProductRecord, error) {
	if strings.TrimSpace(barcode) == "" {
		return nil, domain.ErrInvalidRequest
	}

	var cached domain.ProductRecord
	if err := s.cache.Get(ctx, NamespaceProduct, barcode, &cached); err == nil {
		return &cached, nil
	}

	record := s.resolveFromSources(ctx, barcode)
	if record == nil {
		return nil, domain.ErrProductNotFound
	}

	record = s.enrich(ctx, record)

	// A failed cache write must not fail the resolution
	if err := s.cache.Set(ctx, NamespaceProduct, barcode, record); err != nil {
		log.Printf("[RESOLVER] cache write failed for %s: %v", barcode, err)
	}

	return record, nil
}

// resolveFromSources walks the ranked sources. Transient failure and
// structural not-found are treated alike: move on to the next source. The
// resolver never synthesizes a record.
func (s *ResolverService) resolveFromSources(ctx context.Context, barcode string) *domain.ProductRecord {
	record, err := s.primary.FetchProduct(ctx, barcode)
	if err == nil {
		return record
	}
	if !errors.Is(err, domain.ErrProductNotFound) {
		log.Printf("[RESOLVER] primary source %s failed for %s: %v", s.primary.Name(), barcode, err)
	}

	// Secondary is name-oriented; the barcode goes through as a free-text
	// query. Known precision loss, accepted.
	record, err = s.secondary.FetchProduct(ctx, barcode)
	if err == nil {
		return record
	}
	if !errors.Is(err, domain.ErrProductNotFound) {
		log.Printf("[RESOLVER] secondary source %s failed for %s: %v", s.secondary.Name(), barcode, err)
	}

	return nil
}

// enrich merges supplementary nutrients into records with sparse nutrient
// data. Only absent keys are added; existing values are never overwritten.
// Enrichment failure leaves the record as resolved.
func (s *ResolverService) enrich(ctx context.Context, record *domain.ProductRecord) *domain.ProductRecord {
	if s.nutrients == nil || len(record.Nutrients) >= minNutrientKeys {
		return record
	}
	if record.Name == "" || record.Name == domain.UnknownProduct {
		return record
	}

	supplement, err := s.nutrients.FetchNutrients(ctx, record.Name)
	if err != nil {
		if !errors.Is(err, domain.ErrProductNotFound) {
			log.Printf("[RESOLVER] nutrient enrichment failed for %q: %v", record.Name, err)
		}
		return record
	}

	if record.Nutrients == nil {
		record.Nutrients = make(map[string]float64, len(supplement))
	}
	for key, value := range supplement {
		if _, exists := record.Nutrients[key]; !exists {
			record.Nutrients[key] = value
		}
	}
	return record
}

// SearchByName returns up to searchResultLimit lightweight summaries for a
// free-text query, cached under the literal query string.
func (s *ResolverService) SearchByName(ctx context.Context, query string) ([]domain.ProductSummary, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidRequest
	}

	var cached []domain.ProductSummary
	if err := s.cache.Get(ctx, NamespaceSearch, query, &cached); err == nil {
		return cached, nil
	}

	results, err := s.searcher.SearchProducts(ctx, query, searchFetchSize)
	if err != nil {
		return nil, err
	}

	if len(results) > searchResultLimit {
		results = results[:searchResultLimit]
	}

	if err := s.cache.Set(ctx, NamespaceSearch, query, results); err != nil {
		log.Printf("[RESOLVER] search cache write failed for %q: %v", query, err)
	}

	return results, nil
}
