package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/labelcheck/backend/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
	ratingRegex          = regexp.MustCompile(`(?i)(?:rate|rating|score)[^\d]*(\d+(?:\.\d+)?)\s*(?:/|of|out of)?\s*10`)
)

// metricPatterns extract numeric estimates from analysis text
var metricPatterns = map[string]*regexp.Regexp{
	"calories_per_serving": regexp.MustCompile(`(?i)calories[^:]*:?\s*(\d+(?:\.\d+)?)`),
	"sugar_content_g":      regexp.MustCompile(`(?i)sugar[^:]*:?\s*(\d+(?:\.\d+)?)`),
	"saturated_fat_g":      regexp.MustCompile(`(?i)saturated[^:]*:?\s*(\d+(?:\.\d+)?)`),
	"sodium_mg":            regexp.MustCompile(`(?i)sodium[^:]*:?\s*(\d+(?:\.\d+)?)`),
	"protein_g":            regexp.MustCompile(`(?i)protein[^:]*:?\s*(\d+(?:\.\d+)?)`),
	"fiber_g":              regexp.MustCompile(`(?i)fiber[^:]*:?\s*(\d+(?:\.\d+)?)`),
	"additive_count":       regexp.MustCompile(`(?i)additive[^:]*:?\s*(\d+)`),
}

// nutrientFallbacks maps metric names to the record nutrient key that
// back-fills them when the model text carries no number. Sodium is stored in
// grams and reported in mg.
var nutrientFallbacks = map[string]struct {
	key   string
	scale float64
}{
	"calories_per_serving": {"energy-kcal_serving", 1},
	"sugar_content_g":      {"sugars_100g", 1},
	"saturated_fat_g":      {"saturated-fat_100g", 1},
	"sodium_mg":            {"sodium_100g", 1000},
	"protein_g":            {"proteins_100g", 1},
	"fiber_g":              {"fiber_100g", 1},
}

const defaultRating = 5.0

// AnalysisService produces cached generative analyses of resolved products.
// Every model failure degrades to a placeholder result; the HTTP layer never
// sees an analysis error.
type AnalysisService struct {
	cache domain.CacheRepository
	model domain.TextGenerator
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(cache domain.CacheRepository, model domain.TextGenerator) *AnalysisService {
	return &AnalysisService{cache: cache, model: model}
}

// ModelEnabled reports whether the generative model has a credential
func (s *AnalysisService) ModelEnabled() bool {
	return s.model.Enabled()
}

// AnalyzeHealth returns a health assessment with a 1-10 rating and numeric
// metric estimates.
func (s *AnalysisService) AnalyzeHealth(ctx context.Context, record *domain.ProductRecord) *domain.AnalysisResult {
	key := analysisKey(domain.AnalysisHealth, record.Name, record.Brand)
	prompt := fmt.Sprintf(
		"Analyze health of '%s' by '%s' in '%s'.\n\n%s\n\n"+
			"1. Top 5 health factors\n2. Rate 1-10 with explanation\n"+
			"3. Health concerns for specific groups\n4. Healthier alternatives\n"+
			"5. Numeric estimates: calories_per_serving, sugar_content_g, saturated_fat_g, sodium_mg, protein_g, fiber_g, additive_count\n\n"+
			"Use clear headings.",
		record.Name, record.Brand, record.Category, buildProductContext(record))

	return s.generate(ctx, domain.AnalysisHealth, key, prompt, record, true)
}

// AnalyzeEnvironment returns an environmental-impact assessment with a rating
func (s *AnalysisService) AnalyzeEnvironment(ctx context.Context, record *domain.ProductRecord) *domain.AnalysisResult {
	key := analysisKey(domain.AnalysisEnvironment, record.Name, record.Brand)
	prompt := fmt.Sprintf(
		"Analyze environmental impact of '%s' by '%s'.\nPackaging: %s\nEcoscore: %s\nOrigin: %s\n\n"+
			"1. Rate 1-10 environmental friendliness\n2. Packaging sustainability\n3. Carbon footprint\n4. Sustainable alternatives",
		record.Name, record.Brand, record.Packaging, orPlaceholder(record.EcoScore), record.Origin)

	return s.generate(ctx, domain.AnalysisEnvironment, key, prompt, record, false)
}

// AnalyzeAllergens returns an allergen risk assessment
func (s *AnalysisService) AnalyzeAllergens(ctx context.Context, record *domain.ProductRecord) *domain.AnalysisResult {
	key := analysisKey(domain.AnalysisAllergen, record.Name, record.Brand)
	allergens := "None listed"
	if len(record.Allergens) > 0 {
		allergens = strings.Join(record.Allergens, ", ")
	}
	prompt := fmt.Sprintf(
		"Analyze allergen risks for '%s' by '%s'.\nListed allergens: %s\nIngredients: %s\n\n"+
			"1. Explicit allergens\n2. Hidden allergens from ingredients\n3. Cross-contamination risks\n4. Recommendations",
		record.Name, record.Brand, allergens, record.IngredientsText)

	return s.generate(ctx, domain.AnalysisAllergen, key, prompt, record, false)
}

// SuggestRecipes returns healthier homemade alternatives. Keyed by name and
// category rather than brand; recipe suggestions are brand-independent.
func (s *AnalysisService) SuggestRecipes(ctx context.Context, record *domain.ProductRecord) *domain.AnalysisResult {
	key := analysisKey(domain.AnalysisRecipes, record.Name, record.Category)
	prompt := fmt.Sprintf(
		"Give 3 healthier homemade alternatives to '%s' (category: %s).\nOriginal ingredients: %s\n\n"+
			"For each: name, wholesome ingredients, instructions, health benefits vs original.",
		record.Name, record.Category, record.IngredientsText)

	return s.generate(ctx, domain.AnalysisRecipes, key, prompt, record, false)
}

// CheckCertification assesses likely compliance with a certification scheme
// (halal, kosher, vegan, organic, ...)
func (s *AnalysisService) CheckCertification(ctx context.Context, record *domain.ProductRecord, certType string) *domain.AnalysisResult {
	kind := domain.AnalysisCertification + "_" + normalizeKeyPart(certType)
	key := analysisKey(kind, record.Name, record.Brand)

	var contextLines strings.Builder
	if record.IngredientsText != domain.NotAvailable {
		fmt.Fprintf(&contextLines, "Ingredients: %s\n", record.IngredientsText)
	}
	if record.Labels != "" {
		fmt.Fprintf(&contextLines, "Labels: %s\n", record.Labels)
	}

	prompt := fmt.Sprintf(
		"Assess '%s' by '%s' for %s compliance.\n%s\n"+
			"1. Likely meets requirements?\n2. Common compliance issues\n3. What consumers should know\n4. Recommendations",
		record.Name, record.Brand, certType, contextLines.String())

	return s.generate(ctx, kind, key, prompt, record, false)
}

// Chat answers a free-form question about a product. Replies are not cached;
// the conversation itself is the context.
func (s *AnalysisService) Chat(ctx context.Context, record *domain.ProductRecord, history []domain.ChatMessage, question string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a food product assistant. Answer questions about this product:\n\n%s\n", buildProductContext(record))
	fmt.Fprintf(&b, "Product: %s\nBrand: %s\nCategory: %s\nOrigin: %s\n\n", record.Name, record.Brand, record.Category, record.Origin)
	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, msg := range history {
			fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Question: %s\n\nAnswer concisely and factually based on the product data above.", question)

	text, err := s.model.Generate(ctx, b.String())
	if err != nil {
		log.Printf("[ANALYSIS] chat generation failed: %v", err)
		return unavailableMessage(err)
	}
	return text
}

// generate runs the cache -> model -> extract -> cache flow shared by all
// analysis kinds. Model failure yields an uncached placeholder result.
func (s *AnalysisService) generate(ctx context.Context, kind, key, prompt string, record *domain.ProductRecord, withMetrics bool) *domain.AnalysisResult {
	var cached domain.AnalysisResult
	if err := s.cache.Get(ctx, NamespaceAnalysis, key, &cached); err == nil {
		return &cached
	}

	text, err := s.model.Generate(ctx, prompt)
	if err != nil {
		log.Printf("[ANALYSIS] %s generation failed for %q: %v", kind, record.Name, err)
		return &domain.AnalysisResult{
			Kind:     kind,
			Analysis: unavailableMessage(err),
			Degraded: true,
		}
	}

	result := &domain.AnalysisResult{
		Kind:     kind,
		Analysis: text,
		Rating:   extractRating(text),
	}
	if withMetrics {
		result.Metrics = extractNutritionMetrics(text, record)
	}

	if err := s.cache.Set(ctx, NamespaceAnalysis, key, result); err != nil {
		log.Printf("[ANALYSIS] cache write failed for %s: %v", key, err)
	}

	return result
}

// unavailableMessage is the degraded placeholder shown when the model
// declines, errors, or has no credential
func unavailableMessage(err error) string {
	if errors.Is(err, domain.ErrModelUnavailable) {
		return "AI analysis is not configured on this server. Product data above is still complete."
	}
	return "AI analysis is temporarily unavailable. Please try again shortly; product data above is unaffected."
}

// analysisKey builds the logical cache key: kind + normalized name + brand
func analysisKey(kind, name, brand string) string {
	return fmt.Sprintf("%s:%s:%s", kind, normalizeKeyPart(name), normalizeKeyPart(brand))
}

// normalizeKeyPart lowercases, strips special characters, and collapses
// whitespace so cosmetic name variants share one cache entry
func normalizeKeyPart(s string) string {
	if s == "" {
		return ""
	}
	result := strings.ToLower(s)
	result = nonAlphanumericRegex.ReplaceAllString(result, "")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// buildProductContext renders the product facts the prompts share
func buildProductContext(record *domain.ProductRecord) string {
	var b strings.Builder
	if record.IngredientsText != "" && record.IngredientsText != domain.NotAvailable {
		fmt.Fprintf(&b, "Ingredients: %s\n\n", record.IngredientsText)
	}
	if len(record.Nutrients) > 0 {
		b.WriteString("Nutritional Info:\n")
		for key, value := range record.Nutrients {
			if strings.Contains(key, "_100g") || strings.Contains(key, "_serving") {
				fmt.Fprintf(&b, "  %s: %g\n", key, value)
			}
		}
	}
	if record.NutriScore != "" {
		fmt.Fprintf(&b, "\nNutri-Score: %s\n", record.NutriScore)
	}
	if record.NovaGroup != "" {
		fmt.Fprintf(&b, "NOVA Group: %s\n", record.NovaGroup)
	}
	if len(record.Additives) > 0 {
		fmt.Fprintf(&b, "Additives: %s\n", strings.Join(record.Additives, ", "))
	}
	return b.String()
}

// extractRating pulls an X/10 rating out of analysis text, defaulting to 5.0
func extractRating(text string) float64 {
	m := ratingRegex.FindStringSubmatch(text)
	if m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v >= 0 && v <= 10 {
			return v
		}
	}
	return defaultRating
}

// extractNutritionMetrics pulls numeric estimates from the analysis text and
// back-fills anything missing from the record's own nutrient data
func extractNutritionMetrics(text string, record *domain.ProductRecord) map[string]float64 {
	metrics := make(map[string]float64)

	for name, pattern := range metricPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				metrics[name] = v
			}
		}
	}

	for name, fb := range nutrientFallbacks {
		if _, ok := metrics[name]; ok {
			continue
		}
		if v, ok := record.Nutrients[fb.key]; ok {
			metrics[name] = v * fb.scale
		}
	}

	if _, ok := metrics["additive_count"]; !ok {
		metrics["additive_count"] = float64(len(record.Additives))
	}

	return metrics
}

func orPlaceholder(s string) string {
	if s == "" {
		return "?"
	}
	return s
}
