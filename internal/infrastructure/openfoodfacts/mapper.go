package openfoodfacts

import (
	"fmt"
	"strings"
	"time"

	"github.com/labelcheck/backend/internal/domain"
)

// productResponse is the OFF product-by-barcode envelope. status is 1 when
// the barcode is known, 0 otherwise.
type productResponse struct {
	Status  int            `json:"status"`
	Product productPayload `json:"product"`
}

// productPayload holds the subset of OFF product fields we extract
type productPayload struct {
	ProductName     string         `json:"product_name"`
	Brands          string         `json:"brands"`
	CategoriesTags  []string       `json:"categories_tags"`
	Countries       string         `json:"countries"`
	ImageURL        string         `json:"image_url"`
	IngredientsText string         `json:"ingredients_text"`
	Ingredients     []ingredient   `json:"ingredients"`
	Nutriments      map[string]any `json:"nutriments"`
	NutritionGrades string         `json:"nutrition_grades"`
	NovaGroup       any            `json:"nova_group"` // number or string depending on product
	EcoscoreGrade   string         `json:"ecoscore_grade"`
	Packaging       string         `json:"packaging"`
	AdditivesTags   []string       `json:"additives_tags"`
	Labels          string         `json:"labels"`
	AllergensTags   []string       `json:"allergens_tags"`
	ServingSize     string         `json:"serving_size"`
	Traces          string         `json:"traces"`
}

type ingredient struct {
	Text string `json:"text"`
}

// searchResponse is the OFF name-search envelope
type searchResponse struct {
	Products []searchProduct `json:"products"`
}

type searchProduct struct {
	Code        string `json:"code"`
	ProductName string `json:"product_name"`
	Brands      string `json:"brands"`
	ImageURL    string `json:"image_url"`
}

// mapProduct normalizes an OFF payload into the common ProductRecord shape,
// applying the documented sentinel defaults for anything OFF omits.
func mapProduct(code string, p *productPayload) *domain.ProductRecord {
	record := &domain.ProductRecord{
		Barcode:         code,
		Name:            orDefault(p.ProductName, domain.UnknownProduct),
		Brand:           orDefault(p.Brands, domain.UnknownBrand),
		Category:        extractCategory(p.CategoriesTags),
		Origin:          orDefault(p.Countries, domain.UnknownOrigin),
		ImageURL:        p.ImageURL,
		IngredientsText: orDefault(p.IngredientsText, domain.NotAvailable),
		IngredientsList: extractIngredients(p.Ingredients),
		Nutrients:       extractNutrients(p.Nutriments),
		NutriScore:      strings.ToUpper(p.NutritionGrades),
		NovaGroup:       formatNovaGroup(p.NovaGroup),
		EcoScore:        strings.ToUpper(p.EcoscoreGrade),
		Allergens:       humanizeTags(p.AllergensTags),
		Additives:       humanizeTags(p.AdditivesTags),
		ServingSize:     orDefault(p.ServingSize, domain.NotSpecified),
		Packaging:       orDefault(p.Packaging, domain.NotSpecified),
		Labels:          p.Labels,
		Traces:          p.Traces,
		Source:          domain.SourceOpenFoodFacts,
		FetchedAt:       time.Now(),
	}
	return record
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// extractCategory takes the first category tag, strips the language prefix,
// and capitalizes it ("en:salted-snacks" -> "Salted-snacks")
func extractCategory(tags []string) string {
	if len(tags) == 0 {
		return domain.UnknownCategory
	}
	cat := stripLangPrefix(tags[0])
	if cat == "" {
		return domain.UnknownCategory
	}
	return strings.ToUpper(cat[:1]) + cat[1:]
}

func extractIngredients(ings []ingredient) []string {
	list := make([]string, 0, len(ings))
	for _, ing := range ings {
		if ing.Text != "" {
			list = append(list, ing.Text)
		}
	}
	return list
}

// extractNutrients keeps only numeric nutriment entries. OFF mixes numbers
// with unit strings and serving-size text in the same map.
func extractNutrients(nutriments map[string]any) map[string]float64 {
	out := make(map[string]float64, len(nutriments))
	for key, value := range nutriments {
		if num, ok := value.(float64); ok {
			out[key] = num
		}
	}
	return out
}

// humanizeTags strips the language prefix and human-cases OFF tags
// ("en:palm-oil" -> "Palm oil")
func humanizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		t := stripLangPrefix(tag)
		t = strings.ReplaceAll(t, "-", " ")
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, strings.ToUpper(t[:1])+t[1:])
	}
	return out
}

func stripLangPrefix(tag string) string {
	if idx := strings.Index(tag, ":"); idx >= 0 {
		return tag[idx+1:]
	}
	return tag
}

// formatNovaGroup renders the NOVA group as a plain string; OFF returns it
// as a number for most products and a string for some legacy entries.
func formatNovaGroup(v any) string {
	switch n := v.(type) {
	case float64:
		return fmt.Sprintf("%d", int(n))
	case string:
		return n
	default:
		return ""
	}
}
