package usda

import (
	"fmt"
	"strings"
	"time"

	"github.com/labelcheck/backend/internal/domain"
)

// USDA nutrient IDs for the nutrients we translate
const (
	NutrientIDEnergy       = 1008 // Calories (kcal)
	NutrientIDProtein      = 1003 // Protein (g)
	NutrientIDTotalFat     = 1004 // Total fat (g)
	NutrientIDCarbohydrate = 1005 // Carbohydrates (g)
	NutrientIDFiber        = 1079 // Dietary fiber (g)
	NutrientIDSodium       = 1093 // Sodium (mg)
	NutrientIDSaturatedFat = 1258 // Saturated fat (g)
	NutrientIDSugars       = 2000 // Total sugars (g)
)

// nutrientKeys maps USDA nutrient IDs to the OFF-style per-100g keys used in
// ProductRecord.Nutrients, so USDA data merges cleanly with OFF data.
var nutrientKeys = map[int]string{
	NutrientIDEnergy:       "energy-kcal_100g",
	NutrientIDProtein:      "proteins_100g",
	NutrientIDTotalFat:     "fat_100g",
	NutrientIDCarbohydrate: "carbohydrates_100g",
	NutrientIDFiber:        "fiber_100g",
	NutrientIDSodium:       "sodium_100g",
	NutrientIDSaturatedFat: "saturated-fat_100g",
	NutrientIDSugars:       "sugars_100g",
}

// searchResponse is the /v1/foods/search envelope
type searchResponse struct {
	Foods     []searchFood `json:"foods"`
	TotalHits int          `json:"totalHits"`
}

type searchFood struct {
	FdcID        int64  `json:"fdcId"`
	Description  string `json:"description"`
	BrandOwner   string `json:"brandOwner"`
	FoodCategory string `json:"foodCategory"`
	DataType     string `json:"dataType"`
}

// foodDetail is the /v1/food/{id} payload. Nutrient entries come in two
// shapes depending on the format parameter and data type; foodNutrient
// accepts both.
type foodDetail struct {
	Description     string         `json:"description"`
	BrandOwner      string         `json:"brandOwner"`
	MarketCountry   string         `json:"marketCountry"`
	Ingredients     string         `json:"ingredients"`
	ServingSize     float64        `json:"servingSize"`
	ServingSizeUnit string         `json:"servingSizeUnit"`
	FoodNutrients   []foodNutrient `json:"foodNutrients"`
}

type foodNutrient struct {
	// Flattened shape (search / abridged detail)
	NutrientID   int     `json:"nutrientId"`
	NutrientName string  `json:"nutrientName"`
	UnitName     string  `json:"unitName"`
	Value        float64 `json:"value"`

	// Nested shape (full detail)
	Amount   float64      `json:"amount"`
	Nutrient *nutrientRef `json:"nutrient"`
}

type nutrientRef struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	UnitName string `json:"unitName"`
}

// id returns the nutrient ID regardless of payload shape
func (n *foodNutrient) id() int {
	if n.NutrientID != 0 {
		return n.NutrientID
	}
	if n.Nutrient != nil {
		return n.Nutrient.ID
	}
	return 0
}

// amount returns the nutrient value regardless of payload shape
func (n *foodNutrient) amount() float64 {
	if n.Value != 0 {
		return n.Value
	}
	return n.Amount
}

// unit returns the unit name regardless of payload shape
func (n *foodNutrient) unit() string {
	if n.UnitName != "" {
		return n.UnitName
	}
	if n.Nutrient != nil {
		return n.Nutrient.UnitName
	}
	return ""
}

// mapProduct normalizes a USDA search hit plus its detail into the common
// ProductRecord shape. USDA is the sparser source: grade fields, tags, and
// packaging all fall back to the documented sentinels.
func mapProduct(code string, food *searchFood, detail *foodDetail) *domain.ProductRecord {
	name := food.Description
	if name == "" {
		name = detail.Description
	}

	return &domain.ProductRecord{
		Barcode:         code,
		Name:            orDefault(name, domain.UnknownProduct),
		Brand:           orDefault(firstNonEmpty(food.BrandOwner, detail.BrandOwner), domain.UnknownBrand),
		Category:        orDefault(food.FoodCategory, domain.UnknownCategory),
		Origin:          orDefault(detail.MarketCountry, domain.UnknownOrigin),
		IngredientsText: orDefault(detail.Ingredients, domain.NotAvailable),
		IngredientsList: []string{}, // USDA does not enumerate ingredients
		Nutrients:       mapNutrients(detail.FoodNutrients),
		Allergens:       []string{},
		Additives:       []string{},
		ServingSize:     formatServingSize(detail.ServingSize, detail.ServingSizeUnit),
		Packaging:       domain.NotSpecified,
		Source:          domain.SourceUSDA,
		FetchedAt:       time.Now(),
	}
}

// mapNutrients translates USDA nutrient entries into OFF-style per-100g
// keys. Sodium is reported in mg and converted to grams to match the OFF
// basis. Unknown nutrient IDs are dropped.
func mapNutrients(nutrients []foodNutrient) map[string]float64 {
	out := make(map[string]float64)
	for i := range nutrients {
		n := &nutrients[i]
		key, ok := nutrientKeys[n.id()]
		if !ok {
			continue
		}
		value := n.amount()
		if n.id() == NutrientIDSodium && strings.EqualFold(n.unit(), "mg") {
			value = value / 1000
		}
		out[key] = value
	}
	return out
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func formatServingSize(size float64, unit string) string {
	if size == 0 {
		return domain.NotSpecified
	}
	return strings.TrimSpace(fmt.Sprintf("%g %s", size, unit))
}
