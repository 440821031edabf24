package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/labelcheck/backend/internal/domain"
)

// fakeModel is a scripted domain.TextGenerator
type fakeModel struct {
	text    string
	err     error
	enabled bool
	calls   int
}

func (m *fakeModel) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

func (m *fakeModel) Enabled() bool { return m.enabled }

func testRecord() *domain.ProductRecord {
	return &domain.ProductRecord{
		Barcode:         "737628064502",
		Name:            "Kettle Chips",
		Brand:           "Kettle Foods",
		Category:        "Salted-snacks",
		Origin:          "United States",
		IngredientsText: "Potatoes, sunflower oil, salt",
		Nutrients: map[string]float64{
			"sugars_100g":        2.0,
			"proteins_100g":      6.5,
			"sodium_100g":        0.5,
			"fiber_100g":         4.0,
			"saturated-fat_100g": 1.1,
		},
		Additives: []string{"E330", "E322"},
	}
}

func TestExtractRating(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected float64
	}{
		{"rate slash", "I would rate this product 7/10 overall.", 7},
		{"rating out of", "Rating: 8.5 out of 10 for most consumers.", 8.5},
		{"score of", "Overall score of 3 / 10.", 3},
		{"no rating present", "This product contains potatoes and salt.", defaultRating},
		{"out of range falls back", "rating 15/10 is impossible", defaultRating},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractRating(tt.text); got != tt.expected {
				t.Errorf("extractRating(%q) = %v, want %v", tt.text, got, tt.expected)
			}
		})
	}
}

func TestExtractNutritionMetrics_FromText(t *testing.T) {
	text := "Calories per serving: 190\nSugar content: 12.5\nSodium: 160\nAdditives: 3"
	metrics := extractNutritionMetrics(text, &domain.ProductRecord{})

	if metrics["calories_per_serving"] != 190 {
		t.Errorf("calories_per_serving = %v, want 190", metrics["calories_per_serving"])
	}
	if metrics["sugar_content_g"] != 12.5 {
		t.Errorf("sugar_content_g = %v, want 12.5", metrics["sugar_content_g"])
	}
	if metrics["sodium_mg"] != 160 {
		t.Errorf("sodium_mg = %v, want 160", metrics["sodium_mg"])
	}
	if metrics["additive_count"] != 3 {
		t.Errorf("additive_count = %v, want 3", metrics["additive_count"])
	}
}

func TestExtractNutritionMetrics_RecordFallback(t *testing.T) {
	// Text carries no numbers; the record's own data back-fills
	metrics := extractNutritionMetrics("No numeric details provided.", testRecord())

	if metrics["protein_g"] != 6.5 {
		t.Errorf("protein_g = %v, want 6.5", metrics["protein_g"])
	}
	if metrics["sodium_mg"] != 500 {
		t.Errorf("sodium_mg = %v, want 500 (grams scaled to mg)", metrics["sodium_mg"])
	}
	if metrics["fiber_g"] != 4.0 {
		t.Errorf("fiber_g = %v, want 4.0", metrics["fiber_g"])
	}
	if metrics["additive_count"] != 2 {
		t.Errorf("additive_count = %v, want 2 (from additives list)", metrics["additive_count"])
	}
}

func TestNormalizeKeyPart(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"Kettle Chips!", "kettle chips"},
		{"  Multiple   Spaces  ", "multiple spaces"},
		{"Crème Brûlée", "crme brle"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeKeyPart(tt.in); got != tt.expected {
			t.Errorf("normalizeKeyPart(%q) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}

func TestAnalysisKey_CosmeticVariantsCollide(t *testing.T) {
	a := analysisKey(domain.AnalysisHealth, "Kettle Chips!", "Kettle Foods")
	b := analysisKey(domain.AnalysisHealth, "kettle  chips", "KETTLE FOODS")
	if a != b {
		t.Errorf("keys differ: %q vs %q", a, b)
	}

	c := analysisKey(domain.AnalysisEnvironment, "Kettle Chips", "Kettle Foods")
	if a == c {
		t.Error("different kinds must not share a key")
	}
}

func TestAnalyzeHealth_CachesResult(t *testing.T) {
	model := &fakeModel{text: "Health analysis. I rate this 7/10.\nCalories: 190", enabled: true}
	svc := NewAnalysisService(newFakeCache(), model)

	first := svc.AnalyzeHealth(context.Background(), testRecord())
	if first.Degraded {
		t.Fatal("expected a live result, got degraded")
	}
	if first.Kind != domain.AnalysisHealth {
		t.Errorf("Kind = %s, want %s", first.Kind, domain.AnalysisHealth)
	}
	if first.Rating != 7 {
		t.Errorf("Rating = %v, want 7", first.Rating)
	}
	if first.Metrics == nil {
		t.Fatal("expected metrics on health analysis")
	}
	if first.Metrics["calories_per_serving"] != 190 {
		t.Errorf("calories_per_serving = %v, want 190", first.Metrics["calories_per_serving"])
	}

	second := svc.AnalyzeHealth(context.Background(), testRecord())
	if model.calls != 1 {
		t.Errorf("model calls = %d, want 1 (second analysis cached)", model.calls)
	}
	if second.Analysis != first.Analysis {
		t.Error("cached analysis text differs from original")
	}
}

func TestAnalyzeEnvironment_NoMetrics(t *testing.T) {
	model := &fakeModel{text: "Environmental rating: 6/10.", enabled: true}
	svc := NewAnalysisService(newFakeCache(), model)

	result := svc.AnalyzeEnvironment(context.Background(), testRecord())
	if result.Rating != 6 {
		t.Errorf("Rating = %v, want 6", result.Rating)
	}
	if result.Metrics != nil {
		t.Errorf("Metrics = %v, want nil for environment analysis", result.Metrics)
	}
}

func TestGenerate_ModelFailureDegrades(t *testing.T) {
	model := &fakeModel{err: domain.ErrModelUnavailable, enabled: false}
	svc := NewAnalysisService(newFakeCache(), model)

	result := svc.AnalyzeHealth(context.Background(), testRecord())
	if !result.Degraded {
		t.Fatal("expected degraded result")
	}
	if !strings.Contains(result.Analysis, "not configured") {
		t.Errorf("Analysis = %q, want disabled-model message", result.Analysis)
	}

	// Degraded placeholders are never cached; the model is retried next time
	svc.AnalyzeHealth(context.Background(), testRecord())
	if model.calls != 2 {
		t.Errorf("model calls = %d, want 2 (placeholder not cached)", model.calls)
	}
}

func TestGenerate_TransientFailureMessage(t *testing.T) {
	model := &fakeModel{err: context.DeadlineExceeded, enabled: true}
	svc := NewAnalysisService(newFakeCache(), model)

	result := svc.AnalyzeAllergens(context.Background(), testRecord())
	if !result.Degraded {
		t.Fatal("expected degraded result")
	}
	if !strings.Contains(result.Analysis, "temporarily unavailable") {
		t.Errorf("Analysis = %q, want transient-failure message", result.Analysis)
	}
}

func TestCheckCertification_KindIncludesScheme(t *testing.T) {
	model := &fakeModel{text: "Likely compliant. Score 8/10.", enabled: true}
	cache := newFakeCache()
	svc := NewAnalysisService(cache, model)

	halal := svc.CheckCertification(context.Background(), testRecord(), "Halal")
	if halal.Kind != domain.AnalysisCertification+"_halal" {
		t.Errorf("Kind = %s, want certification_halal", halal.Kind)
	}

	// A different scheme is a separate analysis, not a cache hit
	svc.CheckCertification(context.Background(), testRecord(), "vegan")
	if model.calls != 2 {
		t.Errorf("model calls = %d, want 2 (schemes cached separately)", model.calls)
	}
}

func TestSuggestRecipes_BrandIndependentKey(t *testing.T) {
	model := &fakeModel{text: "Three homemade alternatives.", enabled: true}
	svc := NewAnalysisService(newFakeCache(), model)

	record := testRecord()
	svc.SuggestRecipes(context.Background(), record)

	otherBrand := testRecord()
	otherBrand.Brand = "Store Brand"
	svc.SuggestRecipes(context.Background(), otherBrand)

	if model.calls != 1 {
		t.Errorf("model calls = %d, want 1 (recipes keyed by name+category, not brand)", model.calls)
	}
}

func TestChat_UsesHistoryAndIsUncached(t *testing.T) {
	model := &fakeModel{text: "It contains no milk.", enabled: true}
	svc := NewAnalysisService(newFakeCache(), model)

	history := []domain.ChatMessage{
		{Role: "user", Content: "Is it vegan?"},
		{Role: "assistant", Content: "Yes, the listed ingredients are plant-based."},
	}

	answer := svc.Chat(context.Background(), testRecord(), history, "Does it contain milk?")
	if answer != "It contains no milk." {
		t.Errorf("answer = %q", answer)
	}

	svc.Chat(context.Background(), testRecord(), history, "Does it contain milk?")
	if model.calls != 2 {
		t.Errorf("model calls = %d, want 2 (chat replies are never cached)", model.calls)
	}
}

func TestChat_ModelFailureReturnsPlaceholder(t *testing.T) {
	model := &fakeModel{err: domain.ErrModelUnavailable}
	svc := NewAnalysisService(newFakeCache(), model)

	answer := svc.Chat(context.Background(), testRecord(), nil, "Is it healthy?")
	if !strings.Contains(answer, "not configured") {
		t.Errorf("answer = %q, want disabled-model message", answer)
	}
}

func TestBuildProductContext(t *testing.T) {
	ctx := buildProductContext(testRecord())

	if !strings.Contains(ctx, "Potatoes, sunflower oil, salt") {
		t.Error("context missing ingredients")
	}
	if !strings.Contains(ctx, "sugars_100g") {
		t.Error("context missing nutrient lines")
	}
	if !strings.Contains(ctx, "E330") {
		t.Error("context missing additives")
	}

	// Sentinel ingredient text is omitted entirely
	sparse := &domain.ProductRecord{IngredientsText: domain.NotAvailable}
	if strings.Contains(buildProductContext(sparse), domain.NotAvailable) {
		t.Error("sentinel ingredient text leaked into prompt context")
	}
}
