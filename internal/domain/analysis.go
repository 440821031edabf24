package domain

// Analysis kinds. Each kind maps to its own prompt and its own cache entry.
const (
	AnalysisHealth        = "health"
	AnalysisEnvironment   = "environment"
	AnalysisAllergen      = "allergen"
	AnalysisRecipes       = "recipes"
	AnalysisCertification = "certification"
)

// AnalysisResult is a generative analysis of a resolved product. Rating and
// Metrics are derived from the model text after generation; when the model is
// unavailable the Analysis field carries a descriptive placeholder and
// Degraded is set.
type AnalysisResult struct {
	Kind     string             `json:"kind"`
	Analysis string             `json:"analysis"`
	Rating   float64            `json:"rating,omitempty"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
	Degraded bool               `json:"degraded,omitempty"`
}

// ChatMessage is one turn in a product conversation
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}
