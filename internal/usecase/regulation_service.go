package usecase

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/labelcheck/backend/internal/domain"
)

const (
	bannedFileName  = "banned_products.json"
	recallsFileName = "product_recalls.json"
)

// RegulationService answers banned-ingredient, banned-product, recall, and
// compliance questions against two static reference tables. The tables are
// seeded on first run and never expire; they are reference data, not caches.
type RegulationService struct {
	bannedFile  string
	recallsFile string

	// in-memory fallback when the data directory is unusable
	seedBanned  domain.BannedData
	seedRecalls domain.RecallData
}

// NewRegulationService seeds the reference files under dataDir if absent.
// An unusable data directory degrades to the built-in seed tables; it is
// never fatal.
func NewRegulationService(dataDir string) *RegulationService {
	s := &RegulationService{
		bannedFile:  filepath.Join(dataDir, bannedFileName),
		recallsFile: filepath.Join(dataDir, recallsFileName),
		seedBanned:  seedBannedData(),
		seedRecalls: seedRecallData(),
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Printf("[REGULATION] WARNING: data dir %s unavailable (%v) - using built-in tables", dataDir, err)
		return s
	}

	s.seedFile(s.bannedFile, s.seedBanned)
	s.seedFile(s.recallsFile, s.seedRecalls)
	return s
}

// seedFile writes the seed table if the file does not exist yet
func (s *RegulationService) seedFile(path string, seed any) {
	if _, err := os.Stat(path); err == nil {
		return
	}
	data, err := json.MarshalIndent(seed, "", "  ")
	if err != nil {
		log.Printf("[REGULATION] seed marshal failed for %s: %v", path, err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("[REGULATION] seed write failed for %s: %v", path, err)
	}
}

// BannedData loads the banned reference table, falling back to the seed
func (s *RegulationService) BannedData() domain.BannedData {
	raw, err := os.ReadFile(s.bannedFile)
	if err != nil {
		return s.seedBanned
	}
	var data domain.BannedData
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Printf("[REGULATION] unreadable banned table, using built-in: %v", err)
		return s.seedBanned
	}
	return data
}

// RecallData loads the recall reference table, falling back to the seed
func (s *RegulationService) RecallData() domain.RecallData {
	raw, err := os.ReadFile(s.recallsFile)
	if err != nil {
		return s.seedRecalls
	}
	var data domain.RecallData
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Printf("[REGULATION] unreadable recall table, using built-in: %v", err)
		return s.seedRecalls
	}
	return data
}

// CheckIngredients scans free-text ingredients for banned ingredients
func (s *RegulationService) CheckIngredients(ingredientsText string) []domain.BannedIngredientMatch {
	matches := []domain.BannedIngredientMatch{}
	if ingredientsText == "" || ingredientsText == domain.NotAvailable {
		return matches
	}

	text := strings.ToLower(ingredientsText)
	for name, entry := range s.BannedData().Ingredients {
		if strings.Contains(text, strings.ToLower(name)) {
			matches = append(matches, domain.BannedIngredientMatch{
				Ingredient:       name,
				BannedIngredient: entry,
			})
		}
	}
	return matches
}

// CheckBannedProducts matches a product name against the banned-product table
func (s *RegulationService) CheckBannedProducts(productName string) []domain.BannedProductMatch {
	matches := []domain.BannedProductMatch{}
	for name, entry := range s.BannedData().Products {
		if strings.EqualFold(productName, name) {
			matches = append(matches, domain.BannedProductMatch{
				Product:       name,
				BannedProduct: entry,
			})
		}
	}
	return matches
}

// CheckRecalls returns recall notices mentioning the product or brand name
func (s *RegulationService) CheckRecalls(productName, brandName string) []domain.Recall {
	terms := []string{strings.ToLower(productName), strings.ToLower(brandName)}
	matches := []domain.Recall{}
	for _, recall := range s.RecallData().RecentRecalls {
		recallName := strings.ToLower(recall.ProductName)
		for _, term := range terms {
			if term != "" && strings.Contains(recallName, term) {
				matches = append(matches, recall)
				break
			}
		}
	}
	return matches
}

// CheckCompliance reports which comma-separated ingredients are restricted
// for a region
func (s *RegulationService) CheckCompliance(ingredients, region string) domain.ComplianceResult {
	banned := s.BannedData()
	issues := []string{}
	for _, raw := range strings.Split(ingredients, ",") {
		ing := strings.ToLower(strings.TrimSpace(raw))
		if ing == "" {
			continue
		}
		for bannedIng := range banned.Ingredients {
			if strings.Contains(strings.ToLower(bannedIng), ing) {
				issues = append(issues, fmt.Sprintf("%s is restricted in %s.", ing, region))
			}
		}
	}
	return domain.ComplianceResult{Compliant: len(issues) == 0, Issues: issues}
}

// seedBannedData is the first-run banned-ingredient/product table
func seedBannedData() domain.BannedData {
	return domain.BannedData{
		Ingredients: map[string]domain.BannedIngredient{
			"Potassium Bromate": {
				BannedIn:     []string{"European Union", "United Kingdom", "Canada", "Brazil", "China", "India"},
				Reason:       "Potential carcinogen",
				Alternatives: []string{"Ascorbic acid", "Enzymes"},
			},
			"Brominated Vegetable Oil (BVO)": {
				BannedIn:     []string{"European Union", "Japan", "India"},
				Reason:       "Thyroid problems",
				Alternatives: []string{"Natural emulsifiers"},
			},
			"Azodicarbonamide": {
				BannedIn:     []string{"European Union", "Australia", "United Kingdom", "Singapore"},
				Reason:       "Respiratory issues",
				Alternatives: []string{"Ascorbic acid"},
			},
			"BHA/BHT": {
				BannedIn:     []string{"Japan", "European Union"},
				Reason:       "Potential endocrine disruptors",
				Alternatives: []string{"Vitamin E", "Rosemary extract"},
			},
			"Tartrazine (Yellow #5)": {
				BannedIn:     []string{"Norway", "Austria"},
				Reason:       "Hyperactivity in children",
				Alternatives: []string{"Natural food colors"},
			},
			"Sodium Cyclamate": {
				BannedIn:     []string{"United States"},
				Reason:       "Cancer in animal studies",
				Alternatives: []string{"Stevia"},
			},
			"Titanium Dioxide (E171)": {
				BannedIn:     []string{"European Union"},
				Reason:       "Potential genotoxicity",
				Alternatives: []string{"Natural whitening agents"},
			},
		},
		Products: map[string]domain.BannedProduct{
			"Unpasteurized dairy products": {
				BannedIn:     []string{"Australia", "Canada", "Scotland"},
				Reason:       "Harmful bacteria risk",
				Alternatives: "Pasteurized dairy",
			},
			"Kinder Surprise Eggs (original)": {
				BannedIn:     []string{"United States"},
				Reason:       "Choking hazard",
				Alternatives: "Kinder Joy",
			},
		},
	}
}

// seedRecallData is the first-run recall table
func seedRecallData() domain.RecallData {
	return domain.RecallData{
		RecentRecalls: []domain.Recall{
			{
				ProductName:     "XYZ Organic Peanut Butter",
				Date:            "2024-02-15",
				Reason:          "Potential Salmonella",
				RegionsAffected: []string{"United States", "Canada"},
				BatchNumbers:    []string{"PB202401"},
			},
			{
				ProductName:     "ABC Infant Formula",
				Date:            "2024-01-22",
				Reason:          "Possible Cronobacter",
				RegionsAffected: []string{"United States"},
				BatchNumbers:    []string{"IF24A123"},
			},
		},
	}
}
