package domain

// BannedIngredient describes an ingredient banned or restricted in some
// jurisdictions, with the reason and suggested substitutes.
type BannedIngredient struct {
	BannedIn     []string `json:"banned_in"`
	Reason       string   `json:"reason"`
	Alternatives []string `json:"alternatives"`
}

// BannedProduct describes a whole product banned in some jurisdictions
type BannedProduct struct {
	BannedIn     []string `json:"banned_in"`
	Reason       string   `json:"reason"`
	Alternatives string   `json:"alternatives"`
}

// BannedData is the banned-ingredient/product reference table
type BannedData struct {
	Ingredients map[string]BannedIngredient `json:"ingredients"`
	Products    map[string]BannedProduct    `json:"products"`
}

// Recall is one recall notice in the recall reference table
type Recall struct {
	ProductName     string   `json:"product_name"`
	Date            string   `json:"date"`
	Reason          string   `json:"reason"`
	RegionsAffected []string `json:"regions_affected"`
	BatchNumbers    []string `json:"batch_numbers"`
}

// RecallData is the recall reference table
type RecallData struct {
	RecentRecalls []Recall `json:"recent_recalls"`
}

// BannedIngredientMatch is a banned ingredient found in a product's ingredient text
type BannedIngredientMatch struct {
	Ingredient string `json:"ingredient"`
	BannedIngredient
}

// BannedProductMatch is a banned product matched by name
type BannedProductMatch struct {
	Product string `json:"product"`
	BannedProduct
}

// ComplianceResult summarizes a per-region ingredient compliance check
type ComplianceResult struct {
	Compliant bool     `json:"compliant"`
	Issues    []string `json:"issues"`
}
