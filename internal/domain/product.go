package domain

import "time"

// Sentinel defaults used when a source lacks a field. Missing data is always
// explicit; no field is silently left empty.
const (
	UnknownProduct  = "Unknown Product"
	UnknownBrand    = "Unknown Brand"
	UnknownCategory = "Unknown"
	UnknownOrigin   = "Unknown"
	NotAvailable    = "Not available"
	NotSpecified    = "Not specified"
)

// Source identifiers carried in ProductRecord.Source
const (
	SourceOpenFoodFacts = "openfoodfacts"
	SourceUSDA          = "usda"
)

// ProductRecord is the normalized shape every source maps into.
// Nutrient keys follow the OpenFoodFacts convention: the suffix carries the
// unit basis (`_100g` = per 100 g, `_serving` = per serving).
type ProductRecord struct {
	Barcode         string             `json:"barcode"`
	Name            string             `json:"name"`
	Brand           string             `json:"brand"`
	Category        string             `json:"category"`
	Origin          string             `json:"origin"`
	ImageURL        string             `json:"imageUrl,omitempty"`
	IngredientsText string             `json:"ingredientsText"`
	IngredientsList []string           `json:"ingredientsList"`
	Nutrients       map[string]float64 `json:"nutrients"`
	NutriScore      string             `json:"nutriScore,omitempty"`
	NovaGroup       string             `json:"novaGroup,omitempty"`
	EcoScore        string             `json:"ecoScore,omitempty"`
	Allergens       []string           `json:"allergens"`
	Additives       []string           `json:"additives"`
	ServingSize     string             `json:"servingSize"`
	Packaging       string             `json:"packaging"`
	Labels          string             `json:"labels,omitempty"`
	Traces          string             `json:"traces,omitempty"`
	Source          string             `json:"source"`
	FetchedAt       time.Time          `json:"fetchedAt,omitempty"`
}

// ProductSummary is a lightweight search result: enough to render a pick
// list and do a follow-up barcode resolution, nothing more.
type ProductSummary struct {
	Barcode  string `json:"barcode"`
	Name     string `json:"name"`
	Brand    string `json:"brand"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// ResolveRequest is the body of a barcode resolution request
type ResolveRequest struct {
	Barcode string `json:"barcode" binding:"required"`
}
