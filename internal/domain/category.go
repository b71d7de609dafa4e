package domain

import "time"

// JSONStructure describes the reply shape requested from the model.
// Each value is either "string" or []any{"string"}.
type JSONStructure map[string]any

// ModelResponse is the parsed model reply together with the cleaned raw text
type ModelResponse struct {
	Response    map[string]any `json:"response"`
	RawResponse string         `json:"raw_response"`
}

// CategoryResponse is the basic categorization result
type CategoryResponse struct {
	Type    string   `json:"type" yaml:"type"`
	Variety []string `json:"variety" yaml:"variety"`
}

// EnhancedCategoryResponse is the enriched categorization result
type EnhancedCategoryResponse struct {
	Type                 string   `json:"type" yaml:"type"`
	Variety              []string `json:"variety" yaml:"variety"`
	DietaryAttributes    []string `json:"dietary_attributes" yaml:"dietary_attributes"`
	FlavorProfile        []string `json:"flavor_profile" yaml:"flavor_profile"`
	UsageOccasions       []string `json:"usage_occasions" yaml:"usage_occasions"`
	HealthBenefits       []string `json:"health_benefits" yaml:"health_benefits"`
	Certifications       []string `json:"certifications" yaml:"certifications"`
	Texture              []string `json:"texture" yaml:"texture"`
	IngredientsHighlight []string `json:"ingredients_highlight" yaml:"ingredients_highlight"`
	ServingSuggestions   []string `json:"serving_suggestions" yaml:"serving_suggestions"`
	Pairings             []string `json:"pairings" yaml:"pairings"`
}

// CategoryStructure is the reply shape for CategoryResponse
func CategoryStructure() JSONStructure {
	return JSONStructure{
		"type":    "string",
		"variety": []any{"string"},
	}
}

// EnhancedCategoryStructure is the reply shape for EnhancedCategoryResponse
func EnhancedCategoryStructure() JSONStructure {
	s := JSONStructure{"type": "string"}
	for _, key := range []string{
		"variety",
		"dietary_attributes",
		"flavor_profile",
		"usage_occasions",
		"health_benefits",
		"certifications",
		"texture",
		"ingredients_highlight",
		"serving_suggestions",
		"pairings",
	} {
		s[key] = []any{"string"}
	}
	return s
}

// HealthStatus is returned by the health endpoint
type HealthStatus struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}
