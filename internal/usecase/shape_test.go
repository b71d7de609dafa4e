package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/productcat/backend/internal/domain"
)

func TestSchemaFor(t *testing.T) {
	schema := schemaFor(domain.CategoryStructure())

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, false, schema["additionalProperties"])
	assert.Equal(t, []any{"type", "variety"}, schema["required"])

	properties := schema["properties"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "string"}, properties["type"])
	assert.Equal(t, map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}, properties["variety"])
}

func TestValidateShape(t *testing.T) {
	tests := []struct {
		name      string
		structure domain.JSONStructure
		response  map[string]any
		wantErr   bool
	}{
		{
			name:      "basic valid",
			structure: domain.CategoryStructure(),
			response:  map[string]any{"type": "Bread", "variety": []any{"White", "Sliced"}},
		},
		{
			name:      "empty list is valid",
			structure: domain.CategoryStructure(),
			response:  map[string]any{"type": "Bread", "variety": []any{}},
		},
		{
			name:      "null list",
			structure: domain.CategoryStructure(),
			response:  map[string]any{"type": "Bread", "variety": nil},
			wantErr:   true,
		},
		{
			name:      "type as number",
			structure: domain.CategoryStructure(),
			response:  map[string]any{"type": 3.0, "variety": []any{}},
			wantErr:   true,
		},
		{
			name:      "enhanced missing pairings",
			structure: domain.EnhancedCategoryStructure(),
			response: map[string]any{
				"type": "Milk", "variety": []any{}, "dietary_attributes": []any{},
				"flavor_profile": []any{}, "usage_occasions": []any{}, "health_benefits": []any{},
				"certifications": []any{}, "texture": []any{}, "ingredients_highlight": []any{},
				"serving_suggestions": []any{},
			},
			wantErr: true,
		},
		{
			name:      "nested structure",
			structure: domain.JSONStructure{"brand": map[string]any{"name": "string"}},
			response:  map[string]any{"brand": map[string]any{"name": "Oatly"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateShape(tt.structure, tt.response)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrResponseShapeMismatch)
				return
			}
			assert.NoError(t, err)
		})
	}
}
