package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/productcat/backend/internal/domain"
)

// schemaFor converts a reply structure into a JSON Schema. Every key is
// required and no other keys are allowed.
func schemaFor(structure domain.JSONStructure) map[string]any {
	return objectSchema(structure)
}

func objectSchema(fields map[string]any) map[string]any {
	properties := make(map[string]any, len(fields))
	required := make([]any, 0, len(fields))

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		properties[key] = valueSchema(fields[key])
		required = append(required, key)
	}

	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

func valueSchema(value any) map[string]any {
	switch v := value.(type) {
	case []any:
		if len(v) == 0 {
			return map[string]any{"type": "array"}
		}
		return map[string]any{"type": "array", "items": valueSchema(v[0])}
	case []string:
		if len(v) == 0 {
			return map[string]any{"type": "array"}
		}
		return map[string]any{"type": "array", "items": valueSchema(v[0])}
	case map[string]any:
		return objectSchema(v)
	case domain.JSONStructure:
		return objectSchema(v)
	case string:
		switch v {
		case "number", "integer", "boolean", "string":
			return map[string]any{"type": v}
		}
		return map[string]any{"type": "string"}
	default:
		return map[string]any{}
	}
}

// validateShape checks a parsed model reply against the requested structure
func validateShape(structure domain.JSONStructure, response map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schemaFor(structure)),
		gojsonschema.NewGoLoader(response),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrResponseShapeMismatch, err)
	}

	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return fmt.Errorf("%w: %s", domain.ErrResponseShapeMismatch, strings.Join(problems, "; "))
	}
	return nil
}
