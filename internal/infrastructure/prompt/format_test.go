package prompt

import (
	"errors"
	"testing"

	"github.com/productcat/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		vars map[string]string
		want string
	}{
		{"no placeholders", "plain text", nil, "plain text"},
		{"single placeholder", "Product: {product_name}", map[string]string{"product_name": "Oat Milk"}, "Product: Oat Milk"},
		{"repeated placeholder", "{a}-{a}", map[string]string{"a": "x"}, "x-x"},
		{"extra variables ignored", "{a}", map[string]string{"a": "1", "b": "2"}, "1"},
		{"escaped braces", "Start with a {{ and end with a }}", nil, "Start with a { and end with a }"},
		{"escaped around placeholder", "{{{a}}}", map[string]string{"a": "x"}, "{x}"},
		{"value containing braces is not expanded", "{a}", map[string]string{"a": "{b}"}, "{b}"},
		{"non-identifier braces copied", `json: {"type": "string"}`, nil, `json: {"type": "string"}`},
		{"unterminated brace copied", "trailing {open", nil, "trailing {open"},
		{"lone closing brace copied", "a } b", nil, "a } b"},
		{"empty value", "[{a}]", map[string]string{"a": ""}, "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format("test", tt.tmpl, tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_MissingVariable(t *testing.T) {
	_, err := Format("pair", "{a} and {b}", map[string]string{"a": "x"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingVariable)

	var missing *domain.MissingVariableError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "b", missing.Key)
	assert.Equal(t, "pair", missing.Template)
	assert.Contains(t, err.Error(), `"b"`)
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders("{b} {{literal}} {a} {b} {not valid} {c_1}")
	assert.Equal(t, []string{"b", "a", "c_1"}, got)
}
