package prompt

import (
	"strings"

	"github.com/productcat/backend/internal/domain"
)

// Format substitutes {name} placeholders in tmpl with values from variables.
// "{{" and "}}" produce literal braces. A brace pair whose content is not a
// valid identifier is copied through unchanged. Substituted values are not
// scanned for placeholders.
func Format(name, tmpl string, variables map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(tmpl))

	for i := 0; i < len(tmpl); i++ {
		ch := tmpl[i]

		switch {
		case ch == '{' && i+1 < len(tmpl) && tmpl[i+1] == '{':
			b.WriteByte('{')
			i++
		case ch == '}' && i+1 < len(tmpl) && tmpl[i+1] == '}':
			b.WriteByte('}')
			i++
		case ch == '{':
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				b.WriteString(tmpl[i:])
				return b.String(), nil
			}
			key := tmpl[i+1 : i+1+end]
			if !isIdentifier(key) {
				b.WriteByte(ch)
				continue
			}
			value, ok := variables[key]
			if !ok {
				return "", &domain.MissingVariableError{Template: name, Key: key}
			}
			b.WriteString(value)
			i += end + 1
		default:
			b.WriteByte(ch)
		}
	}

	return b.String(), nil
}

// Placeholders lists the distinct placeholder names in tmpl, in order of appearance
func Placeholders(tmpl string) []string {
	var names []string
	seen := make(map[string]bool)

	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '{' {
			continue
		}
		if i+1 < len(tmpl) && tmpl[i+1] == '{' {
			i++
			continue
		}
		end := strings.IndexByte(tmpl[i+1:], '}')
		if end < 0 {
			break
		}
		key := tmpl[i+1 : i+1+end]
		if isIdentifier(key) {
			if !seen[key] {
				seen[key] = true
				names = append(names, key)
			}
			i += end + 1
		}
	}

	return names
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
