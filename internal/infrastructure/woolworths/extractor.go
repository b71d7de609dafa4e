package woolworths

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/productcat/backend/internal/domain"
	"go.uber.org/zap"
)

// Upstream field names
const (
	keyProduct              = "Product"
	keyAdditionalAttributes = "AdditionalAttributes"
	keyDisplayName          = "DisplayName"
	keyRichDescription      = "RichDescription"
	keyPackageSize          = "PackageSize"
	keySapCategories        = "SapCategories"

	attrDescription     = "description"
	attrIngredients     = "ingredients"
	attrDietary         = "lifestyleanddietarystatement"
	attrAllergy         = "allergystatement"
	attrDepartmentsJSON = "piesdepartmentnamesjson"
	attrSubcatsJSON     = "piessubcategorynamesjson"
)

// packageSizePatterns are tried in order; the first pattern that matches anywhere
// in the display name wins.
var packageSizePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?\s*(?:kg|g|ml|l|oz|lb))\b`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?\s*(?:KG|G|ML|L|OZ|LB))\b`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?\s*(?:kilogram|gram|milliliter|liter))s?\b`),
	regexp.MustCompile(`(?i)(\d+\s*(?:pk|pack|piece|pcs))s?\b`),
}

// htmlLineBreaks turns block-level tags into newlines. Other markup is left as is.
var htmlLineBreaks = strings.NewReplacer(
	"<br>", "\n",
	"<br/>", "\n",
	"<br />", "\n",
	"<div>", "",
	"</div>", "\n",
	"<p>", "",
	"</p>", "\n",
)

// Extractor flattens product-detail payloads into prompt variables
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates a new Extractor
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger.Named("extractor")}
}

// Extract pulls the prompt fields out of payload. It returns an empty map when
// the Product wrapper is missing and never fails on absent nested fields.
func (e *Extractor) Extract(payload domain.RawProductPayload) domain.ExtractedProductFields {
	product, ok := payload[keyProduct].(map[string]any)
	if !ok {
		e.logger.Error("invalid product details format: missing Product wrapper")
		return domain.ExtractedProductFields{}
	}
	attrs := object(product, keyAdditionalAttributes)

	displayName := str(product, keyDisplayName)

	description := str(product, keyRichDescription)
	if description == "" {
		description = str(attrs, attrDescription)
	}

	return domain.ExtractedProductFields{
		domain.FieldProductName:        displayName,
		domain.FieldProductDescription: CleanHTML(description),
		domain.FieldIngredients:        str(attrs, attrIngredients),
		domain.FieldPackageSize:        PackageSize(product, displayName),
		domain.FieldDietaryInfo:        fmt.Sprintf("%s | Allergy info: %s", str(attrs, attrDietary), str(attrs, attrAllergy)),
		domain.FieldDepartmentCategory: e.departmentCategory(product, attrs),
	}
}

// departmentCategory joins the four SAP hierarchy levels and appends any
// department and subcategory names found in the attribute JSON blobs.
func (e *Extractor) departmentCategory(product, attrs map[string]any) string {
	sap := object(product, keySapCategories)
	path := strings.Join([]string{
		str(sap, "SapDepartmentName"),
		str(sap, "SapCategoryName"),
		str(sap, "SapSubCategoryName"),
		str(sap, "SapSegmentName"),
	}, " > ")

	if names, err := departmentNames(str(attrs, attrDepartmentsJSON)); err != nil {
		e.logger.Warn("error parsing departments JSON", zap.Error(err))
	} else if names != "" {
		path += " | Departments: " + names
	}

	if names, err := subcategoryNames(str(attrs, attrSubcatsJSON)); err != nil {
		e.logger.Warn("error parsing subcategories JSON", zap.Error(err))
	} else if names != "" {
		path += " | Subcategories: " + names
	}

	return path
}

// departmentNames accepts either ["Dairy", ...] or [{"Description": "Dairy"}, ...]
// and returns the comma-joined names. String entries take precedence.
func departmentNames(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}

	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return "", err
	}

	var names []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			names = append(names, s)
		}
	}
	if joined := strings.Join(names, ", "); joined != "" {
		return joined, nil
	}

	var descriptions []string
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			descriptions = append(descriptions, str(obj, "Description"))
		}
	}
	return strings.Join(descriptions, ", "), nil
}

// subcategoryNames expects a JSON list of strings
func subcategoryNames(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}

	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return "", err
	}

	names := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return "", fmt.Errorf("subcategory %d is %T, want string", i, item)
		}
		names = append(names, s)
	}
	return strings.Join(names, ", "), nil
}

// PackageSize returns the explicit PackageSize field, or the first size-like
// substring of displayName, or "".
func PackageSize(product map[string]any, displayName string) string {
	if size := str(product, keyPackageSize); size != "" {
		return size
	}

	for _, pattern := range packageSizePatterns {
		if m := pattern.FindStringSubmatch(displayName); m != nil {
			return m[1]
		}
	}

	return ""
}

// CleanHTML converts <br>, <div> and <p> tags to line breaks and decodes entities
func CleanHTML(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(htmlLineBreaks.Replace(text)))
}

// object returns m[key] as an object, or an empty one
func object(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return map[string]any{}
}

// str returns m[key] as a string, or ""
func str(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
