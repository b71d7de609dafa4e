package domain

// RawProductPayload is the decoded, untyped body of the retailer product-detail API.
// Any key may be absent at any depth.
type RawProductPayload map[string]any

// Keys of ExtractedProductFields. They double as prompt template variable names.
const (
	FieldProductName        = "product_name"
	FieldProductDescription = "product_description"
	FieldIngredients        = "ingredients"
	FieldPackageSize        = "package_size"
	FieldDietaryInfo        = "dietary_info"
	FieldDepartmentCategory = "department_category"
)

// ExtractedProductFields is the flat view of a product used to fill prompt templates.
// A populated value always carries every Field* key; an empty value means the
// payload had no product wrapper.
type ExtractedProductFields map[string]string

// ProductName returns the display name, or "" when absent.
func (f ExtractedProductFields) ProductName() string {
	return f[FieldProductName]
}

// CategorizeRequest is the request body accepted by both categorize endpoints
type CategorizeRequest struct {
	ProductID string `json:"product_id" binding:"required,productid"`
}
