package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Values are opaque bytes; callers choose the encoding.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ProductFetcher retrieves raw product details from the retailer
type ProductFetcher interface {
	FetchProduct(ctx context.Context, productID string) (RawProductPayload, error)
}

// ProductExtractor flattens a raw payload into prompt variables
type ProductExtractor interface {
	Extract(payload RawProductPayload) ExtractedProductFields
}

// PromptRenderer loads a named template and fills its placeholders
type PromptRenderer interface {
	Render(name string, variables map[string]string) (string, error)
}

// ModelCaller sends a prompt to the language model and parses its JSON reply
type ModelCaller interface {
	Categorize(ctx context.Context, prompt string, structure JSONStructure) (*ModelResponse, error)
}
