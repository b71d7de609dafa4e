package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the product does not exist upstream or has no display name
	ErrNotFound = errors.New("product not found")

	// ErrUpstreamUnavailable is returned when the retailer API cannot be reached
	ErrUpstreamUnavailable = errors.New("upstream product API unavailable")

	// ErrUpstreamForbidden is returned when the retailer API denies access (HTTP 403)
	ErrUpstreamForbidden = errors.New("access forbidden by upstream product API")

	// ErrUpstreamMalformed is returned when the retailer API response is not valid JSON
	ErrUpstreamMalformed = errors.New("upstream product API returned malformed response")

	// ErrTemplateNotFound is returned when no prompt file matches the requested name
	ErrTemplateNotFound = errors.New("prompt template not found")

	// ErrMissingVariable is returned when a prompt placeholder has no matching variable
	ErrMissingVariable = errors.New("missing required prompt variable")

	// ErrModelUnavailable is returned when the LLM provider cannot serve the request
	ErrModelUnavailable = errors.New("language model unavailable")

	// ErrModelResponseInvalid is returned when the model reply is not parseable JSON
	ErrModelResponseInvalid = errors.New("language model returned invalid JSON")

	// ErrResponseShapeMismatch is returned when the model JSON does not match the response type
	ErrResponseShapeMismatch = errors.New("model response does not match expected shape")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)

// MissingVariableError identifies the placeholder that had no value at render time.
type MissingVariableError struct {
	Template string
	Key      string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("%s: %q in template %q", ErrMissingVariable, e.Key, e.Template)
}

// Is makes errors.Is(err, ErrMissingVariable) match.
func (e *MissingVariableError) Is(target error) bool {
	return target == ErrMissingVariable
}
