package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/productcat/backend/internal/domain"
	"github.com/productcat/backend/internal/infrastructure/prompt"
	"github.com/productcat/backend/internal/metrics"
)

// Result cache variants
const (
	VariantBasic    = "basic"
	VariantEnhanced = "enhanced"
)

// CategorizationServiceConfig holds configuration for the categorization service
type CategorizationServiceConfig struct {
	// CacheTTL is how long results are cached. Zero disables result caching.
	CacheTTL time.Duration
}

// CategorizationService turns a product ID into a category by way of the
// retailer API and a language model
type CategorizationService struct {
	fetcher   domain.ProductFetcher
	extractor domain.ProductExtractor
	renderer  domain.PromptRenderer
	model     domain.ModelCaller
	cache     domain.CacheRepository
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewCategorizationService creates a new categorization service with dependencies.
// cache may be nil.
func NewCategorizationService(
	fetcher domain.ProductFetcher,
	extractor domain.ProductExtractor,
	renderer domain.PromptRenderer,
	model domain.ModelCaller,
	cache domain.CacheRepository,
	config CategorizationServiceConfig,
	logger *zap.Logger,
) *CategorizationService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CategorizationService{
		fetcher:   fetcher,
		extractor: extractor,
		renderer:  renderer,
		model:     model,
		cache:     cache,
		cacheTTL:  config.CacheTTL,
		logger:    logger,
	}
}

// Categorize returns the basic category of a product.
// Flow: check cache -> fetch -> extract -> render prompt -> call model -> validate -> cache
func (s *CategorizationService) Categorize(ctx context.Context, productID string) (*domain.CategoryResponse, error) {
	return categorize[domain.CategoryResponse](ctx, s, VariantBasic, productID,
		prompt.CategoryPrompt, domain.CategoryStructure())
}

// CategorizeEnhanced returns the enriched category of a product
func (s *CategorizationService) CategorizeEnhanced(ctx context.Context, productID string) (*domain.EnhancedCategoryResponse, error) {
	return categorize[domain.EnhancedCategoryResponse](ctx, s, VariantEnhanced, productID,
		prompt.EnhancedCategoryPrompt, domain.EnhancedCategoryStructure())
}

func categorize[T any](
	ctx context.Context,
	s *CategorizationService,
	variant, productID, templateName string,
	structure domain.JSONStructure,
) (*T, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, domain.ErrInvalidRequest
	}

	log := s.logger.With(zap.String("product_id", productID), zap.String("variant", variant))
	cacheKey := generateCacheKey(variant, productID)

	var result T
	if s.getFromCache(ctx, variant, cacheKey, &result) {
		log.Debug("categorization served from cache")
		return &result, nil
	}

	payload, err := s.fetcher.FetchProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}

	fields := s.extractor.Extract(payload)
	if fields.ProductName() == "" {
		return nil, fmt.Errorf("%w: %s has no display name", domain.ErrNotFound, productID)
	}

	rendered, err := s.renderer.Render(templateName, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt: %w", err)
	}

	modelResp, err := s.model.Categorize(ctx, rendered, structure)
	if err != nil {
		return nil, err
	}

	if err := validateShape(structure, modelResp.Response); err != nil {
		log.Warn("model reply did not match response shape",
			zap.String("raw_response", modelResp.RawResponse),
			zap.Error(err))
		return nil, err
	}

	if err := decodeResponse(modelResp.Response, &result); err != nil {
		return nil, err
	}

	s.saveToCache(ctx, cacheKey, result)

	log.Info("product categorized", zap.String("product_name", fields.ProductName()))
	return &result, nil
}

func (s *CategorizationService) cachingEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}

// getFromCache decodes a cached result into dst and reports whether it was found
func (s *CategorizationService) getFromCache(ctx context.Context, variant, key string, dst any) bool {
	if !s.cachingEnabled() {
		return false
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		metrics.CacheLookups.WithLabelValues(variant, "miss").Inc()
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		_ = s.cache.Delete(ctx, key)
		metrics.CacheLookups.WithLabelValues(variant, "miss").Inc()
		return false
	}

	metrics.CacheLookups.WithLabelValues(variant, "hit").Inc()
	return true
}

// saveToCache stores a result; failures are logged and otherwise ignored
func (s *CategorizationService) saveToCache(ctx context.Context, key string, value any) {
	if !s.cachingEnabled() {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("failed to encode result for cache", zap.String("key", key), zap.Error(err))
		return
	}

	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func generateCacheKey(variant, productID string) string {
	return fmt.Sprintf("category:%s:%s", variant, productID)
}

// decodeResponse converts a validated model object into its typed response
func decodeResponse(response map[string]any, dst any) error {
	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrResponseShapeMismatch, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrResponseShapeMismatch, err)
	}
	return nil
}
