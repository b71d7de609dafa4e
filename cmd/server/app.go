package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/productcat/backend/config"
	"github.com/productcat/backend/internal/domain"
	"github.com/productcat/backend/internal/infrastructure/cache"
	"github.com/productcat/backend/internal/infrastructure/llm"
	"github.com/productcat/backend/internal/infrastructure/prompt"
	"github.com/productcat/backend/internal/infrastructure/woolworths"
	"github.com/productcat/backend/internal/logger"
	"github.com/productcat/backend/internal/usecase"
)

// app is the wired dependency graph shared by every command
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	cache   cacheCloser
	service *usecase.CategorizationService
}

type cacheCloser interface {
	domain.CacheRepository
	io.Closer
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	store, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(llm.ProviderConfig{
		Name:    cfg.LLM.Provider,
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	fetcher := woolworths.NewClient(woolworths.Config{
		BaseURL:           cfg.Woolworths.BaseURL,
		SessionURL:        cfg.Woolworths.SessionURL,
		Timeout:           cfg.Woolworths.Timeout,
		MaxAttempts:       cfg.Woolworths.MaxAttempts,
		InitialBackoff:    cfg.Woolworths.InitialBackoff,
		RequestsPerSecond: cfg.Woolworths.RequestsPerSecond,
		CookieTTL:         cfg.Woolworths.CookieTTL,
	}, store, log)

	caller := llm.NewCaller(provider, llm.CallerConfig{
		Temperature:    cfg.LLM.Temperature,
		MaxTokens:      cfg.LLM.MaxOutputTokens,
		MaxAttempts:    cfg.LLM.MaxAttempts,
		InitialBackoff: cfg.LLM.InitialBackoff,
	}, log.Named("llm"))

	service := usecase.NewCategorizationService(
		fetcher,
		woolworths.NewExtractor(log),
		prompt.NewLoader(cfg.Prompts.Dir, log),
		caller,
		store,
		usecase.CategorizationServiceConfig{CacheTTL: cfg.Cache.TTL},
		log.Named("categorize"),
	)

	log.Info("configuration loaded",
		zap.String("environment", cfg.Server.Environment),
		zap.String("llm_provider", provider.Name()),
		zap.String("llm_model", provider.Model()),
		zap.String("cache", cfg.Cache.Type),
		zap.Duration("cache_ttl", cfg.Cache.TTL),
		zap.Duration("cookie_ttl", cfg.Woolworths.CookieTTL),
		zap.String("prompts_dir", cfg.Prompts.Dir))

	return &app{
		cfg:     cfg,
		logger:  log,
		cache:   store,
		service: service,
	}, nil
}

// newCache builds the configured cache backend
func newCache(ctx context.Context, cfg config.CacheConfig) (cacheCloser, error) {
	switch cfg.Type {
	case "redis":
		rc, err := cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			return nil, err
		}
		return rc, nil
	default:
		return cache.NewMemoryCache(), nil
	}
}

func (a *app) Close() {
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("failed to close cache", zap.Error(err))
	}
	_ = a.logger.Sync()
}
