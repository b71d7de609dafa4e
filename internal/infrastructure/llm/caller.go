package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/productcat/backend/internal/domain"
	"github.com/productcat/backend/internal/metrics"
)

// CallerConfig holds generation and retry settings for a Caller
type CallerConfig struct {
	Temperature    float64
	MaxTokens      int
	MaxAttempts    int
	InitialBackoff time.Duration
}

// Caller sends categorization prompts to a Provider and parses the JSON reply
type Caller struct {
	provider Provider
	cfg      CallerConfig
	logger   *zap.Logger
}

// NewCaller creates a Caller with defaults applied to zero settings
func NewCaller(provider Provider, cfg CallerConfig, logger *zap.Logger) *Caller {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Caller{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
	}
}

// Categorize wraps the prompt with the response structure, calls the model and
// returns the parsed JSON object.
func (c *Caller) Categorize(ctx context.Context, userPrompt string, structure domain.JSONStructure) (*domain.ModelResponse, error) {
	wrapped, err := WrapPrompt(userPrompt, structure)
	if err != nil {
		return nil, err
	}

	req := Request{
		Messages:    []Message{{Role: RoleUser, Content: wrapped}},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	start := time.Now()
	resp, err := c.execute(ctx, req)
	metrics.ModelDuration.WithLabelValues(c.provider.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ModelCalls.WithLabelValues(c.provider.Name(), "unavailable").Inc()
		return nil, err
	}

	cleaned := StripCodeFence(resp.Content)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil || parsed == nil {
		metrics.ModelCalls.WithLabelValues(c.provider.Name(), "invalid").Inc()
		c.logger.Warn("model returned non-JSON reply",
			zap.String("provider", c.provider.Name()),
			zap.String("reply", truncate(cleaned, 200)))
		if err == nil {
			err = errors.New("reply is not a JSON object")
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrModelResponseInvalid, err)
	}

	metrics.ModelCalls.WithLabelValues(c.provider.Name(), "ok").Inc()
	c.logger.Debug("model call completed",
		zap.String("provider", c.provider.Name()),
		zap.String("model", resp.Model),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("duration", resp.Duration))

	return &domain.ModelResponse{
		Response:    parsed,
		RawResponse: cleaned,
	}, nil
}

func (c *Caller) execute(ctx context.Context, req Request) (*Response, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialBackoff
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.cfg.MaxAttempts-1)), ctx)

	var resp *Response
	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		r, err := c.provider.Execute(ctx, req)
		if err != nil {
			if ctx.Err() != nil || !isRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		resp = r
		return nil
	}, policy, func(err error, wait time.Duration) {
		c.logger.Warn("model call failed, retrying",
			zap.String("provider", c.provider.Name()),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err))
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrModelUnavailable, err)
	}
	return resp, nil
}

// isRetryable reports whether a provider error is worth another attempt
func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}

	// Transport failures carry no status code
	return !errors.Is(err, context.Canceled)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
