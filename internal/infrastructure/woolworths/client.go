package woolworths

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/productcat/backend/internal/domain"
	"github.com/productcat/backend/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the product-detail JSON API
	DefaultBaseURL = "https://www.woolworths.com.au/apis/ui/product/detail"

	// DefaultSessionURL is visited first to obtain session cookies
	DefaultSessionURL = "https://www.woolworths.com.au/shop/productdetails/"

	cookieCacheKey = "woolworths:session-cookies"
)

// browserHeaders is sent on both the session and the detail request.
// The detail API rejects requests that do not look like they come from the web shop.
var browserHeaders = map[string]string{
	"User-Agent":         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":             "application/json, text/plain, */*",
	"Accept-Language":    "en-US,en;q=0.9",
	"Referer":            DefaultSessionURL,
	"sec-ch-ua":          `"Not_A Brand";v="8", "Chromium";v="120", "Google Chrome";v="120"`,
	"sec-ch-ua-mobile":   "?0",
	"sec-ch-ua-platform": `"macOS"`,
	"sec-fetch-dest":     "empty",
	"sec-fetch-mode":     "cors",
	"sec-fetch-site":     "same-origin",
	"wp-correlation-id":  "default",
	"x-masked-address":   "null",
	"x-user-id":          "anonymous",
}

// Config controls the upstream client
type Config struct {
	BaseURL           string
	SessionURL        string
	Timeout           time.Duration
	MaxAttempts       int
	InitialBackoff    time.Duration
	RequestsPerSecond float64
	// CookieTTL > 0 reuses session cookies across fetches until they expire
	// or the detail API answers 403. Zero primes a new session per fetch.
	CookieTTL time.Duration
}

// Client handles communication with the Woolworths product-detail API
type Client struct {
	httpClient  *http.Client
	cfg         Config
	rateLimiter *rate.Limiter
	cookieCache domain.CacheRepository
	logger      *zap.Logger
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewClient creates a new Woolworths API client. cookieCache may be nil when
// cfg.CookieTTL is zero.
func NewClient(cfg Config, cookieCache domain.CacheRepository, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.SessionURL == "" {
		cfg.SessionURL = DefaultSessionURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = int(cfg.RequestsPerSecond) + 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cfg:         cfg,
		rateLimiter: rate.NewLimiter(limit, burst),
		cookieCache: cookieCache,
		logger:      logger.Named("woolworths"),
	}
}

// FetchProduct primes a session and returns the decoded product-detail payload
func (c *Client) FetchProduct(ctx context.Context, productID string) (domain.RawProductPayload, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, domain.ErrInvalidRequest
	}

	cookies, err := c.sessionCookies(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := c.fetchDetails(ctx, productID, cookies)
	if errors.Is(err, domain.ErrUpstreamForbidden) {
		c.invalidateCookies(ctx)
	}
	if err != nil {
		return nil, err
	}

	return payload, nil
}

// sessionCookies returns cached cookies when enabled, otherwise primes a new session
func (c *Client) sessionCookies(ctx context.Context) ([]*http.Cookie, error) {
	if c.cookieCachingEnabled() {
		if raw, err := c.cookieCache.Get(ctx, cookieCacheKey); err == nil {
			var stored []storedCookie
			if err := json.Unmarshal(raw, &stored); err == nil {
				c.logger.Debug("reusing cached session cookies", zap.Int("count", len(stored)))
				return toHTTPCookies(stored), nil
			}
		}
	}

	cookies, err := c.primeSession(ctx)
	if err != nil {
		return nil, err
	}

	if c.cookieCachingEnabled() && len(cookies) > 0 {
		raw, err := json.Marshal(fromHTTPCookies(cookies))
		if err == nil {
			if err := c.cookieCache.Set(ctx, cookieCacheKey, raw, c.cfg.CookieTTL); err != nil {
				c.logger.Warn("failed to cache session cookies", zap.Error(err))
			}
		}
	}

	return cookies, nil
}

// primeSession visits the product landing page and collects the cookies it sets,
// including those set on redirects.
func (c *Client) primeSession(ctx context.Context) ([]*http.Cookie, error) {
	sessionURL, err := url.Parse(c.cfg.SessionURL)
	if err != nil {
		return nil, fmt.Errorf("invalid session url: %w", err)
	}

	var cookies []*http.Cookie
	err = c.retry(ctx, "session", func() error {
		jar, _ := cookiejar.New(nil)
		client := &http.Client{
			Timeout:   c.httpClient.Timeout,
			Transport: c.httpClient.Transport,
			Jar:       jar,
		}

		resp, err := c.doRequest(ctx, client, c.cfg.SessionURL, nil)
		if err != nil {
			return err
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if isTransientStatus(resp.StatusCode) {
			return fmt.Errorf("%w: session status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			// The landing page may refuse us and still hand out usable cookies
			c.logger.Warn("session page returned non-OK status", zap.Int("status", resp.StatusCode))
		}

		cookies = jar.Cookies(sessionURL)
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("primed session", zap.Int("cookies", len(cookies)))
	return cookies, nil
}

// fetchDetails calls {baseURL}/{productID}/ with the session cookies
func (c *Client) fetchDetails(ctx context.Context, productID string, cookies []*http.Cookie) (domain.RawProductPayload, error) {
	detailURL := fmt.Sprintf("%s/%s/", strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(productID))
	c.logger.Info("fetching product details", zap.String("product_id", productID), zap.String("url", detailURL))

	var payload domain.RawProductPayload
	err := c.retry(ctx, "detail", func() error {
		resp, err := c.doRequest(ctx, c.httpClient, detailURL, cookies)
		if err != nil {
			return err
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("%w: reading body: %v", domain.ErrUpstreamUnavailable, err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusForbidden:
			c.logger.Error("access forbidden - headers or cookies may need updating", zap.String("product_id", productID))
			return backoff.Permanent(domain.ErrUpstreamForbidden)
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(fmt.Errorf("%w: %s", domain.ErrNotFound, productID))
		case isTransientStatus(resp.StatusCode):
			return fmt.Errorf("%w: status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
		default:
			c.logger.Error("unexpected upstream status",
				zap.Int("status", resp.StatusCode),
				zap.String("body", truncate(string(body), 200)))
			return backoff.Permanent(fmt.Errorf("%w: status %d", domain.ErrUpstreamUnavailable, resp.StatusCode))
		}

		var decoded domain.RawProductPayload
		if err := json.Unmarshal(body, &decoded); err != nil {
			c.logger.Error("failed to parse product JSON",
				zap.Error(err),
				zap.String("body", truncate(string(body), 200)))
			return backoff.Permanent(fmt.Errorf("%w: %v", domain.ErrUpstreamMalformed, err))
		}
		payload = decoded
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("fetched product details", zap.String("product_id", productID))
	return payload, nil
}

// doRequest executes an HTTP GET request with the browser header set
func (c *Client) doRequest(ctx context.Context, client *http.Client, reqURL string, cookies []*http.Cookie) (*http.Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("%w: rate limiter: %v", domain.ErrUpstreamUnavailable, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	return resp, nil
}

// retry runs op up to MaxAttempts times with exponential backoff. Permanent
// errors and context cancellation stop it early.
func (c *Client) retry(ctx context.Context, step string, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialBackoff
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.cfg.MaxAttempts-1)), ctx)

	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		err := op()
		metrics.UpstreamAttempts.WithLabelValues(step, attemptOutcome(err)).Inc()
		return err
	}, policy, func(err error, wait time.Duration) {
		c.logger.Warn("upstream request failed, retrying",
			zap.String("step", step),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err))
	})
	if err == nil {
		return nil
	}

	if isDomainError(err) {
		return err
	}
	// Context cancellation while waiting between attempts
	return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
}

func (c *Client) invalidateCookies(ctx context.Context) {
	if !c.cookieCachingEnabled() {
		return
	}
	if err := c.cookieCache.Delete(ctx, cookieCacheKey); err != nil {
		c.logger.Warn("failed to invalidate session cookies", zap.Error(err))
	}
}

func (c *Client) cookieCachingEnabled() bool {
	return c.cookieCache != nil && c.cfg.CookieTTL > 0
}

func attemptOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUpstreamForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrUpstreamMalformed):
		return "malformed"
	default:
		return "error"
	}
}

// isTransientStatus reports statuses worth another attempt
func isTransientStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func isDomainError(err error) bool {
	for _, target := range []error{
		domain.ErrUpstreamUnavailable,
		domain.ErrUpstreamForbidden,
		domain.ErrUpstreamMalformed,
		domain.ErrNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func toHTTPCookies(stored []storedCookie) []*http.Cookie {
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, s := range stored {
		cookies = append(cookies, &http.Cookie{Name: s.Name, Value: s.Value})
	}
	return cookies
}

func fromHTTPCookies(cookies []*http.Cookie) []storedCookie {
	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}
	return stored
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
