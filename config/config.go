package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Woolworths WoolworthsConfig `mapstructure:"woolworths"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Prompts    PromptsConfig    `mapstructure:"prompts"`
	Cache      CacheConfig      `mapstructure:"cache"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// WoolworthsConfig holds retailer API configuration
type WoolworthsConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	SessionURL        string        `mapstructure:"session_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	InitialBackoff    time.Duration `mapstructure:"initial_backoff"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	CookieTTL         time.Duration `mapstructure:"cookie_ttl"` // 0 primes a new session per request
}

// LLMConfig holds language model configuration
type LLMConfig struct {
	Provider        string        `mapstructure:"provider"` // "gemini", "openai" or "anthropic"
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	Model           string        `mapstructure:"model"`
	Temperature     float64       `mapstructure:"temperature"`
	MaxOutputTokens int           `mapstructure:"max_output_tokens"`
	MaxAttempts     int           `mapstructure:"max_attempts"`
	InitialBackoff  time.Duration `mapstructure:"initial_backoff"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// PromptsConfig holds prompt template configuration
type PromptsConfig struct {
	Dir string `mapstructure:"dir"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`
	PerIP   int  `mapstructure:"per_ip"` // requests per minute
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/productcat/")

	// Environment variable settings
	v.SetEnvPrefix("PRODUCTCAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("llm.api_key", "PRODUCTCAT_LLM_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return nil, fmt.Errorf("error binding environment: %w", err)
	}

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadDotEnv exports variables from path without overriding the environment.
// A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Retailer defaults
	v.SetDefault("woolworths.base_url", "https://www.woolworths.com.au/apis/ui/product/detail")
	v.SetDefault("woolworths.session_url", "https://www.woolworths.com.au/shop/productdetails/")
	v.SetDefault("woolworths.timeout", "30s")
	v.SetDefault("woolworths.max_attempts", 3)
	v.SetDefault("woolworths.initial_backoff", "500ms")
	v.SetDefault("woolworths.requests_per_second", 5)
	v.SetDefault("woolworths.cookie_ttl", "0s")

	// LLM defaults
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_output_tokens", 2048)
	v.SetDefault("llm.max_attempts", 3)
	v.SetDefault("llm.initial_backoff", "1s")
	v.SetDefault("llm.timeout", "60s")

	// Prompt defaults
	v.SetDefault("prompts.dir", "prompts")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "1h")

	// Rate limit defaults
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.per_ip", 100)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.LLM.Provider {
	case "gemini", "openai", "anthropic":
	default:
		return fmt.Errorf("llm provider must be 'gemini', 'openai' or 'anthropic', got: %s", config.LLM.Provider)
	}

	if config.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key is required (set GOOGLE_API_KEY or PRODUCTCAT_LLM_API_KEY)")
	}

	if config.LLM.Temperature < 0 || config.LLM.Temperature > 2 {
		return fmt.Errorf("llm temperature must be between 0 and 2, got: %g", config.LLM.Temperature)
	}

	if config.LLM.MaxOutputTokens <= 0 {
		return fmt.Errorf("llm max_output_tokens must be positive, got: %d", config.LLM.MaxOutputTokens)
	}

	if config.Woolworths.MaxAttempts < 1 || config.LLM.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1")
	}

	if config.Prompts.Dir == "" {
		return fmt.Errorf("prompts directory is required")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.RateLimit.Enabled && config.RateLimit.PerIP <= 0 {
		return fmt.Errorf("ratelimit per_ip must be positive when enabled, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
