// Package config loads the application configuration once at startup.
// Values come from an optional YAML file, overridden by environment variables.
// Secrets are accepted from the environment only.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration passed explicitly to every component.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	LLM       LLMConfig       `yaml:"llm"`
	Tailoring TailoringConfig `yaml:"tailoring"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port           int           `yaml:"port" env:"PORT" env-default:"8080"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"30s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"180s"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string `yaml:"-" env:"DATABASE_URL"`
	MaxConns int32  `yaml:"max_conns" env:"DATABASE_MAX_CONNS" env-default:"10"`
}

// LLMConfig selects the completion provider and model.
type LLMConfig struct {
	Provider    string        `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`
	Model       string        `yaml:"model" env:"LLM_MODEL" env-default:"gpt-4o"`
	Temperature float64       `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.3"`
	MaxTokens   int           `yaml:"max_tokens" env:"LLM_MAX_TOKENS" env-default:"4096"`
	Timeout     time.Duration `yaml:"timeout" env:"LLM_TIMEOUT" env-default:"60s"`
	BaseURL     string        `yaml:"base_url" env:"LLM_BASE_URL"`
	// JSONMode asks OpenAI-compatible endpoints for a JSON object reply.
	JSONMode    bool          `yaml:"json_mode" env:"LLM_JSON_MODE" env-default:"true"`
	APIKey      string        `yaml:"-" env:"LLM_API_KEY"`
}

// TailoringConfig bounds the prior-pattern context given to the generator.
type TailoringConfig struct {
	PriorPatternLimit     int `yaml:"prior_pattern_limit" env:"TAILORING_PRIOR_PATTERN_LIMIT" env-default:"5"`
	PriorPatternMinRating int `yaml:"prior_pattern_min_rating" env:"TAILORING_PRIOR_PATTERN_MIN_RATING" env-default:"7"`
}

// AuthConfig describes the single administrator and the credentials used to
// sign sessions and tokens.
type AuthConfig struct {
	AdminEmail         string `yaml:"admin_email" env:"ADMIN_EMAIL"`
	AdminPasswordHash  string `yaml:"-" env:"ADMIN_PASSWORD_HASH"`
	SessionSecret      string `yaml:"-" env:"SESSION_SECRET"`
	JWTSecret          string `yaml:"-" env:"JWT_SECRET"`
	JWTExpirationHours int    `yaml:"jwt_expiration_hours" env:"JWT_EXPIRATION_HOURS" env-default:"24"`
	BcryptCost         int    `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"12"`
	PasswordPepper     string `yaml:"-" env:"PASSWORD_PEPPER"`
	SecureCookies      bool   `yaml:"secure_cookies" env:"SECURE_COOKIES" env-default:"true"`
}

// StorageConfig points at an S3-compatible bucket for media uploads.
type StorageConfig struct {
	Bucket          string `yaml:"bucket" env:"STORAGE_BUCKET" env-default:"media"`
	Endpoint        string `yaml:"endpoint" env:"STORAGE_ENDPOINT"`
	Region          string `yaml:"region" env:"STORAGE_REGION" env-default:"auto"`
	PublicBaseURL   string `yaml:"public_base_url" env:"STORAGE_PUBLIC_BASE_URL"`
	AccessKeyID     string `yaml:"-" env:"STORAGE_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"-" env:"STORAGE_SECRET_ACCESS_KEY"`
	MaxUploadBytes  int64  `yaml:"max_upload_bytes" env:"STORAGE_MAX_UPLOAD_BYTES" env-default:"10485760"`
}

// CacheConfig selects the static-data cache backend.
type CacheConfig struct {
	Backend  string        `yaml:"backend" env:"CACHE_BACKEND" env-default:"memory"`
	RedisURL string        `yaml:"-" env:"REDIS_URL"`
	MaxAge   time.Duration `yaml:"max_age" env:"CACHE_MAX_AGE" env-default:"1h"`
}

// RateLimitConfig holds global rate limiting settings. Endpoint tiers are
// fixed in the ratelimit package.
type RateLimitConfig struct {
	Enabled         bool          `yaml:"enabled" env:"RATE_LIMIT_ENABLED" env-default:"true"`
	DefaultLimit    int           `yaml:"default_limit" env:"RATE_LIMIT_DEFAULT_LIMIT" env-default:"1000"`
	DefaultWindow   time.Duration `yaml:"default_window" env:"RATE_LIMIT_DEFAULT_WINDOW" env-default:"1m"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"RATE_LIMIT_CLEANUP_INTERVAL" env-default:"5m"`
	Whitelist       []string      `yaml:"whitelist" env:"RATE_LIMIT_WHITELIST" env-separator:","`
	Blacklist       []string      `yaml:"blacklist" env:"RATE_LIMIT_BLACKLIST" env-separator:","`
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level       string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Development bool   `yaml:"development" env:"LOG_DEVELOPMENT" env-default:"false"`
}

// Supported values for validated enumerations.
var (
	supportedProviders     = []string{"openai", "gemini", "anthropic"}
	supportedCacheBackends = []string{"memory", "redis"}
)

// Load reads configuration from path (when it exists) and the environment.
// An empty path or a missing file falls back to the environment alone.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
			return cfg, cfg.Validate()
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	var problems []string

	if !contains(supportedProviders, strings.ToLower(c.LLM.Provider)) {
		problems = append(problems, fmt.Sprintf("llm.provider %q is not one of %v", c.LLM.Provider, supportedProviders))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		problems = append(problems, fmt.Sprintf("llm.temperature %.2f out of range [0, 2]", c.LLM.Temperature))
	}
	if c.LLM.Timeout <= 0 {
		problems = append(problems, "llm.timeout must be positive")
	}
	if c.Tailoring.PriorPatternMinRating < 0 || c.Tailoring.PriorPatternMinRating > 10 {
		problems = append(problems, "tailoring.prior_pattern_min_rating must be between 0 and 10")
	}
	if c.Auth.BcryptCost < 10 || c.Auth.BcryptCost > 14 {
		problems = append(problems, fmt.Sprintf("auth.bcrypt_cost out of range: %d (must be 10-14)", c.Auth.BcryptCost))
	}
	if c.Auth.JWTExpirationHours < 1 {
		problems = append(problems, fmt.Sprintf("auth.jwt_expiration_hours must be at least 1 hour, got: %d", c.Auth.JWTExpirationHours))
	}
	if !contains(supportedCacheBackends, c.Cache.Backend) {
		problems = append(problems, fmt.Sprintf("cache.backend %q is not one of %v", c.Cache.Backend, supportedCacheBackends))
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisURL == "" {
		problems = append(problems, "REDIS_URL is required when cache.backend is redis")
	}
	if c.Storage.MaxUploadBytes <= 0 {
		problems = append(problems, "storage.max_upload_bytes must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// RequireServe checks the settings that only the HTTP server needs.
func (c *Config) RequireServe() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.LLM.APIKey == "" {
		missing = append(missing, "LLM_API_KEY")
	}
	if c.Auth.AdminEmail == "" {
		missing = append(missing, "ADMIN_EMAIL")
	}
	if c.Auth.AdminPasswordHash == "" {
		missing = append(missing, "ADMIN_PASSWORD_HASH")
	}
	if c.Auth.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
