package ratelimit

import (
	"strings"
	"time"

	"github.com/jonathan/portfolio-backoffice/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// FromSettings builds the limiter configuration from the application
// settings. Endpoint tiers are fixed.
func FromSettings(cfg config.RateLimitConfig) *Config {
	if !cfg.Enabled {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    cfg.DefaultLimit,
		DefaultWindow:   cfg.DefaultWindow,
		CleanupInterval: cfg.CleanupInterval,
		Whitelist:       toSet(cfg.Whitelist),
		Blacklist:       toSet(cfg.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific tiers.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: completion calls and unauthenticated writes (strictest limits)
		{Path: "/api/admin/ai/generate-resume", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		{Path: "/api/public/contact", Method: "POST", Limit: 5, Window: time.Hour, Burst: 2},
		{Path: "/api/auth/login", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},

		// Tier 2: admin writes
		{Path: "/api/admin/", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/api/admin/", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/api/admin/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},

		// Tier 3: reads use the default limit
		// Tier 4: health check is unlimited (special case in the matcher)
	}
}

func toSet(list []string) map[string]bool {
	result := make(map[string]bool, len(list))
	for _, ip := range list {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
