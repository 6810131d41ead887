package config

import (
	"os"
	"strings"
)

const defaultAppName = "failwire"

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - http.go: HTTP server configuration
//   - redis.go: Redis connection configuration
//   - notify.go: alert transport configuration
//   - observability.go: metrics configuration
type AppConfig struct {
	// IsDev controls development mode behavior (detailed error responses, console logs).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// AppName prefixes alert subjects and names the metric namespace.
	AppName string `env:"APP_NAME" envDefault:"failwire"`

	HTTP   HTTPConfig
	Redis  RedisConfig `envPrefix:"REDIS_"`
	Notify NotifyConfig

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	if c.AppName = strings.TrimSpace(c.AppName); c.AppName == "" {
		c.AppName = defaultAppName
	}

	c.HTTP.Sanitize()
	c.Redis.Sanitize()
	c.Notify.Sanitize()
	c.Observability.Sanitize(c.AppName)

	// Check NODE_ENV for dev mode
	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// NeedsRedis reports whether any configured component requires a Redis connection.
func (c *AppConfig) NeedsRedis() bool {
	if c.Redis.Enabled {
		return true
	}
	if c.Notify.Cooldown > 0 {
		return true
	}
	kinds, err := c.Notify.Transports()
	if err != nil {
		return false
	}
	for _, k := range kinds {
		if k == TransportRedis {
			return true
		}
	}
	return false
}
