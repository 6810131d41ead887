package config

import "time"

const (
	defaultReadHeaderTimeout = 5 * time.Second
	defaultShutdownTimeout   = 10 * time.Second
)

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`

	// ShutdownTimeout bounds graceful shutdown once a signal arrives.
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// TestFireEnabled exposes POST /v1/failures/test. The endpoint is
	// unauthenticated and pages whoever NOTIFY_TO reaches, so it is off by default.
	TestFireEnabled bool `env:"HTTP_TEST_FIRE_ENABLED" envDefault:"false"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.Addr == "" {
		h.Addr = ":8080"
	}
	if h.ReadHeaderTimeout <= 0 {
		h.ReadHeaderTimeout = defaultReadHeaderTimeout
	}
	if h.ShutdownTimeout <= 0 {
		h.ShutdownTimeout = defaultShutdownTimeout
	}
}
