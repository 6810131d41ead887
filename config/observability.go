package config

import "strings"

// ObservabilityConfig groups configuration for metric sinks.
type ObservabilityConfig struct {
	Metrics    ObservabilityMetricsConfig
	Prometheus PrometheusConfig
}

// Sanitize applies guardrails to observability sub-configs. appName is the
// fallback metric prefix.
func (c *ObservabilityConfig) Sanitize(appName string) {
	c.Metrics.Sanitize(appName)
	c.Prometheus.Sanitize(appName)
}

// ObservabilityMetricsConfig controls emission of metrics to StatsD.
type ObservabilityMetricsConfig struct {
	Enabled       bool   `env:"OBSERVABILITY_METRICS_ENABLED"        envDefault:"false"`
	StatsdAddress string `env:"OBSERVABILITY_METRICS_STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
	Prefix        string `env:"OBSERVABILITY_METRICS_PREFIX"`
}

// Sanitize normalises derived fields and enforces safe defaults.
func (c *ObservabilityMetricsConfig) Sanitize(appName string) {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	if c.StatsdAddress == "" {
		c.Enabled = false
	}
	if c.Prefix = strings.Trim(strings.TrimSpace(c.Prefix), "."); c.Prefix == "" {
		c.Prefix = appName
	}
}

// IsEnabled returns true when metrics emission is active after sanitisation.
func (c *ObservabilityMetricsConfig) IsEnabled() bool {
	return c.Enabled && c.StatsdAddress != ""
}

// PrometheusConfig controls the /metrics endpoint.
type PrometheusConfig struct {
	Enabled   bool   `env:"OBSERVABILITY_PROMETHEUS_ENABLED"   envDefault:"true"`
	Namespace string `env:"OBSERVABILITY_PROMETHEUS_NAMESPACE"`
}

// Sanitize derives the namespace from the app name when unset. Prometheus
// names allow only [a-zA-Z0-9_].
func (c *PrometheusConfig) Sanitize(appName string) {
	ns := strings.TrimSpace(c.Namespace)
	if ns == "" {
		ns = appName
	}
	c.Namespace = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, ns)
}
