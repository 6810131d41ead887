package bootstrap

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/target/failwire/config"
	"github.com/target/failwire/internal/observability/metrics"
	"github.com/target/failwire/internal/observability/statsd"
)

// Metrics bundles the recorder handed to pipeline components with the
// sinks behind it.
type Metrics struct {
	Recorder metrics.Recorder
	// Registry backs GET /metrics. Nil when Prometheus is disabled.
	Registry *prometheus.Registry
	statsd   *statsd.Client
}

// Close releases the StatsD socket, if any.
func (m *Metrics) Close() error {
	if m == nil || m.statsd == nil {
		return nil
	}
	return m.statsd.Close()
}

// BuildMetrics configures the StatsD and Prometheus recorders. A StatsD
// dial failure is logged and that sink is skipped; metrics never block startup.
func BuildMetrics(cfg config.ObservabilityConfig, logger *slog.Logger) *Metrics {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Metrics{}
	var recorders []metrics.Recorder

	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  cfg.Metrics.Prefix,
			Logger:  logger,
		})
		if err != nil {
			logger.Error("failed to initialise statsd client", "error", err)
		} else {
			m.statsd = client
			recorders = append(recorders, metrics.NewStatsD(client))
		}
	}

	if cfg.Prometheus.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m.Registry = reg
		recorders = append(recorders, metrics.NewPrometheus(reg, cfg.Prometheus.Namespace))
	}

	m.Recorder = metrics.NewMulti(recorders...)
	return m
}
