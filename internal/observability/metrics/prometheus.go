package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	obserrors "github.com/target/failwire/internal/observability/errors"
)

// Prometheus exposes pipeline events as collectors on a registry.
type Prometheus struct {
	dispatches       *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	deliveries       *prometheus.CounterVec
	deliveryDuration *prometheus.HistogramVec
	alerts           *prometheus.CounterVec
}

var _ Recorder = (*Prometheus)(nil)

// NewPrometheus registers the failwire collectors on reg under namespace.
// Registering twice on the same registry panics.
func NewPrometheus(reg prometheus.Registerer, namespace string) *Prometheus {
	factory := promauto.With(reg)

	return &Prometheus{
		dispatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_total",
				Help:      "Failures dispatched through the chain, by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		dispatchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_duration_seconds",
				Help:      "Time spent walking the dispatch chain",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		deliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notify_deliveries_total",
				Help:      "Notification delivery attempts, by transport and result",
			},
			[]string{"transport", "result", "error_class"},
		),
		deliveryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "notify_delivery_duration_seconds",
				Help:      "Notification delivery latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"transport"},
		),
		alerts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alert_decisions_total",
				Help:      "Notify handler decisions, by kind and result",
			},
			[]string{"kind", "result"},
		),
	}
}

// Dispatch implements Recorder.
func (p *Prometheus) Dispatch(in DispatchMetric) {
	p.dispatches.WithLabelValues(in.Kind, in.Outcome).Inc()
	if in.Duration > 0 {
		p.dispatchDuration.WithLabelValues(in.Outcome).Observe(in.Duration.Seconds())
	}
}

// Delivery implements Recorder.
func (p *Prometheus) Delivery(in DeliveryMetric) {
	class := ""
	if in.Result == ResultError {
		class = obserrors.Classify(in.Err)
	}
	p.deliveries.WithLabelValues(in.Transport, in.Result, class).Inc()
	if in.Duration > 0 {
		p.deliveryDuration.WithLabelValues(in.Transport).Observe(in.Duration.Seconds())
	}
}

// Alert implements Recorder.
func (p *Prometheus) Alert(in AlertMetric) {
	p.alerts.WithLabelValues(in.Kind, in.Result).Inc()
}
