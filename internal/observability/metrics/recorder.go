// Package metrics records pipeline outcomes to StatsD and Prometheus.
package metrics

import (
	"time"
)

// Dispatch outcomes.
const (
	OutcomeClaimed   = "claimed"
	OutcomeUnhandled = "unhandled"
	OutcomePanic     = "panic"
)

// Delivery and alert results.
const (
	ResultSuccess    = "success"
	ResultError      = "error"
	ResultSuppressed = "suppressed"
	ResultCooldown   = "cooldown"
)

// DispatchMetric describes one walk of the dispatch chain, or one contained
// handler panic when Outcome is OutcomePanic.
type DispatchMetric struct {
	Kind     string
	Outcome  string
	Duration time.Duration
}

// DeliveryMetric describes one Transport.Deliver attempt.
type DeliveryMetric struct {
	Transport string
	Result    string
	Duration  time.Duration
	Err       error
}

// AlertMetric describes the notify handler's decision for one failure.
type AlertMetric struct {
	Kind   string
	Result string
}

// Recorder receives pipeline events. Implementations must be safe for
// concurrent use and must not block.
type Recorder interface {
	Dispatch(in DispatchMetric)
	Delivery(in DeliveryMetric)
	Alert(in AlertMetric)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Dispatch(DispatchMetric) {}
func (Nop) Delivery(DeliveryMetric) {}
func (Nop) Alert(AlertMetric)       {}

// Multi fans events out to every non-nil recorder.
type Multi []Recorder

// NewMulti drops nil recorders and returns Nop when none remain.
func NewMulti(recorders ...Recorder) Recorder {
	var out Multi
	for _, r := range recorders {
		if r != nil {
			out = append(out, r)
		}
	}
	switch len(out) {
	case 0:
		return Nop{}
	case 1:
		return out[0]
	default:
		return out
	}
}

func (m Multi) Dispatch(in DispatchMetric) {
	for _, r := range m {
		r.Dispatch(in)
	}
}

func (m Multi) Delivery(in DeliveryMetric) {
	for _, r := range m {
		r.Delivery(in)
	}
}

func (m Multi) Alert(in AlertMetric) {
	for _, r := range m {
		r.Alert(in)
	}
}

// OrNop returns r, or Nop when r is nil.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return Nop{}
	}
	return r
}
