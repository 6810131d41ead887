package metrics

import (
	obserrors "github.com/target/failwire/internal/observability/errors"
	"github.com/target/failwire/internal/observability/statsd"
)

// StatsD metric names.
const (
	statsdDispatch         = "dispatch.outcome"
	statsdDispatchDuration = "dispatch.duration"
	statsdDelivery         = "notify.delivery"
	statsdDeliveryDuration = "notify.duration"
	statsdAlert            = "alert.decision"
)

// StatsD emits pipeline events as StatsD counters and timings.
type StatsD struct {
	sink statsd.Sink
}

var _ Recorder = (*StatsD)(nil)

// NewStatsD wraps a sink. A nil sink yields a recorder that drops everything.
func NewStatsD(sink statsd.Sink) *StatsD {
	return &StatsD{sink: sink}
}

// Dispatch implements Recorder.
func (s *StatsD) Dispatch(in DispatchMetric) {
	if s == nil || s.sink == nil {
		return
	}
	tags := map[string]string{"kind": in.Kind, "outcome": in.Outcome}
	s.sink.Count(statsdDispatch, 1, tags)
	if in.Duration > 0 {
		s.sink.Timing(statsdDispatchDuration, in.Duration, CloneTags(tags))
	}
}

// Delivery implements Recorder.
func (s *StatsD) Delivery(in DeliveryMetric) {
	if s == nil || s.sink == nil {
		return
	}
	tags := map[string]string{"transport": in.Transport, "result": in.Result}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}
	s.sink.Count(statsdDelivery, 1, tags)
	if in.Duration > 0 {
		s.sink.Timing(statsdDeliveryDuration, in.Duration, CloneTags(tags))
	}
}

// Alert implements Recorder.
func (s *StatsD) Alert(in AlertMetric) {
	if s == nil || s.sink == nil {
		return
	}
	s.sink.Count(statsdAlert, 1, map[string]string{"kind": in.Kind, "result": in.Result})
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		if k == "" {
			continue
		}
		out[k] = v
	}
	return out
}
