// Package failurenotifier alerts operators about business-logic failures as
// they pass through the dispatch chain.
package failurenotifier

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/target/failwire/internal/dispatch"
	"github.com/target/failwire/internal/errors"
	"github.com/target/failwire/internal/notify"
	"github.com/target/failwire/internal/observability/metrics"
	obserrors "github.com/target/failwire/internal/observability/errors"
	"github.com/target/failwire/internal/ports"
)

// Options configures the failure notifier handler.
type Options struct {
	// AppName prefixes alert subjects: "[<AppName>] <kind>".
	AppName  string
	Notifier notify.Notifier
	Logger   *slog.Logger
	Metrics  metrics.Recorder

	// Cooldown and CooldownWindow suppress repeat alerts for the same kind.
	// Both must be set for suppression to apply. A failed delivery reopens
	// the window so the next failure of that kind alerts again.
	Cooldown       ports.CooldownStore
	CooldownWindow time.Duration

	// Suppress, when it returns true, skips the alert for a failure.
	Suppress func(f *errors.Failure) bool
}

// Handler sends one alert per failure and always defers, so the chain goes
// on to the responders that render the user-facing reply.
type Handler struct {
	appName  string
	notifier notify.Notifier
	logger   *slog.Logger
	metrics  metrics.Recorder
	cooldown ports.CooldownStore
	window   time.Duration
	suppress func(*errors.Failure) bool
}

var _ dispatch.Handler = (*Handler)(nil)

// NewHandler constructs a failure notifier handler.
func NewHandler(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := &Handler{
		appName:  strings.TrimSpace(opts.AppName),
		notifier: opts.Notifier,
		logger:   logger.With("component", "failure_notifier"),
		metrics:  metrics.OrNop(opts.Metrics),
		suppress: opts.Suppress,
	}
	if opts.Cooldown != nil && opts.CooldownWindow > 0 {
		h.cooldown = opts.Cooldown
		h.window = opts.CooldownWindow
	}
	return h
}

// Matcher selects the failures this handler alerts on: every business-logic
// kind. Framework failures are answered by responders but never alerted.
func (h *Handler) Matcher() dispatch.Matcher {
	return dispatch.IsA(errors.KindApplication)
}

// Enabled reports whether a notifier is configured.
func (h *Handler) Enabled() bool {
	return h.notifier != nil
}

// Subject renders the alert subject for f.
func (h *Handler) Subject(f *errors.Failure) string {
	name := f.Kind().Name()
	if h.appName == "" {
		return name
	}
	return fmt.Sprintf("[%s] %s", h.appName, name)
}

// Handle implements dispatch.Handler. Delivery errors are logged and
// counted, never returned, and the result is always unclaimed.
func (h *Handler) Handle(ctx context.Context, f *errors.Failure) (dispatch.Response, bool) {
	if f == nil || h.notifier == nil {
		return dispatch.Response{}, false
	}
	kind := f.Kind().Name()

	if h.suppress != nil && h.suppress(f) {
		h.logger.DebugContext(ctx, "failure alert suppressed", "kind", kind, "reference", f.Reference())
		h.metrics.Alert(metrics.AlertMetric{Kind: kind, Result: metrics.ResultSuppressed})
		return dispatch.Response{}, false
	}

	if !h.acquire(ctx, f) {
		h.logger.DebugContext(ctx, "failure alert in cooldown", "kind", kind, "reference", f.Reference())
		h.metrics.Alert(metrics.AlertMetric{Kind: kind, Result: metrics.ResultCooldown})
		return dispatch.Response{}, false
	}

	if err := h.notifier.Notify(ctx, h.Subject(f), f.Message()); err != nil {
		attrs := []any{
			"kind", kind,
			"reference", f.Reference(),
			"recipient", h.notifier.Recipient(),
			"error_class", obserrors.Classify(err),
			"error", err,
		}
		var de *notify.DeliveryError
		if stderrors.As(err, &de) {
			attrs = append(attrs, "transport", de.Transport)
		}
		h.logger.ErrorContext(ctx, "failure alert delivery failed", attrs...)
		h.release(ctx, f)
		h.metrics.Alert(metrics.AlertMetric{Kind: kind, Result: metrics.ResultError})
		return dispatch.Response{}, false
	}

	h.logger.InfoContext(ctx, "failure alert sent",
		"kind", kind,
		"reference", f.Reference(),
		"recipient", h.notifier.Recipient(),
	)
	h.metrics.Alert(metrics.AlertMetric{Kind: kind, Result: metrics.ResultSuccess})
	return dispatch.Response{}, false
}

// acquire consults the cooldown store. Store errors fail open.
func (h *Handler) acquire(ctx context.Context, f *errors.Failure) bool {
	if h.cooldown == nil {
		return true
	}
	ok, err := h.cooldown.Acquire(ctx, f.Kind().Name(), h.window)
	if err != nil {
		h.logger.WarnContext(ctx, "cooldown check failed, sending alert",
			"kind", f.Kind().Name(),
			"error", err,
		)
		return true
	}
	return ok
}

// release reopens the cooldown after a failed delivery.
func (h *Handler) release(ctx context.Context, f *errors.Failure) {
	if h.cooldown == nil {
		return
	}
	if err := h.cooldown.Reset(ctx, f.Kind().Name()); err != nil {
		h.logger.WarnContext(ctx, "cooldown reset after failed delivery",
			"kind", f.Kind().Name(),
			"error", err,
		)
	}
}
