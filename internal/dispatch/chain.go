// Package dispatch routes failures through an ordered chain of handlers.
//
// Entries are evaluated in registration order. Each matching handler runs;
// the first one to claim the failure ends the walk and its Response is
// returned. Handlers that only perform side effects (alerting, auditing)
// defer by returning false, and the walk continues.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/target/failwire/internal/errors"
	"github.com/target/failwire/internal/observability/metrics"
)

// Response is what a claiming handler hands back to the web layer.
// The chain never inspects it.
type Response struct {
	// Status is the HTTP status to write. Zero means 500: a claim that names
	// no status is treated as an internal failure.
	Status int
	// Body is written as JSON. Nil writes the status line only.
	Body any
}

// Handler reacts to a failure. Returning false defers to later entries.
type Handler interface {
	Handle(ctx context.Context, f *errors.Failure) (Response, bool)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, f *errors.Failure) (Response, bool)

// Handle implements the Handler interface.
func (fn HandlerFunc) Handle(ctx context.Context, f *errors.Failure) (Response, bool) {
	return fn(ctx, f)
}

type entry struct {
	match   Matcher
	handler Handler
}

// Options configures a Builder.
type Options struct {
	Logger  *slog.Logger
	Metrics metrics.Recorder
}

// Builder collects entries for a Chain.
//
// Order is not validated. A general matcher registered before a more specific
// one shadows it: IsA(KindApplication) ahead of IsA(KindPaymentFailed) means
// the second entry never sees a payment failure. Register specific entries
// first. When two entries have identical matchers the first one wins.
type Builder struct {
	opts    Options
	entries []entry
}

// NewBuilder returns an empty builder.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// Register appends an entry. It panics on a nil matcher or handler.
func (b *Builder) Register(m Matcher, h Handler) *Builder {
	if m == nil || h == nil {
		panic("dispatch: Register requires a matcher and a handler")
	}
	b.entries = append(b.entries, entry{match: m, handler: h})
	return b
}

// RegisterFunc is Register for plain functions.
func (b *Builder) RegisterFunc(m Matcher, fn func(ctx context.Context, f *errors.Failure) (Response, bool)) *Builder {
	return b.Register(m, HandlerFunc(fn))
}

// Build freezes the current entries into a Chain. Later Register calls do not
// affect chains already built.
func (b *Builder) Build() *Chain {
	logger := b.opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	entries := make([]entry, len(b.entries))
	copy(entries, b.entries)

	return &Chain{
		entries: entries,
		logger:  logger.With("component", "dispatch"),
		metrics: metrics.OrNop(b.opts.Metrics),
	}
}

// Chain is an immutable, ordered set of entries. Safe for concurrent use.
type Chain struct {
	entries []entry
	logger  *slog.Logger
	metrics metrics.Recorder
}

// Len returns the number of entries.
func (c *Chain) Len() int {
	return len(c.entries)
}

// Dispatch walks the chain for f and returns the first claimed response.
// It reports false when no handler claims f, including for an empty chain
// or a nil failure.
func (c *Chain) Dispatch(ctx context.Context, f *errors.Failure) (Response, bool) {
	if f == nil {
		return Response{}, false
	}

	start := time.Now()
	kind := f.Kind()

	for i, e := range c.entries {
		if !e.match(kind) {
			continue
		}
		if resp, ok := c.invoke(ctx, i, e, f); ok {
			c.record(kind, metrics.OutcomeClaimed, start)
			return resp, true
		}
	}

	c.record(kind, metrics.OutcomeUnhandled, start)
	return Response{}, false
}

// Raise is the entry point for arbitrary errors. Errors that are not already
// a *errors.Failure are classified with errors.From before dispatch.
func (c *Chain) Raise(ctx context.Context, err error) (Response, bool) {
	if err == nil {
		return Response{}, false
	}
	return c.Dispatch(ctx, errors.From(err))
}

// invoke runs one handler. A panicking handler is treated as deferring.
func (c *Chain) invoke(ctx context.Context, pos int, e entry, f *errors.Failure) (resp Response, claimed bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.ErrorContext(ctx, "dispatch handler panicked",
				"position", pos,
				"handler", fmt.Sprintf("%T", e.handler),
				"kind", f.Kind().Name(),
				"reference", f.Reference(),
				"panic", r,
			)
			c.metrics.Dispatch(metrics.DispatchMetric{Kind: f.Kind().Name(), Outcome: metrics.OutcomePanic})
			resp, claimed = Response{}, false
		}
	}()
	return e.handler.Handle(ctx, f)
}

func (c *Chain) record(kind *errors.Kind, outcome string, start time.Time) {
	c.metrics.Dispatch(metrics.DispatchMetric{
		Kind:     kind.Name(),
		Outcome:  outcome,
		Duration: time.Since(start),
	})
}
