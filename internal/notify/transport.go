package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// LogTransport writes messages to a structured logger instead of delivering
// them. It is the development default.
type LogTransport struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogTransport logs at warn level so alerts stand out from request logs.
func NewLogTransport(logger *slog.Logger) *LogTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogTransport{logger: logger.With("component", "notify_log"), level: slog.LevelWarn}
}

// Deliver implements Transport.
func (t *LogTransport) Deliver(ctx context.Context, msg Message) error {
	t.logger.Log(ctx, t.level, "alert",
		"to", msg.To,
		"from", msg.From,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}

// Route is one destination of a Fanout. To and From, when set, replace the
// message addressing for this route only; a Slack channel and a PagerDuty
// routing key live in different address spaces.
type Route struct {
	Name      string
	Transport Transport
	To        string
	From      string
}

// Fanout delivers each message to every route once, concurrently.
type Fanout struct {
	routes []Route
}

var _ Transport = (*Fanout)(nil)

// NewFanout skips routes without a transport.
func NewFanout(routes ...Route) *Fanout {
	f := &Fanout{}
	for _, r := range routes {
		if r.Transport == nil {
			continue
		}
		if r.Name == "" {
			r.Name = "transport"
		}
		f.routes = append(f.routes, r)
	}
	return f
}

// Len returns the number of routes.
func (f *Fanout) Len() int { return len(f.routes) }

// Deliver implements Transport. The returned error joins every route failure,
// each prefixed with the route name.
func (f *Fanout) Deliver(ctx context.Context, msg Message) error {
	errs := make([]error, len(f.routes))

	var wg sync.WaitGroup
	for i, r := range f.routes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.Transport.Deliver(ctx, r.address(msg)); err != nil {
				errs[i] = fmt.Errorf("%s: %w", r.Name, err)
			}
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (r Route) address(msg Message) Message {
	if r.To != "" {
		msg.To = r.To
	}
	if r.From != "" {
		msg.From = r.From
	}
	return msg
}
