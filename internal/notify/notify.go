// Package notify sends short subject/body alerts to a recipient over a
// pluggable Transport.
//
// A Notifier is a value. WithRecipient and WithSender return configured
// copies, so a base Notifier can be shared across goroutines and specialised
// per call site without locking.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/target/failwire/internal/observability/metrics"
)

// Message is one outbound alert.
type Message struct {
	To      string
	From    string
	Subject string
	Body    string
}

// Transport performs the actual delivery. Each Deliver call is one attempt;
// transports do not retry.
type Transport interface {
	Deliver(ctx context.Context, msg Message) error
}

// TransportFunc adapts a function to the Transport interface (useful for tests).
type TransportFunc func(ctx context.Context, msg Message) error

// Deliver implements the Transport interface.
func (f TransportFunc) Deliver(ctx context.Context, msg Message) error {
	if f == nil {
		return nil
	}
	return f(ctx, msg)
}

// Notifier sends alerts through a bound transport.
type Notifier interface {
	// WithRecipient returns a copy bound to the given recipient.
	WithRecipient(to string) Notifier
	// WithSender returns a copy bound to the given sender.
	WithSender(from string) Notifier
	// Notify makes exactly one delivery attempt. Failures are returned as *DeliveryError.
	Notify(ctx context.Context, subject, body string) error
	Recipient() string
	Sender() string
}

// Address validation errors, returned wrapped in a *DeliveryError.
var (
	ErrNoRecipient = errors.New("notify: recipient not set")
	ErrNoSender    = errors.New("notify: sender not set")
	ErrNoTransport = errors.New("notify: transport not configured")
)

// DeliveryError reports a failed Notify. It unwraps to the transport's error.
type DeliveryError struct {
	Transport string
	Message   Message
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("notify via %s to %q: %v", e.Transport, e.Message.To, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Client is the Notifier implementation returned by New.
type Client struct {
	name      string
	transport Transport
	to        string
	from      string
	timeout   time.Duration
	metrics   metrics.Recorder
}

var _ Notifier = Client{}

// New returns a Notifier delivering through t. name identifies the transport
// in errors, logs and metrics.
func New(name string, t Transport) Client {
	if name == "" {
		name = "transport"
	}
	return Client{name: name, transport: t}
}

// WithRecipient implements Notifier.
func (c Client) WithRecipient(to string) Notifier {
	c.to = to
	return c
}

// WithSender implements Notifier.
func (c Client) WithSender(from string) Notifier {
	c.from = from
	return c
}

// WithTimeout bounds each delivery. Zero means only the caller's context applies.
func (c Client) WithTimeout(d time.Duration) Client {
	c.timeout = d
	return c
}

// WithMetrics records one delivery metric per Notify.
func (c Client) WithMetrics(r metrics.Recorder) Client {
	c.metrics = r
	return c
}

// Recipient implements Notifier.
func (c Client) Recipient() string { return c.to }

// Sender implements Notifier.
func (c Client) Sender() string { return c.from }

// Name returns the transport name.
func (c Client) Name() string { return c.name }

// Notify implements Notifier.
func (c Client) Notify(ctx context.Context, subject, body string) error {
	msg := Message{To: c.to, From: c.from, Subject: subject, Body: body}

	switch {
	case c.transport == nil:
		return &DeliveryError{Transport: c.name, Message: msg, Err: ErrNoTransport}
	case msg.To == "":
		return &DeliveryError{Transport: c.name, Message: msg, Err: ErrNoRecipient}
	case msg.From == "":
		return &DeliveryError{Transport: c.name, Message: msg, Err: ErrNoSender}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	err := c.transport.Deliver(ctx, msg)
	c.record(err, time.Since(start))
	if err != nil {
		return &DeliveryError{Transport: c.name, Message: msg, Err: err}
	}
	return nil
}

func (c Client) record(err error, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	c.metrics.Delivery(metrics.DeliveryMetric{
		Transport: c.name,
		Result:    result,
		Duration:  elapsed,
		Err:       err,
	})
}
