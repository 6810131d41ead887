// Package pagerduty triggers PagerDuty incidents through the Events API v2.
package pagerduty

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/target/failwire/internal/notify"
	"github.com/target/failwire/internal/notify/httpsend"
)

// APIEndpoint is the PagerDuty Events API v2 ingest URL.
const APIEndpoint = "https://events.pagerduty.com/v2/enqueue"

const severityCritical = "critical"

// Config captures runtime configuration for the PagerDuty transport.
type Config struct {
	// Endpoint overrides APIEndpoint (tests, regional endpoints).
	Endpoint  string
	Component string
	Timeout   time.Duration
	Client    *http.Client
	Now       func() time.Time
}

// Client submits trigger events. The message recipient is the routing key
// and the sender is reported as the event source.
type Client struct {
	endpoint  string
	component string
	client    *http.Client
	now       func() time.Time
}

var _ notify.Transport = (*Client)(nil)

// NewClient constructs an events client.
func NewClient(cfg Config) *Client {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = APIEndpoint
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Client{
		endpoint:  endpoint,
		component: strings.TrimSpace(cfg.Component),
		client:    httpsend.Client(cfg.Client, cfg.Timeout),
		now:       now,
	}
}

type event struct {
	RoutingKey  string       `json:"routing_key"`
	EventAction string       `json:"event_action"`
	Payload     eventPayload `json:"payload"`
}

type eventPayload struct {
	Summary       string         `json:"summary"`
	Severity      string         `json:"severity"`
	Source        string         `json:"source"`
	Component     string         `json:"component,omitempty"`
	Timestamp     string         `json:"timestamp"`
	CustomDetails map[string]any `json:"custom_details,omitempty"`
}

// Deliver implements notify.Transport.
func (c *Client) Deliver(ctx context.Context, msg notify.Message) error {
	key := strings.TrimSpace(msg.To)
	if key == "" {
		return errors.New("pagerduty routing key is required")
	}

	body, err := json.Marshal(c.buildEvent(key, msg))
	if err != nil {
		return fmt.Errorf("encode pagerduty payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create pagerduty request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return httpsend.Do(c.client, req, "pagerduty api")
}

func (c *Client) buildEvent(key string, msg notify.Message) event {
	var details map[string]any
	if body := strings.TrimSpace(msg.Body); body != "" {
		details = map[string]any{"body": body}
	}

	return event{
		RoutingKey:  key,
		EventAction: "trigger",
		Payload: eventPayload{
			// PagerDuty truncates summaries over 1024 characters.
			Summary:       truncate(msg.Subject, 1024),
			Severity:      severityCritical,
			Source:        msg.From,
			Component:     c.component,
			Timestamp:     c.now().UTC().Format(time.RFC3339),
			CustomDetails: details,
		},
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
