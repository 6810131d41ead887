// Package slack delivers alerts to a Slack incoming webhook.
package slack

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

// Config captures the webhook settings.
type Config struct {
	WebhookURL string
	Timeout    time.Duration
	Client     *http.Client
	// Now is used for the message timestamp; defaults to time.Now.
	Now func() time.Time
}

// Client posts messages to a Slack webhook. The message recipient becomes
// the channel override and the sender becomes the bot username.
type Client struct {
	webhookURL string
	client     *http.Client
	now        func() time.Time
}

var _ notify.Transport = (*Client)(nil)

// NewClient builds a webhook client.
func NewClient(cfg Config) (*Client, error) {
	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL == "" {
		return nil, errors.New("slack webhook url is required")
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		webhookURL: webhookURL,
		client:     httpsend.Client(cfg.Client, cfg.Timeout),
		now:        now,
	}, nil
}

type payload struct {
	Text     string `json:"text"`
	Channel  string `json:"channel,omitempty"`
	Username string `json:"username,omitempty"`
}

// Deliver implements notify.Transport.
func (c *Client) Deliver(ctx context.Context, msg notify.Message) error {
	body, err := json.Marshal(c.format(msg))
	if err != nil {
		return fmt.Errorf("encode slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return httpsend.Do(c.client, req, "slack webhook")
}

func (c *Client) format(msg notify.Message) payload {
	var text strings.Builder
	text.WriteByte('*')
	text.WriteString(escape(msg.Subject))
	text.WriteString("*\n")
	if body := strings.TrimSpace(msg.Body); body != "" {
		text.WriteString(escape(body))
		text.WriteByte('\n')
	}
	text.WriteString("• Timestamp: ")
	text.WriteString(c.now().UTC().Format(time.RFC3339))

	return payload{
		Text:     text.String(),
		Channel:  strings.TrimSpace(msg.To),
		Username: strings.TrimSpace(msg.From),
	}
}

// escape applies Slack's mrkdwn control character escaping.
func escape(value string) string {
	return strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	).Replace(value)
}
