// Package sms sends alerts as text messages through a Twilio-compatible
// Messages API.
package sms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/target/failwire/internal/notify"
	"github.com/target/failwire/internal/notify/httpsend"
)

// DefaultBaseURL is the public Twilio REST endpoint.
const DefaultBaseURL = "https://api.twilio.com"

// maxBodyRunes is the concatenated-SMS ceiling accepted by the gateway.
const maxBodyRunes = 1600

// Config holds gateway credentials.
type Config struct {
	AccountSID string
	AuthToken  string
	BaseURL    string
	Timeout    time.Duration
	Client     *http.Client
}

// Client posts one message per Deliver. The recipient and sender are phone
// numbers (or messaging service identifiers) understood by the gateway.
type Client struct {
	endpoint   string
	accountSID string
	authToken  string
	client     *http.Client
}

var _ notify.Transport = (*Client)(nil)

// NewClient validates credentials and builds the Messages endpoint URL.
func NewClient(cfg Config) (*Client, error) {
	sid := strings.TrimSpace(cfg.AccountSID)
	token := strings.TrimSpace(cfg.AuthToken)
	if sid == "" || token == "" {
		return nil, errors.New("sms account sid and auth token are required")
	}

	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	endpoint, err := url.JoinPath(base, "2010-04-01", "Accounts", sid, "Messages.json")
	if err != nil {
		return nil, fmt.Errorf("build sms endpoint: %w", err)
	}

	return &Client{
		endpoint:   endpoint,
		accountSID: sid,
		authToken:  token,
		client:     httpsend.Client(cfg.Client, cfg.Timeout),
	}, nil
}

// Deliver implements notify.Transport.
func (c *Client) Deliver(ctx context.Context, msg notify.Message) error {
	form := url.Values{}
	form.Set("To", msg.To)
	form.Set("From", msg.From)
	form.Set("Body", text(msg))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	return httpsend.Do(c.client, req, "sms gateway")
}

// text flattens subject and body into one SMS body.
func text(msg notify.Message) string {
	s := strings.TrimSpace(msg.Subject)
	if b := strings.TrimSpace(msg.Body); b != "" {
		if s != "" {
			s += "\n"
		}
		s += b
	}
	if r := []rune(s); len(r) > maxBodyRunes {
		s = string(r[:maxBodyRunes])
	}
	return s
}
