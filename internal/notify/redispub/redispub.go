// Package redispub publishes alerts on Redis pub/sub channels so other
// services (chat bridges, dashboards) can relay them.
package redispub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/failwire/internal/notify"
)

// DefaultChannelPrefix is prepended to the recipient to form the channel name.
const DefaultChannelPrefix = "failwire:"

// Envelope is the JSON document published for every message.
type Envelope struct {
	To      string    `json:"to"`
	From    string    `json:"from"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sent_at"`
}

// Config configures a Publisher.
type Config struct {
	Client        redis.UniversalClient
	ChannelPrefix string
	Now           func() time.Time
}

// Publisher is a notify.Transport over Redis PUBLISH.
type Publisher struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

var _ notify.Transport = (*Publisher)(nil)

// New returns a Publisher. A nil client is a configuration error.
func New(cfg Config) (*Publisher, error) {
	if cfg.Client == nil {
		return nil, errors.New("redispub: redis client is required")
	}
	prefix := cfg.ChannelPrefix
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultChannelPrefix
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Publisher{client: cfg.Client, prefix: prefix, now: now}, nil
}

// Channel returns the channel a recipient's messages are published on.
func (p *Publisher) Channel(to string) string {
	return p.prefix + strings.TrimSpace(to)
}

// Deliver implements notify.Transport. Having no subscribers is not an error.
func (p *Publisher) Deliver(ctx context.Context, msg notify.Message) error {
	payload, err := json.Marshal(Envelope{
		To:      msg.To,
		From:    msg.From,
		Subject: msg.Subject,
		Body:    msg.Body,
		SentAt:  p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode redis envelope: %w", err)
	}

	if err := p.client.Publish(ctx, p.Channel(msg.To), payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}
