package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TransportKind names an alert delivery transport.
type TransportKind string

const (
	// TransportLog writes alerts to the application log.
	TransportLog TransportKind = "log"
	// TransportSMS sends alerts through an SMS gateway.
	TransportSMS TransportKind = "sms"
	// TransportSlack posts alerts to a Slack incoming webhook.
	TransportSlack TransportKind = "slack"
	// TransportPagerDuty triggers PagerDuty events.
	TransportPagerDuty TransportKind = "pagerduty"
	// TransportRedis publishes alerts on a Redis channel.
	TransportRedis TransportKind = "redis"
)

const (
	defaultNotifyTimeout = 5 * time.Second
	defaultNotifyFrom    = "failwire"
	defaultNotifyTo      = "ops"
)

// ValidTransports returns all valid transport names.
func ValidTransports() []TransportKind {
	return []TransportKind{
		TransportLog,
		TransportSMS,
		TransportSlack,
		TransportPagerDuty,
		TransportRedis,
	}
}

// ParseTransports parses a comma-delimited list of transport names.
// Order is preserved and duplicates are dropped.
func ParseTransports(s string) ([]TransportKind, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("at least one notify transport must be specified")
	}

	seen := make(map[TransportKind]bool)
	var kinds []TransportKind
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}

		kind := TransportKind(name)
		switch kind {
		case TransportLog, TransportSMS, TransportSlack, TransportPagerDuty, TransportRedis:
			if !seen[kind] {
				seen[kind] = true
				kinds = append(kinds, kind)
			}
		default:
			return nil, fmt.Errorf(
				"invalid notify transport: %q (valid options: log, sms, slack, pagerduty, redis)",
				name,
			)
		}
	}

	if len(kinds) == 0 {
		return nil, errors.New("at least one valid notify transport must be specified")
	}
	return kinds, nil
}

// NotifyConfig controls outbound failure alerts.
type NotifyConfig struct {
	Transport string        `env:"NOTIFY_TRANSPORT" envDefault:"log"`
	From      string        `env:"NOTIFY_FROM"      envDefault:"failwire"`
	To        string        `env:"NOTIFY_TO"        envDefault:"ops"`
	Timeout   time.Duration `env:"NOTIFY_TIMEOUT"   envDefault:"5s"`

	// Cooldown suppresses repeat alerts for the same kind within the window.
	// Zero disables it.
	Cooldown time.Duration `env:"NOTIFY_COOLDOWN" envDefault:"0"`

	SMS       SMSNotifyConfig       `envPrefix:"NOTIFY_SMS_"`
	Slack     SlackNotifyConfig     `envPrefix:"NOTIFY_SLACK_"`
	PagerDuty PagerDutyNotifyConfig `envPrefix:"NOTIFY_PAGERDUTY_"`
	Redis     RedisNotifyConfig     `envPrefix:"NOTIFY_REDIS_"`
}

// Sanitize normalises notification configuration values.
func (c *NotifyConfig) Sanitize() {
	if c.Transport = strings.TrimSpace(c.Transport); c.Transport == "" {
		c.Transport = string(TransportLog)
	}
	if c.From = strings.TrimSpace(c.From); c.From == "" {
		c.From = defaultNotifyFrom
	}
	if c.To = strings.TrimSpace(c.To); c.To == "" {
		c.To = defaultNotifyTo
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultNotifyTimeout
	}
	if c.Cooldown < 0 {
		c.Cooldown = 0
	}

	c.SMS.sanitize()
	c.Slack.sanitize()
	c.PagerDuty.sanitize()
	c.Redis.sanitize()
}

// Transports returns the parsed transport list.
func (c *NotifyConfig) Transports() ([]TransportKind, error) {
	return ParseTransports(c.Transport)
}

// Validate checks that every selected transport has the settings it needs.
func (c *NotifyConfig) Validate() error {
	kinds, err := c.Transports()
	if err != nil {
		return err
	}

	var errs []error
	for _, k := range kinds {
		switch k {
		case TransportSMS:
			if c.SMS.AccountSID == "" || c.SMS.AuthToken == "" {
				errs = append(errs, errors.New("sms transport requires NOTIFY_SMS_ACCOUNT_SID and NOTIFY_SMS_AUTH_TOKEN"))
			}
		case TransportSlack:
			if c.Slack.WebhookURL == "" {
				errs = append(errs, errors.New("slack transport requires NOTIFY_SLACK_WEBHOOK_URL"))
			}
		case TransportPagerDuty:
			if c.PagerDuty.RoutingKey == "" {
				errs = append(errs, errors.New("pagerduty transport requires NOTIFY_PAGERDUTY_ROUTING_KEY"))
			}
		case TransportLog, TransportRedis:
		}
	}
	return errors.Join(errs...)
}

// SMSNotifyConfig holds SMS gateway credentials.
type SMSNotifyConfig struct {
	AccountSID string `env:"ACCOUNT_SID"`
	AuthToken  string `env:"AUTH_TOKEN"`
	BaseURL    string `env:"BASE_URL"`
}

func (c *SMSNotifyConfig) sanitize() {
	c.AccountSID = strings.TrimSpace(c.AccountSID)
	c.AuthToken = strings.TrimSpace(c.AuthToken)
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
}

// SlackNotifyConfig controls Slack webhook delivery.
type SlackNotifyConfig struct {
	WebhookURL string `env:"WEBHOOK_URL"`
	// Channel replaces the recipient on the slack route when set.
	Channel string `env:"CHANNEL"`
}

func (c *SlackNotifyConfig) sanitize() {
	c.WebhookURL = strings.TrimSpace(c.WebhookURL)
	c.Channel = strings.TrimSpace(c.Channel)
}

// PagerDutyNotifyConfig controls PagerDuty Events API v2 delivery.
type PagerDutyNotifyConfig struct {
	// RoutingKey replaces the recipient on the pagerduty route when set.
	RoutingKey string `env:"ROUTING_KEY"`
	Component  string `env:"COMPONENT"   envDefault:"failwire"`
	Endpoint   string `env:"ENDPOINT"`
}

func (c *PagerDutyNotifyConfig) sanitize() {
	c.RoutingKey = strings.TrimSpace(c.RoutingKey)
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	if c.Component = strings.TrimSpace(c.Component); c.Component == "" {
		c.Component = defaultAppName
	}
}

// RedisNotifyConfig controls the redis publish transport.
type RedisNotifyConfig struct {
	ChannelPrefix string `env:"CHANNEL_PREFIX" envDefault:"failwire:"`
}

func (c *RedisNotifyConfig) sanitize() {
	c.ChannelPrefix = strings.TrimSpace(c.ChannelPrefix)
}
