package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/target/failwire/config"
	"github.com/target/failwire/internal/notify"
	"github.com/target/failwire/internal/notify/pagerduty"
	"github.com/target/failwire/internal/notify/redispub"
	"github.com/target/failwire/internal/notify/slack"
	"github.com/target/failwire/internal/notify/sms"
)

// TransportDeps groups what the transport builder needs.
type TransportDeps struct {
	Config config.NotifyConfig
	Redis  redis.UniversalClient // required by the redis transport
	Logger *slog.Logger
	// HTTPClient is shared by the HTTP transports. Nil gives each its own.
	HTTPClient *http.Client
}

// BuildTransport assembles the configured transports. A single transport
// without address overrides is returned as-is; anything else is a Fanout.
// The returned name identifies the transport in logs and metrics.
//
//nolint:ireturn // the concrete transport depends on configuration.
func BuildTransport(deps TransportDeps) (notify.Transport, string, error) {
	kinds, err := deps.Config.Transports()
	if err != nil {
		return nil, "", err
	}

	routes := make([]notify.Route, 0, len(kinds))
	var errs []error
	for _, kind := range kinds {
		route, buildErr := buildRoute(kind, deps)
		if buildErr != nil {
			errs = append(errs, fmt.Errorf("%s transport: %w", kind, buildErr))
			continue
		}
		routes = append(routes, route)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, "", err
	}

	names := make([]string, 0, len(routes))
	for _, r := range routes {
		names = append(names, r.Name)
	}
	name := strings.Join(names, "+")

	if len(routes) == 1 && routes[0].To == "" && routes[0].From == "" {
		return routes[0].Transport, name, nil
	}
	return notify.NewFanout(routes...), name, nil
}

func buildRoute(kind config.TransportKind, deps TransportDeps) (notify.Route, error) {
	cfg := deps.Config
	route := notify.Route{Name: string(kind)}

	switch kind {
	case config.TransportLog:
		logger := deps.Logger
		if logger == nil {
			logger = slog.Default()
		}
		route.Transport = notify.NewLogTransport(logger)

	case config.TransportSMS:
		client, err := sms.NewClient(sms.Config{
			AccountSID: cfg.SMS.AccountSID,
			AuthToken:  cfg.SMS.AuthToken,
			BaseURL:    cfg.SMS.BaseURL,
			Timeout:    cfg.Timeout,
			Client:     deps.HTTPClient,
		})
		if err != nil {
			return route, err
		}
		route.Transport = client

	case config.TransportSlack:
		client, err := slack.NewClient(slack.Config{
			WebhookURL: cfg.Slack.WebhookURL,
			Timeout:    cfg.Timeout,
			Client:     deps.HTTPClient,
		})
		if err != nil {
			return route, err
		}
		route.Transport = client
		route.To = cfg.Slack.Channel

	case config.TransportPagerDuty:
		if cfg.PagerDuty.RoutingKey == "" {
			return route, errors.New("routing key is required")
		}
		route.Transport = pagerduty.NewClient(pagerduty.Config{
			Endpoint:  cfg.PagerDuty.Endpoint,
			Component: cfg.PagerDuty.Component,
			Timeout:   cfg.Timeout,
			Client:    deps.HTTPClient,
		})
		route.To = cfg.PagerDuty.RoutingKey

	case config.TransportRedis:
		pub, err := redispub.New(redispub.Config{
			Client:        deps.Redis,
			ChannelPrefix: cfg.Redis.ChannelPrefix,
		})
		if err != nil {
			return route, err
		}
		route.Transport = pub

	default:
		return route, fmt.Errorf("unsupported transport %q", kind)
	}

	return route, nil
}
