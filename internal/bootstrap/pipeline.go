package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/target/failwire/config"
	redisadapter "github.com/target/failwire/internal/adapters/redis"
	"github.com/target/failwire/internal/dispatch"
	failerrors "github.com/target/failwire/internal/errors"
	httpx "github.com/target/failwire/internal/http"
	"github.com/target/failwire/internal/notify"
	"github.com/target/failwire/internal/ports"
	"github.com/target/failwire/internal/service/failurenotifier"
)

// PipelineDeps groups the inputs to NewPipeline.
type PipelineDeps struct {
	Config *config.AppConfig
	Logger *slog.Logger

	// Redis is used when a component needs it. When nil and one does,
	// NewPipeline connects using Config.Redis and owns the client.
	Redis redis.UniversalClient

	// Transport replaces the configured transports (tests, admin tooling).
	Transport notify.Transport
	// HTTPClient is shared by the HTTP transports.
	HTTPClient *http.Client
}

// Pipeline is the wired failure pipeline: built once at startup, read-only
// afterwards, and closed at shutdown.
type Pipeline struct {
	Chain    *dispatch.Chain
	Notifier notify.Notifier
	Alerts   *failurenotifier.Handler
	Failures *httpx.FailureWriter
	Metrics  *Metrics

	logger    *slog.Logger
	redis     redis.UniversalClient
	ownsRedis bool
}

// NewPipeline builds the chain: the notify handler first so it sees every
// business failure, then the framework responders from most to least specific.
func NewPipeline(ctx context.Context, deps PipelineDeps) (*Pipeline, error) {
	if deps.Config == nil {
		return nil, errors.New("pipeline config is required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pipeline{logger: logger, redis: deps.Redis}

	if p.redis == nil && cfg.NeedsRedis() && deps.Transport == nil {
		client, err := ConnectRedis(ctx, RedisOptions{Config: cfg.Redis, Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		p.redis = client
		p.ownsRedis = true
	}

	p.Metrics = BuildMetrics(cfg.Observability, logger)

	transport, name := deps.Transport, "custom"
	if transport == nil {
		var err error
		transport, name, err = BuildTransport(TransportDeps{
			Config:     cfg.Notify,
			Redis:      p.redis,
			Logger:     logger,
			HTTPClient: deps.HTTPClient,
		})
		if err != nil {
			return nil, errors.Join(fmt.Errorf("build transport: %w", err), p.Close())
		}
	}

	p.Notifier = notify.New(name, transport).
		WithTimeout(cfg.Notify.Timeout).
		WithMetrics(p.Metrics.Recorder).
		WithRecipient(cfg.Notify.To).
		WithSender(cfg.Notify.From)

	var cooldown ports.CooldownStore
	switch {
	case cfg.Notify.Cooldown <= 0:
	case p.redis != nil:
		cooldown = redisadapter.NewCooldownStore(p.redis)
	default:
		// Only reachable with an injected transport and no Redis client.
		logger.WarnContext(ctx, "alert cooldown disabled: no redis client",
			"cooldown", cfg.Notify.Cooldown,
			"transport", name,
		)
	}

	p.Alerts = failurenotifier.NewHandler(failurenotifier.Options{
		AppName:        cfg.AppName,
		Notifier:       p.Notifier,
		Logger:         logger,
		Metrics:        p.Metrics.Recorder,
		Cooldown:       cooldown,
		CooldownWindow: cfg.Notify.Cooldown,
	})

	b := dispatch.NewBuilder(dispatch.Options{Logger: logger, Metrics: p.Metrics.Recorder}).
		Register(p.Alerts.Matcher(), p.Alerts)
	p.Chain = httpx.RegisterResponders(b, cfg.IsDev).Build()

	p.Failures = httpx.NewFailureWriter(httpx.FailureWriterOptions{
		Chain:  p.Chain,
		IsDev:  cfg.IsDev,
		Logger: logger,
	})

	logger.InfoContext(ctx, "failure pipeline ready",
		"transport", name,
		"recipient", cfg.Notify.To,
		"handlers", p.Chain.Len(),
		"cooldown", cfg.Notify.Cooldown,
	)
	return p, nil
}

// Raise routes err through the chain. Callers outside HTTP use it to get
// the same alerting and classification as web requests.
func (p *Pipeline) Raise(ctx context.Context, err error) (dispatch.Response, bool) {
	return p.Chain.Raise(ctx, err)
}

// RaiseKind raises a new failure of the named kind.
func (p *Pipeline) RaiseKind(ctx context.Context, kindName, message string) (*failerrors.Failure, dispatch.Response, bool, error) {
	kind, ok := failerrors.LookupKind(kindName)
	if !ok {
		return nil, dispatch.Response{}, false, fmt.Errorf("unknown failure kind %q", kindName)
	}
	f := failerrors.New(kind, message)
	resp, claimed := p.Chain.Dispatch(ctx, f)
	return f, resp, claimed, nil
}

// Close releases resources the pipeline owns.
func (p *Pipeline) Close() error {
	var errs []error
	if err := p.Metrics.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close statsd: %w", err))
	}
	if p.ownsRedis && p.redis != nil {
		if err := p.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
		p.redis = nil
	}
	return errors.Join(errs...)
}
