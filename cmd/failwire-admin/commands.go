package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	redisadapter "github.com/target/failwire/internal/adapters/redis"
	"github.com/target/failwire/internal/bootstrap"
	failerrors "github.com/target/failwire/internal/errors"
)

type kindsOptions struct {
	JSON bool
}

type notifyOptions struct {
	To      string
	From    string
	Subject string
	Body    string
	Timeout time.Duration
}

type dispatchOptions struct {
	Kind    string
	Message string
	Timeout time.Duration
}

type cooldownOptions struct {
	Kind  string
	Reset bool
}

type kindRow struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Alerts bool   `json:"alerts"`
}

func runKinds(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("kinds", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Err)
	var opts kindsOptions
	fs.BoolVar(&opts.JSON, "json", false, "Print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return err
	}

	kinds := failerrors.Kinds()
	rows := make([]kindRow, 0, len(kinds))
	for _, k := range kinds {
		rows = append(rows, kindRow{Name: k.Name(), Path: k.Path(), Alerts: k.Is(failerrors.KindApplication)})
	}

	if opts.JSON {
		enc := json.NewEncoder(cmdCtx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	tw := tabwriter.NewWriter(cmdCtx.Out, 0, 4, 2, ' ', 0)
	if err := writef(tw, "KIND\tPATH\tALERTS\n"); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writef(tw, "%s\t%s\t%t\n", r.Name, r.Path, r.Alerts); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func parseNotifyFlags(cmdCtx *commandContext, args []string) (notifyOptions, error) {
	fs := flag.NewFlagSet("notify", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Err)

	opts := notifyOptions{
		To:   cmdCtx.Config.Notify.To,
		From: cmdCtx.Config.Notify.From,
	}
	fs.StringVar(&opts.To, "to", opts.To, "Recipient (defaults to NOTIFY_TO)")
	fs.StringVar(&opts.From, "from", opts.From, "Sender (defaults to NOTIFY_FROM)")
	fs.StringVar(&opts.Subject, "subject", "failwire test notification", "Message subject")
	fs.StringVar(&opts.Body, "body", "", "Message body (required)")
	fs.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "Overall command timeout")

	if err := fs.Parse(args); err != nil {
		return notifyOptions{}, err
	}
	opts.Body = strings.TrimSpace(opts.Body)
	if opts.Body == "" {
		return notifyOptions{}, errors.New("--body is required")
	}
	return opts, nil
}

// runNotify sends directly through the notifier, bypassing the chain and
// any cooldown.
func runNotify(cmdCtx *commandContext, args []string) error {
	opts, err := parseNotifyFlags(cmdCtx, args)
	if err != nil {
		return err
	}

	return withPipeline(cmdCtx, opts.Timeout, func(ctx context.Context, p *bootstrap.Pipeline) error {
		n := p.Notifier.WithRecipient(opts.To).WithSender(opts.From)
		if err := n.Notify(ctx, opts.Subject, opts.Body); err != nil {
			return fmt.Errorf("notify: %w", err)
		}
		return writef(cmdCtx.Out, "delivered to %s from %s\n", n.Recipient(), n.Sender())
	})
}

func parseDispatchFlags(cmdCtx *commandContext, args []string) (dispatchOptions, error) {
	fs := flag.NewFlagSet("dispatch", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Err)

	var opts dispatchOptions
	fs.StringVar(&opts.Kind, "kind", failerrors.KindAlertTest.Name(), "Failure kind to raise (see the kinds command)")
	fs.StringVar(&opts.Message, "message", "test failure raised by failwire-admin", "Failure message (becomes the alert body)")
	fs.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "Overall command timeout")

	if err := fs.Parse(args); err != nil {
		return dispatchOptions{}, err
	}
	opts.Kind = strings.TrimSpace(opts.Kind)
	if _, ok := failerrors.LookupKind(opts.Kind); !ok {
		return dispatchOptions{}, fmt.Errorf("unknown failure kind %q", opts.Kind)
	}
	return opts, nil
}

func runDispatch(cmdCtx *commandContext, args []string) error {
	opts, err := parseDispatchFlags(cmdCtx, args)
	if err != nil {
		return err
	}

	return withPipeline(cmdCtx, opts.Timeout, func(ctx context.Context, p *bootstrap.Pipeline) error {
		f, resp, claimed, err := p.RaiseKind(ctx, opts.Kind, opts.Message)
		if err != nil {
			return err
		}
		if err := writef(cmdCtx.Out, "kind:      %s\nreference: %s\n", f.Kind().Path(), f.Reference()); err != nil {
			return err
		}
		if !claimed {
			return writeln(cmdCtx.Out, "result:    unclaimed (web layer fallback would respond)")
		}
		body, err := json.Marshal(resp.Body)
		if err != nil {
			return fmt.Errorf("encode response body: %w", err)
		}
		return writef(cmdCtx.Out, "result:    claimed\nstatus:    %d\nbody:      %s\n", resp.Status, body)
	})
}

func runCooldown(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("cooldown", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Err)
	var opts cooldownOptions
	fs.StringVar(&opts.Kind, "kind", "", "Failure kind (required)")
	fs.BoolVar(&opts.Reset, "reset", false, "Clear the cooldown so the next failure alerts")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, ok := failerrors.LookupKind(opts.Kind); !ok {
		return fmt.Errorf("unknown failure kind %q", opts.Kind)
	}

	client := cmdCtx.Redis
	if client == nil {
		c, err := bootstrap.ConnectRedis(cmdCtx.Ctx, bootstrap.RedisOptions{Config: cmdCtx.Config.Redis, Logger: cmdCtx.Logger})
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := c.Close(); closeErr != nil {
				cmdCtx.Logger.Warn("redis close failed", "error", closeErr)
			}
		}()
		client = c
	}
	store := redisadapter.NewCooldownStore(client)

	if opts.Reset {
		if err := store.Reset(cmdCtx.Ctx, opts.Kind); err != nil {
			return err
		}
		return writef(cmdCtx.Out, "cooldown for %s cleared\n", opts.Kind)
	}

	remaining, err := store.Remaining(cmdCtx.Ctx, opts.Kind)
	if err != nil {
		return err
	}
	if remaining == 0 {
		return writef(cmdCtx.Out, "%s: not in cooldown\n", opts.Kind)
	}
	return writef(cmdCtx.Out, "%s: cooldown for another %s\n", opts.Kind, remaining.Round(time.Second))
}

// withPipeline builds the pipeline from config, runs fn and closes it.
func withPipeline(cmdCtx *commandContext, timeout time.Duration, fn func(ctx context.Context, p *bootstrap.Pipeline) error) (err error) {
	ctx := cmdCtx.Ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	p, err := bootstrap.NewPipeline(ctx, bootstrap.PipelineDeps{
		Config:    &cmdCtx.Config,
		Logger:    cmdCtx.Logger,
		Redis:     cmdCtx.Redis,
		Transport: cmdCtx.Transport,
	})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := p.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	return fn(ctx, p)
}
