package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/failwire/config"
	"github.com/target/failwire/internal/notify"
	"github.com/target/failwire/internal/testutil"
)

func newTestContext(t *testing.T, transport notify.Transport) (*commandContext, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	return &commandContext{
		Ctx:    context.Background(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: config.AppConfig{
			AppName: "shop",
			Notify: config.NotifyConfig{
				Transport: "log",
				To:        "ops",
				From:      "failwire",
			},
		},
		Out:       out,
		Err:       io.Discard,
		Transport: transport,
	}, out
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))

	got := buf.String()
	assert.True(t, strings.HasPrefix(got, "Usage: failwire-admin <command> [flags]"))
	// Commands are listed alphabetically.
	cooldown := strings.Index(got, "cooldown")
	dispatch := strings.Index(got, "dispatch")
	kinds := strings.Index(got, "kinds")
	notifyIdx := strings.Index(got, "  notify")
	assert.True(t, cooldown < dispatch && dispatch < kinds && kinds < notifyIdx, got)
}

func TestCommandsHaveMatchingNames(t *testing.T) {
	for key, cmd := range commands() {
		assert.Equal(t, key, cmd.name)
		assert.NotEmpty(t, cmd.description)
		assert.NotNil(t, cmd.run)
	}
}

func TestRunKinds_Table(t *testing.T) {
	cmdCtx, out := newTestContext(t, nil)
	require.NoError(t, runKinds(cmdCtx, nil))

	got := out.String()
	assert.Contains(t, got, "KIND")
	assert.Regexp(t, `payment-failed\s+application/payment-failed\s+true`, got)
	assert.Regexp(t, `not-found\s+framework/not-found\s+false`, got)
}

func TestRunKinds_JSON(t *testing.T) {
	cmdCtx, out := newTestContext(t, nil)
	require.NoError(t, runKinds(cmdCtx, []string{"-json"}))

	var rows []kindRow
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))

	byName := map[string]kindRow{}
	for _, r := range rows {
		byName[r.Name] = r
	}
	assert.True(t, byName["sync-timeout"].Alerts)
	assert.False(t, byName["validation"].Alerts)
}

func TestRunKinds_BadFlag(t *testing.T) {
	cmdCtx, _ := newTestContext(t, nil)
	assert.Error(t, runKinds(cmdCtx, []string{"-nope"}))
}

func TestParseNotifyFlags(t *testing.T) {
	cmdCtx, _ := newTestContext(t, nil)

	opts, err := parseNotifyFlags(cmdCtx, []string{"-body", " hello ", "-to", "oncall"})
	require.NoError(t, err)
	assert.Equal(t, "hello", opts.Body)
	assert.Equal(t, "oncall", opts.To)
	assert.Equal(t, "failwire", opts.From)

	_, err = parseNotifyFlags(cmdCtx, nil)
	assert.EqualError(t, err, "--body is required")
}

func TestRunNotify(t *testing.T) {
	capture := &testutil.CaptureTransport{}
	cmdCtx, out := newTestContext(t, capture)

	require.NoError(t, runNotify(cmdCtx, []string{"-subject", "hi", "-body", "ping"}))

	assert.Equal(t, []notify.Message{{To: "ops", From: "failwire", Subject: "hi", Body: "ping"}}, capture.Messages())
	assert.Equal(t, "delivered to ops from failwire\n", out.String())
}

func TestRunNotify_DeliveryError(t *testing.T) {
	capture := &testutil.CaptureTransport{Err: assert.AnError}
	cmdCtx, _ := newTestContext(t, capture)

	err := runNotify(cmdCtx, []string{"-body", "ping"})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestParseDispatchFlags(t *testing.T) {
	cmdCtx, _ := newTestContext(t, nil)

	opts, err := parseDispatchFlags(cmdCtx, nil)
	require.NoError(t, err)
	assert.Equal(t, "alert-test", opts.Kind)

	_, err = parseDispatchFlags(cmdCtx, []string{"-kind", "bogus"})
	assert.EqualError(t, err, `unknown failure kind "bogus"`)
}

func TestRunDispatch_BusinessFailureAlertsAndIsClaimed(t *testing.T) {
	capture := &testutil.CaptureTransport{}
	cmdCtx, out := newTestContext(t, capture)

	require.NoError(t, runDispatch(cmdCtx, []string{"-kind", "payment-failed", "-message", "card declined"}))

	assert.Equal(t, []notify.Message{{
		To:      "ops",
		From:    "failwire",
		Subject: "[shop] payment-failed",
		Body:    "card declined",
	}}, capture.Messages())

	got := out.String()
	assert.Contains(t, got, "kind:      application/payment-failed")
	assert.Contains(t, got, "result:    claimed")
	assert.Contains(t, got, "status:    500")
	assert.NotContains(t, got, "card declined")
}

func TestRunDispatch_FrameworkFailureDoesNotAlert(t *testing.T) {
	capture := &testutil.CaptureTransport{}
	cmdCtx, out := newTestContext(t, capture)

	require.NoError(t, runDispatch(cmdCtx, []string{"-kind", "not-found", "-message", "widget 7"}))

	assert.Empty(t, capture.Messages())
	assert.Contains(t, out.String(), "status:    404")
}

func TestRunDispatch_DevLeavesBusinessFailuresUnclaimed(t *testing.T) {
	capture := &testutil.CaptureTransport{}
	cmdCtx, out := newTestContext(t, capture)
	cmdCtx.Config.IsDev = true

	require.NoError(t, runDispatch(cmdCtx, []string{"-kind", "sync-timeout"}))

	assert.Len(t, capture.Messages(), 1)
	assert.Contains(t, out.String(), "unclaimed")
}

func TestRunCooldown_UnknownKind(t *testing.T) {
	cmdCtx, _ := newTestContext(t, nil)
	assert.EqualError(t, runCooldown(cmdCtx, []string{"-kind", "bogus"}), `unknown failure kind "bogus"`)
}

func TestRunCooldown_Redis(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	cmdCtx, out := newTestContext(t, nil)
	cmdCtx.Redis = client

	require.NoError(t, runCooldown(cmdCtx, []string{"-kind", "payment-failed"}))
	assert.Equal(t, "payment-failed: not in cooldown\n", out.String())

	require.NoError(t, client.Set(cmdCtx.Ctx, "failwire:cooldown:payment-failed", "1", 90*time.Second).Err())

	out.Reset()
	require.NoError(t, runCooldown(cmdCtx, []string{"-kind", "payment-failed"}))
	assert.Contains(t, out.String(), "payment-failed: cooldown for another")

	out.Reset()
	require.NoError(t, runCooldown(cmdCtx, []string{"-kind", "payment-failed", "-reset"}))
	assert.Equal(t, "cooldown for payment-failed cleared\n", out.String())

	n, err := client.Exists(cmdCtx.Ctx, "failwire:cooldown:payment-failed").Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}
