package statsd

import (
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"
)

func TestMetricName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix string
		name   string
		want   string
	}{
		{"", " dispatch/outcome ", "dispatch_outcome"},
		{"failwire", "notify..delivery", "failwire.notify.delivery"},
		{"failwire", "multi  space", "failwire.multi__space"},
		{"failwire", " ", ""},
	}

	for _, tt := range tests {
		if got := metricName(tt.prefix, tt.name); got != tt.want {
			t.Fatalf("metricName(%q, %q) = %q, want %q", tt.prefix, tt.name, got, tt.want)
		}
	}
}

func TestEncodeTags(t *testing.T) {
	t.Parallel()

	global := map[string]string{
		"env":       "prod",
		" service ": " failwire ",
	}
	local := map[string]string{
		"outcome": " claimed ",
		"":        "ignored",
		"env":     "stage",
	}

	got := encodeTags(global, local)
	want := "|#env:stage,outcome:claimed,service:failwire"
	if got != want {
		t.Fatalf("encodeTags mismatch\n got: %q\nwant: %q", got, want)
	}

	if got := encodeTags(nil, nil); got != "" {
		t.Fatalf("encodeTags(nil, nil) = %q, want empty string", got)
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	c := &Client{prefix: "failwire", tags: map[string]string{"env": "dev"}}

	got := c.encode("dispatch.total", "1", typeCounter, map[string]string{"kind": "payment-failed"})
	want := "failwire.dispatch.total:1|c|#env:dev,kind:payment-failed"
	if got != want {
		t.Fatalf("encode() = %q, want %q", got, want)
	}
}

func TestClientWritesLines(t *testing.T) {
	t.Parallel()

	clientConn, peerConn := net.Pipe()
	defer peerConn.Close()

	c := &Client{prefix: "app", conn: clientConn, logger: discardLogger()}

	received := make(chan string, 1)
	go func() {
		buf := make([]byte, 256)
		n, _ := peerConn.Read(buf)
		received <- string(buf[:n])
	}()

	c.Timing("notify.duration", 1500*time.Microsecond, nil)

	select {
	case line := <-received:
		if line != "app.notify.duration:1.5|ms" {
			t.Fatalf("unexpected line %q", line)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for statsd line")
	}
}

func TestClientEnabledAndClose(t *testing.T) {
	t.Parallel()

	clientConn, peerConn := net.Pipe()
	defer peerConn.Close()

	client := &Client{conn: clientConn}

	if !client.Enabled() {
		t.Fatal("expected client.Enabled to report true with active connection")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if client.Enabled() {
		t.Fatal("expected client.Enabled to report false after Close")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close (second call) error: %v", err)
	}

	var nilClient *Client
	if nilClient.Enabled() {
		t.Fatal("nil client should report disabled")
	}
	if err := nilClient.Close(); err != nil {
		t.Fatalf("nil client Close error: %v", err)
	}
	nilClient.Count("ignored", 1, nil)
}

func TestNewClientDisabledWithoutAddress(t *testing.T) {
	t.Parallel()

	client, err := NewClient(Config{Enabled: true, Address: "   "})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	if client.Enabled() {
		t.Fatal("expected client to stay disabled when address is empty")
	}
	client.Count("dropped", 1, nil)
}

func TestNewClientDialError(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{Enabled: true, Address: "bad address"})
	if err == nil {
		t.Fatal("expected NewClient to error for invalid address")
	}
	if !strings.Contains(err.Error(), "statsd dial") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
