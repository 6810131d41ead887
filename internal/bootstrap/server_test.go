package bootstrap

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/failwire/config"
	"github.com/target/failwire/internal/testutil"
)

func TestServe_ServesUntilCanceled(t *testing.T) {
	p := newTestPipeline(t, false, &testutil.CaptureTransport{})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, ServerOptions{
			Config:   config.HTTPConfig{ShutdownTimeout: time.Second},
			Pipeline: p,
			Logger:   discardLogger(),
			Listener: ln,
		})
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestNewHandler_MetricsEndpoint(t *testing.T) {
	p := newTestPipeline(t, false, &testutil.CaptureTransport{})
	h := NewHandler(ServerOptions{Pipeline: p, Logger: discardLogger()})

	assert.Equal(t, http.StatusOK, newRecorderRequest(t, h, http.MethodGet, "/metrics"))
}

func TestNewHandler_TestFireDisabled(t *testing.T) {
	p := newTestPipeline(t, false, &testutil.CaptureTransport{})
	h := NewHandler(ServerOptions{Config: config.HTTPConfig{TestFireEnabled: false}, Pipeline: p, Logger: discardLogger()})

	assert.Equal(t, http.StatusNotFound, newRecorderRequest(t, h, http.MethodPost, "/v1/failures/test"))
}

func newRecorderRequest(t *testing.T, h http.Handler, method, path string) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec.Code
}
