package httpx

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/target/failwire/internal/errors"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Failures *FailureWriter
	// Gatherer backs GET /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// TestFireEnabled exposes POST /v1/failures/test.
	TestFireEnabled bool
	Logger          *slog.Logger // optional
}

// NewRouter creates and configures the HTTP router. Unmatched routes are
// raised through the failure pipeline as not-found failures.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fw := services.Failures
	if fw == nil {
		fw = NewFailureWriter(FailureWriterOptions{Logger: logger})
	}

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", healthHandler(fw))
	mux.Handle("HEAD /healthz", healthHandler(fw))

	if services.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(services.Gatherer, promhttp.HandlerOpts{
			ErrorLog:      slog.NewLogLogger(logger.Handler(), slog.LevelError),
			ErrorHandling: promhttp.ContinueOnError,
		}))
	}

	failures := &FailureHandlers{Failures: fw}
	mux.HandleFunc("GET /v1/failures/kinds", failures.ListKinds)
	if services.TestFireEnabled {
		mux.HandleFunc("POST /v1/failures/test", failures.TestFire)
	}

	mux.Handle("/", notFoundHandler{fw: fw})

	var h http.Handler = mux
	h = Recover(fw, logger)(h)
	h = Logging(logger)(h)
	return h
}

type notFoundHandler struct {
	fw *FailureWriter
}

func (h notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.fw.Write(w, r, errors.NotFoundf("no route for %s %s", r.Method, r.URL.Path))
}
