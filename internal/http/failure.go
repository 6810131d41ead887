package httpx

import (
	"log/slog"
	"net/http"

	"github.com/target/failwire/internal/dispatch"
	"github.com/target/failwire/internal/errors"
)

const (
	errCodeInternal    = "internal_error"
	genericFailureText = "An unexpected error occurred. Please try again later."
)

// FailureWriterOptions configures a FailureWriter.
type FailureWriterOptions struct {
	Chain  *dispatch.Chain
	IsDev  bool
	Logger *slog.Logger
}

// FailureWriter turns errors into HTTP responses. Every error is raised
// through the dispatch chain; a claimed Response is written as-is and an
// unclaimed failure gets the terminal fallback.
type FailureWriter struct {
	chain  *dispatch.Chain
	isDev  bool
	logger *slog.Logger
}

// NewFailureWriter constructs a FailureWriter. A nil chain sends every
// failure straight to the fallback.
func NewFailureWriter(opts FailureWriterOptions) *FailureWriter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	chain := opts.Chain
	if chain == nil {
		chain = dispatch.NewBuilder(dispatch.Options{Logger: logger}).Build()
	}
	return &FailureWriter{chain: chain, isDev: opts.IsDev, logger: logger.With("component", "failure_writer")}
}

// Write raises err through the chain and writes the outcome.
func (fw *FailureWriter) Write(w http.ResponseWriter, r *http.Request, err error) {
	f := errors.From(err)
	if f == nil {
		return
	}

	if resp, ok := fw.chain.Dispatch(r.Context(), f); ok {
		// Zero status means 500, per dispatch.Response.
		status := resp.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		if resp.Body == nil {
			w.WriteHeader(status)
			return
		}
		WriteJSON(w, status, resp.Body)
		return
	}

	fw.fallback(w, r, f)
}

// fallback renders an unclaimed failure. Development responses carry the
// full diagnostic; production responses carry only the reference ID.
func (fw *FailureWriter) fallback(w http.ResponseWriter, r *http.Request, f *errors.Failure) {
	fw.logger.ErrorContext(r.Context(), "unhandled failure",
		"kind", f.Kind().Name(),
		"reference", f.Reference(),
		"method", r.Method,
		"path", r.URL.Path,
		"error", f,
	)

	if fw.isDev {
		WriteJSON(w, http.StatusInternalServerError, ErrorBody{
			Error:     errCodeInternal,
			Message:   f.Message(),
			Field:     f.Field(),
			Reference: f.Reference(),
			Kind:      f.Kind().Path(),
			Detail:    f.Error(),
		})
		return
	}

	WriteJSON(w, http.StatusInternalServerError, genericBody(f))
}

func genericBody(f *errors.Failure) ErrorBody {
	return ErrorBody{
		Error:     errCodeInternal,
		Message:   genericFailureText,
		Reference: f.Reference(),
	}
}
