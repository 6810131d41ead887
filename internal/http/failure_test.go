package httpx

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/failwire/internal/dispatch"
	"github.com/target/failwire/internal/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestFailureWriter_ClaimedResponseWrittenUnchanged(t *testing.T) {
	chain := dispatch.NewBuilder(dispatch.Options{}).
		RegisterFunc(dispatch.Any(), func(context.Context, *errors.Failure) (dispatch.Response, bool) {
			return dispatch.Response{Status: http.StatusTeapot, Body: map[string]string{"custom": "yes"}}, true
		}).
		Build()
	fw := NewFailureWriter(FailureWriterOptions{Chain: chain, Logger: discardLogger()})

	rec := httptest.NewRecorder()
	fw.Write(rec, httptest.NewRequest(http.MethodGet, "/x", nil), errors.NotFound("missing"))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"custom":"yes"}`, rec.Body.String())
}

func TestFailureWriter_ClaimedWithoutBodyOrStatus(t *testing.T) {
	chain := dispatch.NewBuilder(dispatch.Options{}).
		RegisterFunc(dispatch.Any(), func(context.Context, *errors.Failure) (dispatch.Response, bool) {
			return dispatch.Response{}, true
		}).
		Build()
	fw := NewFailureWriter(FailureWriterOptions{Chain: chain, Logger: discardLogger()})

	rec := httptest.NewRecorder()
	fw.Write(rec, httptest.NewRequest(http.MethodGet, "/x", nil), errors.Internal("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestFailureWriter_ClaimedZeroStatusKeepsBody(t *testing.T) {
	chain := dispatch.NewBuilder(dispatch.Options{}).
		RegisterFunc(dispatch.Any(), func(context.Context, *errors.Failure) (dispatch.Response, bool) {
			return dispatch.Response{Body: ErrorBody{Error: "custom", Message: "kept as-is"}}, true
		}).
		Build()
	fw := NewFailureWriter(FailureWriterOptions{Chain: chain, Logger: discardLogger()})

	rec := httptest.NewRecorder()
	fw.Write(rec, httptest.NewRequest(http.MethodGet, "/x", nil), errors.Conflict("dup"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "custom", body.Error)
	assert.Equal(t, "kept as-is", body.Message)
}

func TestFailureWriter_ProductionFallbackDoesNotLeak(t *testing.T) {
	fw := NewFailureWriter(FailureWriterOptions{Logger: discardLogger()})

	cause := stderrors.New("dial tcp 10.0.0.12:5432: connection refused")
	f := errors.Wrap(cause, errors.KindInternal, "load ledger")

	rec := httptest.NewRecorder()
	fw.Write(rec, httptest.NewRequest(http.MethodGet, "/x", nil), f)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, ErrorBody{Error: "internal_error", Message: genericFailureText, Reference: f.Reference()}, body)
	assert.NotContains(t, rec.Body.String(), "10.0.0.12")
	assert.NotContains(t, rec.Body.String(), "load ledger")
}

func TestFailureWriter_DevelopmentFallbackIsDetailed(t *testing.T) {
	fw := NewFailureWriter(FailureWriterOptions{IsDev: true, Logger: discardLogger()})

	f := errors.Wrap(stderrors.New("connection refused"), errors.KindInternal, "load ledger")

	rec := httptest.NewRecorder()
	fw.Write(rec, httptest.NewRequest(http.MethodGet, "/x", nil), f)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "load ledger", body.Message)
	assert.Equal(t, "framework/internal", body.Kind)
	assert.Equal(t, "load ledger: connection refused", body.Detail)
	assert.Equal(t, f.Reference(), body.Reference)
}

func TestFailureWriter_PlainErrorBecomesInternal(t *testing.T) {
	fw := NewFailureWriter(FailureWriterOptions{IsDev: true, Logger: discardLogger()})

	rec := httptest.NewRecorder()
	fw.Write(rec, httptest.NewRequest(http.MethodGet, "/x", nil), stderrors.New("oops"))

	body := decodeBody(t, rec)
	assert.Equal(t, "framework/internal", body.Kind)
	assert.NotEmpty(t, body.Reference)
}

func TestFailureWriter_NilErrorWritesNothing(t *testing.T) {
	fw := NewFailureWriter(FailureWriterOptions{Logger: discardLogger()})

	rec := httptest.NewRecorder()
	fw.Write(rec, httptest.NewRequest(http.MethodGet, "/x", nil), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, rec.Body.Len())
}
