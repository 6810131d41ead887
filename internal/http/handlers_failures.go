package httpx

import (
	"net/http"
	"strings"

	"github.com/target/failwire/internal/errors"
)

// FailureHandlers serves the failure inspection and test-fire endpoints.
type FailureHandlers struct {
	Failures *FailureWriter
}

type testFireRequest struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type kindResponse struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Business bool   `json:"business"`
}

// TestFire raises a test failure through the pipeline, so operators can
// verify alert delivery and response rendering end to end. Only alert-test
// and kinds derived from it are accepted; real business kinds are rejected.
//
//	POST /v1/failures/test {"kind": "alert-test", "message": "smoke test"}
func (h *FailureHandlers) TestFire(w http.ResponseWriter, r *http.Request) {
	var req testFireRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		h.Failures.Write(w, r, errors.Wrap(err, errors.KindValidation, "request body must be JSON with kind and message"))
		return
	}

	name := strings.TrimSpace(req.Kind)
	if name == "" {
		name = errors.KindAlertTest.Name()
	}
	kind, ok := errors.LookupKind(name)
	if !ok {
		h.Failures.Write(w, r, errors.ValidationField("kind", "unknown failure kind: "+name))
		return
	}
	if !kind.Is(errors.KindAlertTest) {
		h.Failures.Write(w, r, errors.ValidationField("kind", "only test kinds can be fired: "+name))
		return
	}

	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		msg = "test failure raised via " + r.URL.Path
	}
	h.Failures.Write(w, r, errors.New(kind, msg))
}

// ListKinds returns every declared failure kind.
//
//	GET /v1/failures/kinds
func (h *FailureHandlers) ListKinds(w http.ResponseWriter, _ *http.Request) {
	kinds := errors.Kinds()
	out := make([]kindResponse, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, kindResponse{
			Name:     k.Name(),
			Path:     k.Path(),
			Business: k.Is(errors.KindApplication),
		})
	}
	WriteJSON(w, http.StatusOK, out)
}
