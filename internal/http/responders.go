package httpx

import (
	"context"
	"net/http"

	"github.com/target/failwire/internal/dispatch"
	"github.com/target/failwire/internal/errors"
)

// statusClientClosedRequest is the de facto status for requests the client
// abandoned before a response was ready.
const statusClientClosedRequest = 499

// Responder claims the failures its matcher accepts and renders them as a
// JSON ErrorBody with a fixed status.
type Responder struct {
	matcher dispatch.Matcher
	status  int
	code    string
	// message renders the user-facing text. Nil means the failure's own message.
	message func(f *errors.Failure) string
}

var _ dispatch.Handler = Responder{}

// Matcher returns the kinds this responder claims.
func (r Responder) Matcher() dispatch.Matcher { return r.matcher }

// Handle implements dispatch.Handler.
func (r Responder) Handle(_ context.Context, f *errors.Failure) (dispatch.Response, bool) {
	msg := f.Message()
	if r.message != nil {
		msg = r.message(f)
	}
	return dispatch.Response{
		Status: r.status,
		Body: ErrorBody{
			Error:     r.code,
			Message:   msg,
			Field:     f.Field(),
			Reference: f.Reference(),
		},
	}, true
}

// NotFoundResponder answers not-found failures with 404.
func NotFoundResponder() Responder {
	return Responder{matcher: dispatch.IsA(errors.KindNotFound), status: http.StatusNotFound, code: "not_found"}
}

// ValidationResponder answers validation failures with 400.
func ValidationResponder() Responder {
	return Responder{matcher: dispatch.IsA(errors.KindValidation), status: http.StatusBadRequest, code: "validation_failed"}
}

// ConflictResponder answers conflict and foreign-key failures with 409.
func ConflictResponder() Responder {
	return Responder{
		matcher: dispatch.AnyOf(errors.KindConflict, errors.KindForeignKey),
		status:  http.StatusConflict,
		code:    "conflict",
	}
}

// TimeoutResponder answers deadline failures with 504.
func TimeoutResponder() Responder {
	return Responder{
		matcher: dispatch.IsA(errors.KindTimeout),
		status:  http.StatusGatewayTimeout,
		code:    "timeout",
		message: func(*errors.Failure) string { return "Request timed out. Please try again." },
	}
}

// CanceledResponder answers canceled requests with 499.
func CanceledResponder() Responder {
	return Responder{
		matcher: dispatch.IsA(errors.KindCanceled),
		status:  statusClientClosedRequest,
		code:    "canceled",
		message: func(*errors.Failure) string { return "Request was canceled." },
	}
}

// GenericExceptionResponder claims every failure with a non-leaking 500.
// It matches everything, so it must be registered last: any entry after it
// is unreachable.
func GenericExceptionResponder() Responder {
	return Responder{
		matcher: dispatch.Any(),
		status:  http.StatusInternalServerError,
		code:    errCodeInternal,
		message: func(*errors.Failure) string { return genericFailureText },
	}
}

// RegisterResponders appends the framework responders to b, most specific
// first. The generic responder is left out in development so unclaimed
// failures reach the FailureWriter's diagnostic fallback.
func RegisterResponders(b *dispatch.Builder, isDev bool) *dispatch.Builder {
	for _, r := range []Responder{
		NotFoundResponder(),
		ValidationResponder(),
		ConflictResponder(),
		TimeoutResponder(),
		CanceledResponder(),
	} {
		b.Register(r.Matcher(), r)
	}
	if !isDev {
		g := GenericExceptionResponder()
		b.Register(g.Matcher(), g)
	}
	return b
}
