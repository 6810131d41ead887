package httpx

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/failwire/internal/dispatch"
	"github.com/target/failwire/internal/errors"
	"github.com/target/failwire/internal/notify"
	"github.com/target/failwire/internal/service/failurenotifier"
	"github.com/target/failwire/internal/testutil"
)

// spy wraps a responder and counts invocations.
type spy struct {
	Responder
	calls int
}

func (s *spy) Handle(ctx context.Context, f *errors.Failure) (dispatch.Response, bool) {
	s.calls++
	return s.Responder.Handle(ctx, f)
}

func TestResponders_StatusByKind(t *testing.T) {
	chain := RegisterResponders(dispatch.NewBuilder(dispatch.Options{}), false).Build()

	tests := []struct {
		name    string
		failure *errors.Failure
		status  int
		code    string
	}{
		{"not found", errors.NotFound("site not found"), http.StatusNotFound, "not_found"},
		{"validation", errors.ValidationField("email", "email is invalid"), http.StatusBadRequest, "validation_failed"},
		{"conflict", errors.Conflict("already exists"), http.StatusConflict, "conflict"},
		{"foreign key", errors.ForeignKey("in use"), http.StatusConflict, "conflict"},
		{"timeout", errors.New(errors.KindTimeout, "deadline"), http.StatusGatewayTimeout, "timeout"},
		{"canceled", errors.New(errors.KindCanceled, "canceled"), statusClientClosedRequest, "canceled"},
		{"internal", errors.Internal("db down"), http.StatusInternalServerError, "internal_error"},
		{"business", errors.PaymentFailed("card declined"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, ok := chain.Dispatch(context.Background(), tt.failure)
			require.True(t, ok)
			assert.Equal(t, tt.status, resp.Status)

			body, isBody := resp.Body.(ErrorBody)
			require.True(t, isBody)
			assert.Equal(t, tt.code, body.Error)
			assert.Equal(t, tt.failure.Reference(), body.Reference)
		})
	}
}

func TestResponders_ValidationCarriesField(t *testing.T) {
	resp, ok := ValidationResponder().Handle(context.Background(), errors.ValidationField("email", "email is invalid"))
	require.True(t, ok)

	body := resp.Body.(ErrorBody)
	assert.Equal(t, "email", body.Field)
	assert.Equal(t, "email is invalid", body.Message)
}

func TestResponders_GenericNeverLeaks(t *testing.T) {
	resp, ok := GenericExceptionResponder().Handle(context.Background(), errors.PaymentFailed("card 4242 declined"))
	require.True(t, ok)

	body := resp.Body.(ErrorBody)
	assert.Equal(t, genericFailureText, body.Message)
	assert.Empty(t, body.Detail)
	assert.Empty(t, body.Kind)
}

func TestRegisterResponders_DevelopmentLeavesGenericOut(t *testing.T) {
	prod := RegisterResponders(dispatch.NewBuilder(dispatch.Options{}), false).Build()
	dev := RegisterResponders(dispatch.NewBuilder(dispatch.Options{}), true).Build()

	assert.Equal(t, prod.Len()-1, dev.Len())

	_, ok := dev.Dispatch(context.Background(), errors.Internal("boom"))
	assert.False(t, ok, "internal failures should fall through to the diagnostic fallback in development")
}

func TestScenario_PaymentFailedAlertsThenGenericResponds(t *testing.T) {
	capture := &testutil.CaptureTransport{}
	notifier := notify.New("capture", capture).WithRecipient("ops").WithSender("failwire")
	alerts := failurenotifier.NewHandler(failurenotifier.Options{AppName: "shop", Notifier: notifier, Logger: discardLogger()})

	generic := &spy{Responder: GenericExceptionResponder()}
	notFound := &spy{Responder: NotFoundResponder()}

	chain := dispatch.NewBuilder(dispatch.Options{Logger: discardLogger()}).
		Register(alerts.Matcher(), alerts).
		Register(generic.Matcher(), generic).
		Register(notFound.Matcher(), notFound).
		Build()

	f := errors.PaymentFailed("card declined")
	resp, ok := chain.Dispatch(context.Background(), f)
	require.True(t, ok)

	msgs := capture.Messages()
	require.Len(t, msgs, 1)
	assert.True(t, strings.Contains(msgs[0].Subject, "payment-failed"), "subject %q", msgs[0].Subject)
	assert.Equal(t, "card declined", msgs[0].Body)

	want, _ := GenericExceptionResponder().Handle(context.Background(), f)
	assert.Equal(t, want, resp)
	assert.Equal(t, 1, generic.calls)
	assert.Zero(t, notFound.calls)
}

func TestScenario_GeneralBeforeSpecificShadows(t *testing.T) {
	generic := &spy{Responder: GenericExceptionResponder()}
	notFound := &spy{Responder: NotFoundResponder()}

	chain := dispatch.NewBuilder(dispatch.Options{}).
		Register(generic.Matcher(), generic).
		Register(notFound.Matcher(), notFound).
		Build()

	f := errors.NotFound("page not found")
	resp, ok := chain.Dispatch(context.Background(), f)
	require.True(t, ok)

	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Equal(t, 1, generic.calls)
	assert.Zero(t, notFound.calls)
}
