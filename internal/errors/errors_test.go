package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestFailure_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Failure
		want string
	}{
		{
			name: "failure without cause",
			err:  NotFound("resource not found"),
			want: "resource not found",
		},
		{
			name: "failure with cause",
			err:  Wrap(errors.New("underlying error"), KindInternal, "failed to process"),
			want: "failed to process: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Failure.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFailure_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, KindInternal, "wrapped error")

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(%v, cause) = false, want true", err)
	}
	if err.Message() != "wrapped error" {
		t.Errorf("Message() = %q, want %q", err.Message(), "wrapped error")
	}
}

func TestFailure_Reference(t *testing.T) {
	a := PaymentFailed("card declined")
	b := PaymentFailed("card declined")

	if a.Reference() == "" {
		t.Fatal("expected reference to be assigned")
	}
	if a.Reference() == b.Reference() {
		t.Fatal("expected distinct references per failure")
	}

	wrapped := fmt.Errorf("checkout: %w", a)
	if got := Reference(wrapped); got != a.Reference() {
		t.Errorf("Reference() = %q, want %q", got, a.Reference())
	}
	if got := Reference(errors.New("plain")); got != "" {
		t.Errorf("Reference(plain) = %q, want empty", got)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *Failure
		wantKind *Kind
		wantMsg  string
	}{
		{"not found", NotFound("resource not found"), KindNotFound, "resource not found"},
		{"not found formatted", NotFoundf("resource %s not found", "user"), KindNotFound, "resource user not found"},
		{"conflict", Conflict("resource already exists"), KindConflict, "resource already exists"},
		{"conflict formatted", Conflictf("%s exists", "user"), KindConflict, "user exists"},
		{"validation", Validation("invalid input"), KindValidation, "invalid input"},
		{"validation formatted", Validationf("bad %d", 1), KindValidation, "bad 1"},
		{"foreign key", ForeignKey("resource is in use"), KindForeignKey, "resource is in use"},
		{"foreign key formatted", ForeignKeyf("%s in use", "card"), KindForeignKey, "card in use"},
		{"internal", Internal("internal server error"), KindInternal, "internal server error"},
		{"internal formatted", Internalf("code %d", 7), KindInternal, "code 7"},
		{"payment failed", PaymentFailed("card declined"), KindPaymentFailed, "card declined"},
		{"sync timeout", SyncTimeout("ledger sync exceeded 30s"), KindSyncTimeout, "ledger sync exceeded 30s"},
		{"generic", Newf(KindAlertTest, "ping %s", "ops"), KindAlertTest, "ping ops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind() != tt.wantKind {
				t.Errorf("Kind() = %v, want %v", tt.err.Kind(), tt.wantKind)
			}
			if tt.err.Message() != tt.wantMsg {
				t.Errorf("Message() = %q, want %q", tt.err.Message(), tt.wantMsg)
			}
		})
	}
}

func TestNew_NilKindDefaultsToInternal(t *testing.T) {
	if got := New(nil, "x").Kind(); got != KindInternal {
		t.Errorf("New(nil).Kind() = %v, want %v", got, KindInternal)
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("email", "invalid email format")
	if err.Kind() != KindValidation {
		t.Errorf("ValidationField().Kind() = %v, want %v", err.Kind(), KindValidation)
	}
	if err.Field() != "email" {
		t.Errorf("ValidationField().Field() = %v, want %v", err.Field(), "email")
	}
	if GetField(fmt.Errorf("wrap: %w", err)) != "email" {
		t.Error("GetField should see through wrapping")
	}
}

func TestWrap_NilError(t *testing.T) {
	if err := Wrap(nil, KindInternal, "wrapped error"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
	if err := Wrapf(nil, KindInternal, "wrapped %s", "error"); err != nil {
		t.Errorf("Wrapf(nil) = %v, want nil", err)
	}
}

func TestWrapf(t *testing.T) {
	cause := errors.New("boom")
	err := Wrapf(cause, KindSyncTimeout, "sync %s", "ledger")
	if err.Message() != "sync ledger" {
		t.Errorf("Wrapf().Message() = %q", err.Message())
	}
	if !errors.Is(err, cause) {
		t.Error("Wrapf should preserve cause")
	}
}

func TestFrom(t *testing.T) {
	business := PaymentFailed("card declined")

	tests := []struct {
		name     string
		err      error
		wantKind *Kind
		same     bool
	}{
		{name: "failure returned as-is", err: business, wantKind: KindPaymentFailed, same: true},
		{name: "wrapped failure unwrapped", err: fmt.Errorf("checkout: %w", business), wantKind: KindPaymentFailed, same: true},
		{name: "deadline exceeded", err: context.DeadlineExceeded, wantKind: KindTimeout},
		{name: "canceled", err: context.Canceled, wantKind: KindCanceled},
		{name: "plain error", err: errors.New("nil map"), wantKind: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := From(tt.err)
			if got == nil {
				t.Fatal("From() returned nil")
			}
			if got.Kind() != tt.wantKind {
				t.Errorf("From().Kind() = %v, want %v", got.Kind(), tt.wantKind)
			}
			if tt.same && got != business {
				t.Error("expected the original failure to be returned")
			}
			if !tt.same && !errors.Is(got, tt.err) {
				t.Error("expected classified failure to wrap the original")
			}
		})
	}

	if From(nil) != nil {
		t.Error("From(nil) should be nil")
	}
}

func TestKindPredicates(t *testing.T) {
	tests := []struct {
		name string
		fn   func(error) bool
		err  error
		want bool
	}{
		{"not found", IsNotFound, NotFound("x"), true},
		{"not found other", IsNotFound, Conflict("x"), false},
		{"not found standard", IsNotFound, errors.New("x"), false},
		{"not found nil", IsNotFound, nil, false},
		{"conflict", IsConflict, Conflict("x"), true},
		{"conflict other", IsConflict, NotFound("x"), false},
		{"validation", IsValidation, Validation("x"), true},
		{"validation field", IsValidation, ValidationField("f", "x"), true},
		{"foreign key", IsForeignKey, ForeignKey("x"), true},
		{"internal", IsInternal, Internal("x"), true},
		{"timeout", IsTimeout, New(KindTimeout, "x"), true},
		{"canceled", IsCanceled, New(KindCanceled, "x"), true},
		{"business payment", IsBusiness, PaymentFailed("x"), true},
		{"business wrapped", IsBusiness, fmt.Errorf("w: %w", SyncTimeout("x")), true},
		{"business framework", IsBusiness, NotFound("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.err); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(nil) != nil {
		t.Error("KindOf(nil) should be nil")
	}
	if KindOf(errors.New("plain")) != nil {
		t.Error("KindOf(plain) should be nil")
	}
	if KindOf(SyncTimeout("x")) != KindSyncTimeout {
		t.Error("KindOf should return the failure kind")
	}
}
