package errors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Failure is a typed error occurrence. Its kind is fixed at construction and
// drives every routing decision; the reference ID lets operators correlate a
// user-visible response with logs and alerts.
//
// Failure is immutable. It supports errors.Is / errors.As through Unwrap.
type Failure struct {
	kind    *Kind
	message string
	cause   error
	field   string
	ref     string
}

// Error implements the error interface.
func (f *Failure) Error() string {
	if f.cause != nil {
		return fmt.Sprintf("%s: %v", f.message, f.cause)
	}
	return f.message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (f *Failure) Unwrap() error {
	return f.cause
}

// Kind returns the failure kind.
func (f *Failure) Kind() *Kind { return f.kind }

// Message returns the human-readable message without the cause chain.
func (f *Failure) Message() string { return f.message }

// Field returns the input field a validation failure refers to, if any.
func (f *Failure) Field() string { return f.field }

// Reference returns the unique reference ID assigned at construction.
func (f *Failure) Reference() string { return f.ref }

func newFailure(kind *Kind, message string, cause error, field string) *Failure {
	if kind == nil {
		kind = KindInternal
	}
	return &Failure{
		kind:    kind,
		message: message,
		cause:   cause,
		field:   field,
		ref:     uuid.NewString(),
	}
}

// New creates a failure of the given kind.
func New(kind *Kind, message string) *Failure {
	return newFailure(kind, message, nil, "")
}

// Newf creates a failure of the given kind with a formatted message.
func Newf(kind *Kind, format string, args ...any) *Failure {
	return newFailure(kind, fmt.Sprintf(format, args...), nil, "")
}

// NotFound creates a new NotFound failure.
func NotFound(message string) *Failure {
	return New(KindNotFound, message)
}

// NotFoundf creates a new NotFound failure with formatted message.
func NotFoundf(format string, args ...any) *Failure {
	return Newf(KindNotFound, format, args...)
}

// Conflict creates a new Conflict failure.
func Conflict(message string) *Failure {
	return New(KindConflict, message)
}

// Conflictf creates a new Conflict failure with formatted message.
func Conflictf(format string, args ...any) *Failure {
	return Newf(KindConflict, format, args...)
}

// Validation creates a new Validation failure.
func Validation(message string) *Failure {
	return New(KindValidation, message)
}

// Validationf creates a new Validation failure with formatted message.
func Validationf(format string, args ...any) *Failure {
	return Newf(KindValidation, format, args...)
}

// ValidationField creates a new Validation failure for a specific field.
func ValidationField(field, message string) *Failure {
	return newFailure(KindValidation, message, nil, field)
}

// ForeignKey creates a new ForeignKey failure.
func ForeignKey(message string) *Failure {
	return New(KindForeignKey, message)
}

// ForeignKeyf creates a new ForeignKey failure with formatted message.
func ForeignKeyf(format string, args ...any) *Failure {
	return Newf(KindForeignKey, format, args...)
}

// Internal creates a new Internal failure.
func Internal(message string) *Failure {
	return New(KindInternal, message)
}

// Internalf creates a new Internal failure with formatted message.
func Internalf(format string, args ...any) *Failure {
	return Newf(KindInternal, format, args...)
}

// PaymentFailed creates a business failure for a rejected payment.
func PaymentFailed(message string) *Failure {
	return New(KindPaymentFailed, message)
}

// SyncTimeout creates a business failure for a synchronisation that ran out of time.
func SyncTimeout(message string) *Failure {
	return New(KindSyncTimeout, message)
}

// Wrap wraps an existing error in a Failure, preserving the cause.
func Wrap(err error, kind *Kind, message string) *Failure {
	if err == nil {
		return nil
	}
	return newFailure(kind, message, err, "")
}

// MessageTemplate describes a lazily formatted error message used with Wrapf.
type MessageTemplate struct {
	format string
	args   []any
}

// Messagef creates a lazily formatted message template for Wrapf.
func Messagef(format string, args ...any) MessageTemplate {
	return MessageTemplate{
		format: format,
		args:   args,
	}
}

func (mt MessageTemplate) String() string {
	if len(mt.args) == 0 {
		return mt.format
	}
	return fmt.Sprintf(mt.format, mt.args...)
}

// WrapTemplate wraps an existing error using a preconstructed message template.
func WrapTemplate(err error, kind *Kind, template MessageTemplate) *Failure {
	if err == nil {
		return nil
	}
	return newFailure(kind, template.String(), err, "")
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, kind *Kind, format string, args ...any) *Failure {
	return WrapTemplate(err, kind, Messagef(format, args...))
}

// From converts any error into a Failure. Failures anywhere in the chain are
// returned as-is; database and context errors are classified via MapDBError;
// everything else becomes an internal failure wrapping the original.
func From(err error) *Failure {
	if err == nil {
		return nil
	}

	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	if errors.As(MapDBError(err), &f) {
		return f
	}
	return Wrap(err, KindInternal, "unexpected error")
}

// KindOf returns the kind of the outermost Failure in err's chain, or nil.
func KindOf(err error) *Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.kind
	}
	return nil
}

// Is reports whether err carries a Failure whose kind is, or descends from, kind.
func Is(err error, kind *Kind) bool {
	return KindOf(err).Is(kind)
}

// IsNotFound checks if an error is a NotFound failure.
func IsNotFound(err error) bool {
	return Is(err, KindNotFound)
}

// IsConflict checks if an error is a Conflict failure.
func IsConflict(err error) bool {
	return Is(err, KindConflict)
}

// IsValidation checks if an error is a Validation failure.
func IsValidation(err error) bool {
	return Is(err, KindValidation)
}

// IsForeignKey checks if an error is a ForeignKey failure.
func IsForeignKey(err error) bool {
	return Is(err, KindForeignKey)
}

// IsInternal checks if an error is an Internal failure.
func IsInternal(err error) bool {
	return Is(err, KindInternal)
}

// IsTimeout checks if an error is a Timeout failure.
func IsTimeout(err error) bool {
	return Is(err, KindTimeout)
}

// IsCanceled checks if an error is a Canceled failure.
func IsCanceled(err error) bool {
	return Is(err, KindCanceled)
}

// IsBusiness checks if an error is any business-logic failure.
func IsBusiness(err error) bool {
	return Is(err, KindApplication)
}

// GetField returns the Field from an error, or empty string if not a Failure or no field set.
func GetField(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.field
	}
	return ""
}

// Reference returns the reference ID of the Failure in err's chain, or empty string.
func Reference(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.ref
	}
	return ""
}
