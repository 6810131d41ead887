package errors

import (
	"context"
	goerrors "errors"
	"reflect"
	"strings"

	failerrors "github.com/target/failwire/internal/errors"
)

// Classify returns a low-cardinality error class for metric tags and log fields.
//
// Failures are classified by kind ("payment_failed"); context errors get a
// fixed class; anything else is named after the innermost concrete error type.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	if kind := failerrors.KindOf(err); kind != nil {
		return snake(kind.Name())
	}
	switch {
	case goerrors.Is(err, context.DeadlineExceeded):
		return "deadline_exceeded"
	case goerrors.Is(err, context.Canceled):
		return "canceled"
	}

	for {
		inner := goerrors.Unwrap(err)
		if inner == nil {
			break
		}
		err = inner
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}
	if name := snake(t.String()); name != "" {
		return name
	}
	return "unknown"
}

func snake(s string) string {
	return strings.ToLower(strings.NewReplacer("*", "", ".", "_", "-", "_").Replace(s))
}
