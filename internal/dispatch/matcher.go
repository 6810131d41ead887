package dispatch

import (
	"slices"

	"github.com/target/failwire/internal/errors"
)

// Matcher decides whether an entry applies to a failure kind.
type Matcher func(kind *errors.Kind) bool

// IsA matches kind and all of its descendants.
func IsA(kind *errors.Kind) Matcher {
	return func(k *errors.Kind) bool { return k.Is(kind) }
}

// Exactly matches kind only, never its descendants.
func Exactly(kind *errors.Kind) Matcher {
	return func(k *errors.Kind) bool { return k != nil && k == kind }
}

// AnyOf matches when any of kinds is an ancestor of (or equal to) the failure kind.
func AnyOf(kinds ...*errors.Kind) Matcher {
	kinds = slices.Clone(kinds)
	return func(k *errors.Kind) bool {
		return slices.ContainsFunc(kinds, k.Is)
	}
}

// Any matches every failure.
func Any() Matcher {
	return func(*errors.Kind) bool { return true }
}

// Not inverts m.
func Not(m Matcher) Matcher {
	return func(k *errors.Kind) bool { return !m(k) }
}
