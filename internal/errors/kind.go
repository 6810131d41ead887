package errors

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Kind identifies a failure variant. Kinds form a tree: every kind except a
// root has exactly one parent, and matching walks that chain so a
// descendant is also routable as any of its ancestors.
//
// Kinds are compared by identity. Declare them once (package init or
// application startup) with NewKind and share the pointer.
type Kind struct {
	name   string
	parent *Kind
}

var (
	kindsMu sync.RWMutex
	kinds   = map[string]*Kind{}
)

// Roots of the two disjoint hierarchies.
var (
	// KindApplication is the base of every business-logic failure.
	KindApplication = NewKind("application", nil)
	// KindFramework is the base of failures raised by infrastructure (routing, storage, input parsing).
	KindFramework = NewKind("framework", nil)
)

// Framework failure kinds.
var (
	KindNotFound   = NewKind("not-found", KindFramework)
	KindValidation = NewKind("validation", KindFramework)
	KindConflict   = NewKind("conflict", KindFramework)
	KindForeignKey = NewKind("foreign-key", KindFramework)
	KindTimeout    = NewKind("timeout", KindFramework)
	KindCanceled   = NewKind("canceled", KindFramework)
	KindInternal   = NewKind("internal", KindFramework)
)

// Business failure kinds.
var (
	KindPaymentFailed = NewKind("payment-failed", KindApplication)
	KindSyncTimeout   = NewKind("sync-timeout", KindApplication)
	// KindAlertTest is raised by the test-fire endpoint and admin CLI to exercise the alert path.
	KindAlertTest = NewKind("alert-test", KindApplication)
)

// NewKind declares a kind with a stable display name. The name is used
// verbatim in alert subjects and metric tags, so it must be unique; declaring
// the same name twice panics since it indicates a programming error at init.
func NewKind(name string, parent *Kind) *Kind {
	name = strings.TrimSpace(name)
	if name == "" {
		panic("errors: kind name must not be empty")
	}

	kindsMu.Lock()
	defer kindsMu.Unlock()

	if _, exists := kinds[name]; exists {
		panic(fmt.Sprintf("errors: kind %q declared twice", name))
	}
	k := &Kind{name: name, parent: parent}
	kinds[name] = k
	return k
}

// LookupKind returns the declared kind with the given display name.
func LookupKind(name string) (*Kind, bool) {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	k, ok := kinds[strings.TrimSpace(name)]
	return k, ok
}

// Kinds returns every declared kind ordered by display name.
func Kinds() []*Kind {
	kindsMu.RLock()
	out := make([]*Kind, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, k)
	}
	kindsMu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Name returns the display name.
func (k *Kind) Name() string {
	if k == nil {
		return ""
	}
	return k.name
}

// String implements fmt.Stringer.
func (k *Kind) String() string {
	return k.Name()
}

// Parent returns the direct ancestor, or nil for a root.
func (k *Kind) Parent() *Kind {
	if k == nil {
		return nil
	}
	return k.parent
}

// Root returns the top of the hierarchy k belongs to.
func (k *Kind) Root() *Kind {
	if k == nil {
		return nil
	}
	cur := k
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// Is reports whether k equals target or descends from it.
func (k *Kind) Is(target *Kind) bool {
	if k == nil || target == nil {
		return false
	}
	for cur := k; cur != nil; cur = cur.parent {
		if cur == target {
			return true
		}
	}
	return false
}

// Path returns the chain from the root down to k, e.g. "application/payment-failed".
func (k *Kind) Path() string {
	if k == nil {
		return ""
	}
	var parts []string
	for cur := k; cur != nil; cur = cur.parent {
		parts = append(parts, cur.name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}
