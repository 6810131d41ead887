// Package ports defines interfaces (hexagonal ports) for alerting behavior.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"
	"time"
)

// CooldownStore rate-limits alerts per key.
type CooldownStore interface {
	// Acquire reports whether key is outside its cooldown window and, when it
	// is, opens a new window of the given length. A non-positive window
	// always acquires.
	Acquire(ctx context.Context, key string, window time.Duration) (bool, error)
	// Reset closes the window for key so the next Acquire succeeds.
	Reset(ctx context.Context, key string) error
}
