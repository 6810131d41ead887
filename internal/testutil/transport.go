package testutil

import (
	"context"
	"sync"

	"github.com/target/failwire/internal/notify"
)

// CaptureTransport records every delivered message and returns Err, if set.
type CaptureTransport struct {
	Err error

	mu   sync.Mutex
	msgs []notify.Message
}

var _ notify.Transport = (*CaptureTransport)(nil)

// Deliver implements notify.Transport.
func (c *CaptureTransport) Deliver(_ context.Context, msg notify.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return c.Err
}

// Messages returns a copy of everything delivered so far.
func (c *CaptureTransport) Messages() []notify.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]notify.Message(nil), c.msgs...)
}
