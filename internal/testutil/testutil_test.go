package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/target/failwire/internal/notify"
)

func TestEnvBool(t *testing.T) {
	tests := map[string]bool{
		"1":     true,
		"TRUE":  true,
		" yes ": true,
		"y":     true,
		"0":     false,
		"no":    false,
		"":      false,
	}
	for value, want := range tests {
		t.Setenv("TESTUTIL_FLAG", value)
		assert.Equal(t, want, envBool("TESTUTIL_FLAG"), "value %q", value)
	}
}

func TestCaptureTransport(t *testing.T) {
	boom := errors.New("boom")
	c := &CaptureTransport{Err: boom}

	err := c.Deliver(context.Background(), notify.Message{To: "a", Subject: "s"})
	assert.ErrorIs(t, err, boom)

	msgs := c.Messages()
	assert.Len(t, msgs, 1)
	msgs[0].To = "mutated"
	assert.Equal(t, "a", c.Messages()[0].To)
}
