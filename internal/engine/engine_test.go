package engine

import (
	"context"
	"sync/atomic"
	"time"

	"voxelops.dev/internal/transport"
)

// testEngine builds an Engine with instant backoff so retry tests run fast.
func testEngine(tr transport.Transport, opts Options) *Engine {
	e := New(tr, opts)
	e.sleep = func(context.Context, time.Duration) error { return nil }
	return e
}

// countingTransport answers every command with a fixed response and counts
// calls. Safe for concurrent use.
type countingTransport struct {
	calls    atomic.Int64
	response string
	err      error
}

func (c *countingTransport) Execute(ctx context.Context, command string) (string, error) {
	c.calls.Add(1)
	if c.err != nil {
		return "", c.err
	}
	return c.response, nil
}

// blockingTransport never answers before the attempt deadline.
type blockingTransport struct {
	calls atomic.Int64
}

func (b *blockingTransport) Execute(ctx context.Context, command string) (string, error) {
	b.calls.Add(1)
	<-ctx.Done()
	return "", ctx.Err()
}
