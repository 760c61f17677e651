// Package transport defines how a single admin command reaches a remote
// world server. Implementations open one short-lived authenticated session
// per call and never retry; retry policy belongs to the engine.
package transport

import "context"

// Transport sends exactly one command and returns the raw response text.
// Each call dials, authenticates, sends, and closes; no connection state
// survives between calls.
type Transport interface {
	Execute(ctx context.Context, command string) (string, error)
}

// Func adapts a function to the Transport interface. Used by tests.
type Func func(ctx context.Context, command string) (string, error)

func (f Func) Execute(ctx context.Context, command string) (string, error) {
	return f(ctx, command)
}
