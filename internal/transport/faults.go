package transport

import "errors"

// Connection-level faults shared by all transports. The engine's error
// classifier matches these with errors.Is.
var (
	// ErrAuthRejected means the server refused the shared secret.
	ErrAuthRejected = errors.New("authentication rejected")

	// ErrUnreachable means the dial itself failed (refused, no route).
	ErrUnreachable = errors.New("server unreachable")
)
