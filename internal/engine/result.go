// Package engine is the reliable command-execution core: it drives a
// transport with timeouts, retries, and response verification, batches
// large region fills into adaptively sized chunks, and classifies failures
// into an actionable taxonomy.
package engine

import "time"

// OpKind tags what a command was doing, mainly so timeouts can say which
// kind of operation stalled.
type OpKind string

const (
	OpGeneric   OpKind = "generic"
	OpFill      OpKind = "fill"
	OpClear     OpKind = "clear"
	OpFlagQuery OpKind = "flag_query"
	OpProbe     OpKind = "probe"
)

// CommandResult is the outcome of one issued command, or of an aggregated
// batch. Immutable once returned.
type CommandResult struct {
	ID            string        `json:"id"`
	Success       bool          `json:"success"`
	Command       string        `json:"command"`
	RawResponse   string        `json:"raw_response,omitempty"`
	UnitsAffected int           `json:"units_affected"`
	ExecutionTime time.Duration `json:"execution_time"`
	// Retries counts the attempts actually used, capped at MaxRetries.
	// For aggregates it is the highest attempt count any member used, so
	// the cap holds there too.
	Retries int          `json:"retries"`
	Error   *ErrorReport `json:"error,omitempty"`
}

// ErrorMessage returns a caller-displayable error string, empty on success.
func (r CommandResult) ErrorMessage() string {
	if r.Error == nil {
		return ""
	}
	return r.Error.Message()
}
