package engine

import (
	"context"
	"fmt"
	"time"
)

// BatchOptions tunes ExecuteBatch. The zero value verifies every command
// and runs sequentially.
type BatchOptions struct {
	// Parallel allows the worker pool when the batch is large enough.
	Parallel bool
	// SkipVerify marks commands whose empty responses are normal (markers,
	// signs).
	SkipVerify bool
	Kind       OpKind
}

// ExecuteBatch runs independent command strings and returns the aggregated
// result. A failed command never aborts the rest.
func (e *Engine) ExecuteBatch(ctx context.Context, commands []string, opts BatchOptions) CommandResult {
	if opts.Kind == "" {
		opts.Kind = OpGeneric
	}
	if len(commands) == 0 {
		return CommandResult{ID: e.newID(), Success: true, Command: "batch of 0 commands"}
	}

	specs := make([]ExecSpec, len(commands))
	for i, c := range commands {
		specs[i] = ExecSpec{Command: c, Verify: !opts.SkipVerify, Kind: opts.Kind}
	}

	start := time.Now()
	results := e.dispatch(ctx, specs, opts.Parallel && len(specs) > parallelThreshold)
	return e.aggregate(fmt.Sprintf("batch of %d commands", len(commands)), results, time.Since(start))
}
