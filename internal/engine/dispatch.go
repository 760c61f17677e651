package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Batches of more than this many commands go through the worker pool.
const parallelThreshold = 4

// Per-batch failure detail keeps at most this many sample messages.
const maxErrorSamples = 5

// dispatch executes the specs and returns per-spec results in input order.
// Parallel and sequential paths produce identical aggregates; parallelism
// only changes wall-clock latency. Safe because batch members target
// disjoint regions or independent commands.
func (e *Engine) dispatch(ctx context.Context, specs []ExecSpec, parallel bool) []CommandResult {
	results := make([]CommandResult, len(specs))

	if !parallel || len(specs) <= parallelThreshold {
		for i, s := range specs {
			results[i] = e.run(ctx, s)
		}
		return results
	}

	workers := min(e.workers, len(specs))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = e.run(ctx, specs[i])
			}
		}()
	}
	for i := range specs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

// aggregate folds per-command results into one CommandResult: success iff
// every member succeeded, units summed, first failures sampled into the
// error detail. A failed member never aborts the rest (best effort), so the
// aggregate reports partial completion.
func (e *Engine) aggregate(command string, results []CommandResult, elapsed time.Duration) CommandResult {
	agg := CommandResult{
		ID:            e.newID(),
		Success:       true,
		Command:       command,
		ExecutionTime: elapsed,
	}

	var (
		failed  int
		details []string
		firstRp *ErrorReport
	)
	for _, r := range results {
		agg.UnitsAffected += r.UnitsAffected
		// Worst member, not the sum: the aggregate's attempt count stays
		// within the configured maximum like any single command's.
		agg.Retries = max(agg.Retries, r.Retries)
		if r.Success {
			continue
		}
		failed++
		if firstRp == nil {
			firstRp = r.Error
		}
		if len(details) < maxErrorSamples && r.Error != nil {
			details = append(details, r.Error.Message())
		}
	}

	if failed > 0 {
		agg.Success = false
		cat := CategoryGenericExecution
		if firstRp != nil {
			cat = firstRp.Category
		}
		agg.Error = &ErrorReport{
			Category:    cat,
			Detail:      fmt.Sprintf("%d of %d commands failed: %s", failed, len(results), strings.Join(details, "; ")),
			Suggestions: suggestions[cat],
		}
	}
	return agg
}
