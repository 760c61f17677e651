package engine

import (
	"context"
	"time"
)

// ExecSpec describes one command to run. Verify=false is for commands that
// legitimately answer with no text; success is then inferred from the
// absence of a transport fault.
type ExecSpec struct {
	Command string
	Verify  bool
	Kind    OpKind
}

// Execute runs one command with verification, retries, and backoff.
func (e *Engine) Execute(ctx context.Context, command string) CommandResult {
	return e.run(ctx, ExecSpec{Command: command, Verify: true, Kind: OpGeneric})
}

// ExecuteUnverified runs a command whose empty response is normal (e.g.
// certain place-block commands). Absence of a transport fault counts as
// success; the affected-unit count defaults to 1 when unparseable.
func (e *Engine) ExecuteUnverified(ctx context.Context, command string) CommandResult {
	return e.run(ctx, ExecSpec{Command: command, Verify: false, Kind: OpGeneric})
}

// run is the retry loop: attempt under a hard timeout, verify, back off
// exponentially (1s, 2s, 4s, ...) between failed attempts, give up after
// maxRetries attempts with a classified error.
func (e *Engine) run(ctx context.Context, spec ExecSpec) CommandResult {
	start := time.Now()

	var (
		lastErr error
		lastRaw string
		attempt int
	)
	for attempt = 1; attempt <= e.maxRetries; attempt++ {
		raw, err := e.attempt(ctx, spec.Command)
		if err == nil {
			if !spec.Verify || responseOK(raw) {
				return e.finishSuccess(spec, raw, attempt, time.Since(start))
			}
			// Verified as failed; retryable like a fault.
			lastErr, lastRaw = nil, raw
		} else {
			lastErr, lastRaw = err, ""
		}

		if ctx.Err() != nil {
			// Caller gave up; do not burn the remaining attempts.
			break
		}
		if attempt < e.maxRetries {
			delay := e.backoffBase << (attempt - 1)
			e.log.Printf("[engine] attempt %d/%d failed (%s), retrying in %s", attempt, e.maxRetries, spec.Kind, delay)
			if err := e.sleep(ctx, delay); err != nil {
				break
			}
		}
	}
	if attempt > e.maxRetries {
		attempt = e.maxRetries
	}

	res := CommandResult{
		ID:            e.newID(),
		Command:       spec.Command,
		RawResponse:   lastRaw,
		ExecutionTime: time.Since(start),
		Retries:       attempt,
		Error:         classify(lastErr, lastRaw, spec.Kind),
	}
	e.observe(res)
	return res
}

func (e *Engine) finishSuccess(spec ExecSpec, raw string, attempts int, elapsed time.Duration) CommandResult {
	units, ok := parseUnits(raw)
	if !ok {
		// Count defaults: 0 for verified commands (the response named no
		// count), 1 for unverified ones (the command did something even
		// though it said nothing).
		if spec.Verify {
			units = 0
		} else {
			units = 1
		}
	}
	res := CommandResult{
		ID:            e.newID(),
		Success:       true,
		Command:       spec.Command,
		RawResponse:   raw,
		UnitsAffected: units,
		ExecutionTime: elapsed,
		Retries:       attempts,
	}
	e.observe(res)
	return res
}

// attempt runs one transport round trip under the per-command timeout. The
// transport call runs in its own goroutine; on timeout it is abandoned
// client-side (the buffered channel lets it finish and be collected).
func (e *Engine) attempt(ctx context.Context, command string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type outcome struct {
		raw string
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		raw, err := e.tr.Execute(attemptCtx, command)
		ch <- outcome{raw: raw, err: err}
	}()

	select {
	case <-attemptCtx.Done():
		return "", attemptCtx.Err()
	case o := <-ch:
		return o.raw, o.err
	}
}
