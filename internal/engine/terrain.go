package engine

import (
	"context"
	"fmt"
	"strings"

	"voxelops.dev/internal/grid"
)

// Terrain-repair optimization: before filling a chunk, probe three sample
// points (opposite corners and center) for the block being replaced. A
// chunk where no probe finds it is assumed already satisfied and dropped.

func probeCommand(p grid.Point, block string) string {
	return fmt.Sprintf("execute if block %s %s", p, block)
}

// probeHit reports whether a probe response indicates the target block is
// present at the sampled position.
func probeHit(resp string) bool {
	low := strings.ToLower(resp)
	return strings.Contains(low, "passed") || strings.Contains(low, "found the block")
}

// probeMiss reports an explicit negative: the server ran the test and the
// block is not there. Only this wording clears a sample point; anything
// else the server might say is inconclusive.
func probeMiss(resp string) bool {
	return strings.Contains(strings.ToLower(resp), "test failed")
}

// chunkNeedsFill probes the chunk's sample points. Probes run unverified:
// a negative probe legitimately answers "Test failed", which the verifier
// would misread as an error. A chunk is skipped only when every probe
// comes back as an explicit miss; faults and unrecognized responses (a
// server that rejects the probe dialect, garbled output) conservatively
// count as "needs filling" so a bad probe can never skip real work.
func (e *Engine) chunkNeedsFill(ctx context.Context, c grid.Region, target string) bool {
	for _, p := range c.SamplePoints() {
		res := e.run(ctx, ExecSpec{Command: probeCommand(p, target), Verify: false, Kind: OpProbe})
		if !res.Success {
			return true
		}
		if probeHit(res.RawResponse) {
			return true
		}
		if !probeMiss(res.RawResponse) {
			return true
		}
	}
	return false
}

func (e *Engine) pruneSatisfiedChunks(ctx context.Context, chunks []grid.Region, target string) []grid.Region {
	kept := chunks[:0:0]
	for _, c := range chunks {
		if e.chunkNeedsFill(ctx, c, target) {
			kept = append(kept, c)
		}
	}
	return kept
}
