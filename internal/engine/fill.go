package engine

import (
	"context"
	"fmt"
	"time"

	"voxelops.dev/internal/grid"
)

// FillRequest asks for an axis-aligned region to be set to Block. Replace
// restricts the fill to positions currently holding that block. Smart
// enables probe-based chunk skipping for terrain repairs (requires
// Replace).
type FillRequest struct {
	Min     grid.Point
	Max     grid.Point
	Block   string
	Replace string
	Smart   bool
}

func fillCommand(r grid.Region, block, replace string) string {
	cmd := fmt.Sprintf("fill %s %s %s", r.Min, r.Max, block)
	if replace != "" {
		cmd += " replace " + replace
	}
	return cmd
}

// ExecuteFill fills the requested region, decomposing it into chunk
// commands sized by the adaptive controller when it exceeds one chunk's
// volume. Returns the aggregated result.
func (e *Engine) ExecuteFill(ctx context.Context, req FillRequest) CommandResult {
	return e.fill(ctx, req, OpFill)
}

// ExecuteClear is a fill with air: it empties the region using the same
// chunking and adaptivity as ExecuteFill.
func (e *Engine) ExecuteClear(ctx context.Context, a, b grid.Point) CommandResult {
	return e.fill(ctx, FillRequest{Min: a, Max: b, Block: "air"}, OpClear)
}

func (e *Engine) fill(ctx context.Context, req FillRequest, kind OpKind) CommandResult {
	region := grid.NewRegion(req.Min, req.Max)

	// Chunk size is read once per batch; mid-batch adjustments apply to the
	// next batch only.
	edge := e.adaptive.ChunkSize()

	if region.Volume() <= edge*edge*edge {
		res := e.run(ctx, ExecSpec{Command: fillCommand(region, req.Block, req.Replace), Verify: true, Kind: kind})
		e.recordThroughput(kind, res)
		return res
	}

	chunks := region.Chunks(edge)
	total := len(chunks)
	if req.Smart && req.Replace != "" {
		chunks = e.pruneSatisfiedChunks(ctx, chunks, req.Replace)
		if skipped := total - len(chunks); skipped > 0 {
			e.log.Printf("[fill] %d/%d chunks already satisfied, skipping", skipped, total)
		}
	}

	summary := fmt.Sprintf("fill %s %s %s (%d chunks, edge %d)", region.Min, region.Max, req.Block, len(chunks), edge)
	if len(chunks) == 0 {
		// Every probe said the region is already in the target state.
		return CommandResult{
			ID:            e.newID(),
			Success:       true,
			Command:       summary,
			RawResponse:   "all chunks already satisfied",
			ExecutionTime: 0,
		}
	}

	specs := make([]ExecSpec, len(chunks))
	for i, c := range chunks {
		specs[i] = ExecSpec{Command: fillCommand(c, req.Block, req.Replace), Verify: true, Kind: kind}
	}

	start := time.Now()
	results := e.dispatch(ctx, specs, len(specs) > parallelThreshold)
	for _, r := range results {
		e.recordThroughput(kind, r)
	}
	return e.aggregate(summary, results, time.Since(start))
}

// recordThroughput feeds one finished fill/clear command into the adaptive
// controller's sample window.
func (e *Engine) recordThroughput(kind OpKind, r CommandResult) {
	secs := r.ExecutionTime.Seconds()
	ups := 0.0
	if secs > 0 {
		ups = float64(r.UnitsAffected) / secs
	}
	e.observeSample(PerformanceSample{
		Kind:           kind,
		Units:          r.UnitsAffected,
		Duration:       r.ExecutionTime,
		UnitsPerSecond: ups,
		Success:        r.Success,
		At:             e.now(),
	})
}
