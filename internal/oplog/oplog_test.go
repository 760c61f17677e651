package oplog

import (
	"bufio"
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"

	"voxelops.dev/internal/engine"
)

func TestWriteAndReadBack(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, log.New(io.Discard, "", 0))

	w.RecordResult(engine.CommandResult{
		ID:            "op-1",
		Success:       true,
		Command:       "fill 0 0 0 9 9 9 stone",
		UnitsAffected: 1000,
		ExecutionTime: 120 * time.Millisecond,
		Retries:       1,
	})
	w.RecordSample(engine.PerformanceSample{
		Kind: engine.OpFill, Units: 1000, Duration: 120 * time.Millisecond,
		UnitsPerSecond: 8333, Success: true, At: time.Now(),
	})
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "ops-*.jsonl.zst"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("oplog files: %v (%v)", matches, err)
	}

	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd: %v", err)
	}
	defer dec.Close()

	var kinds []string
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var rec struct {
			Kind   string                `json:"kind"`
			Result *engine.CommandResult `json:"result"`
		}
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("decode: %v", err)
		}
		kinds = append(kinds, rec.Kind)
		if rec.Kind == "result" && rec.Result.ID != "op-1" {
			t.Fatalf("result: %+v", rec.Result)
		}
	}
	if len(kinds) != 2 || kinds[0] != "result" || kinds[1] != "sample" {
		t.Fatalf("kinds: %v", kinds)
	}
}
