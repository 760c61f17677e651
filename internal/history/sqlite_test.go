package history

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"voxelops.dev/internal/engine"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func TestRecordAndCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s := openTestStore(t, path)

	s.RecordResult(engine.CommandResult{
		ID: "op-1", Success: true, Command: "fill 0 0 0 9 9 9 stone",
		UnitsAffected: 1000, ExecutionTime: 80 * time.Millisecond, Retries: 1,
	})
	s.RecordResult(engine.CommandResult{
		ID: "op-2", Command: "fill 10 0 0 19 9 9 stone", Retries: 3,
		Error: &engine.ErrorReport{Category: engine.CategoryTimeout, Detail: "fill operation timed out"},
	})
	s.RecordSample(engine.PerformanceSample{
		Kind: engine.OpFill, Units: 1000, Duration: 80 * time.Millisecond,
		UnitsPerSecond: 12500, Success: true, At: time.Now(),
	})
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopen to confirm the writes landed.
	s2 := openTestStore(t, path)
	defer s2.Close()

	total, failed, err := s2.OpCounts()
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if total != 2 || failed != 1 {
		t.Fatalf("counts: total=%d failed=%d", total, failed)
	}
}

func TestRecordAfterCloseIsNoop(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "history.db"))
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	// Must not panic on a closed channel.
	s.RecordResult(engine.CommandResult{ID: "late"})
	s.RecordSample(engine.PerformanceSample{})
}

func TestRecordDuringCloseDoesNotPanic(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "history.db"))

	// Hammer the store from writers while Close runs; a send slipping past
	// the closed check onto a closed channel would panic.
	done := make(chan struct{})
	for w := 0; w < 4; w++ {
		go func(w int) {
			for i := 0; ; i++ {
				select {
				case <-done:
					return
				default:
				}
				s.RecordResult(engine.CommandResult{ID: fmt.Sprintf("op-%d-%d", w, i)})
				s.RecordSample(engine.PerformanceSample{Kind: engine.OpFill})
			}
		}(w)
	}

	time.Sleep(10 * time.Millisecond)
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	close(done)
}
