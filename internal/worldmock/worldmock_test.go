package worldmock

import (
	"strings"
	"testing"

	"voxelops.dev/internal/grid"
)

func TestFillCountsChangedBlocks(t *testing.T) {
	w := New()
	resp := w.Handle("fill 0 0 0 1 1 1 stone")
	if resp != "Successfully filled 8 blocks" {
		t.Fatalf("response: %q", resp)
	}
	// Re-filling the same region changes nothing but still succeeds.
	resp = w.Handle("fill 0 0 0 1 1 1 stone")
	if resp != "Successfully filled 0 blocks" {
		t.Fatalf("idempotent response: %q", resp)
	}
}

func TestFillReplaceFilter(t *testing.T) {
	w := New()
	w.Handle("fill 0 0 0 1 0 0 stone")
	// Only the two remaining air positions match the filter.
	resp := w.Handle("fill 0 0 0 3 0 0 dirt replace air")
	if resp != "Successfully filled 2 blocks" {
		t.Fatalf("response: %q", resp)
	}
	if w.BlockAt(grid.Point{X: 0}) != "stone" {
		t.Fatal("replace filter overwrote non-matching block")
	}
}

func TestSetblockSilent(t *testing.T) {
	w := New()
	if resp := w.Handle("setblock 5 64 5 oak_sign"); resp != "" {
		t.Fatalf("expected empty response, got %q", resp)
	}
	if w.BlockAt(grid.Point{X: 5, Y: 64, Z: 5}) != "oak_sign" {
		t.Fatal("setblock did not place")
	}
}

func TestExecuteIfBlockProbe(t *testing.T) {
	w := New()
	w.Handle("setblock 1 2 3 stone")
	if resp := w.Handle("execute if block 1 2 3 stone"); resp != "Test passed" {
		t.Fatalf("probe hit: %q", resp)
	}
	if resp := w.Handle("execute if block 1 2 3 air"); resp != "Test failed" {
		t.Fatalf("probe miss: %q", resp)
	}
}

func TestGamerule(t *testing.T) {
	w := New()
	if resp := w.Handle("gamerule doMobSpawning"); resp != "Gamerule doMobSpawning is currently set to: true" {
		t.Fatalf("query: %q", resp)
	}
	if resp := w.Handle("gamerule doMobSpawning false"); resp != "Gamerule doMobSpawning is now set to: false" {
		t.Fatalf("set: %q", resp)
	}
	if resp := w.Handle("gamerule doMobSpawning"); !strings.HasSuffix(resp, "set to: false") {
		t.Fatalf("requery: %q", resp)
	}
}

func TestUnknownCommand(t *testing.T) {
	w := New()
	if resp := w.Handle("flil 0 0 0 1 1 1 stone"); !strings.HasPrefix(resp, "Unknown command") {
		t.Fatalf("response: %q", resp)
	}
}
