package engine_test

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"voxelops.dev/internal/engine"
	"voxelops.dev/internal/grid"
	"voxelops.dev/internal/transport/rcon"
	"voxelops.dev/internal/worldmock"
)

// startWorld runs a mock world behind a real RCON listener and returns an
// engine wired to it over TCP.
func startWorld(t *testing.T, w *worldmock.World, opts engine.Options) *engine.Engine {
	t.Helper()
	srv := rcon.NewServer("hunter2", w.Handle, log.New(io.Discard, "", 0))
	if err := srv.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = srv.Close() })

	tr := rcon.NewClient(srv.Addr().String(), "hunter2", time.Second)
	return engine.New(tr, opts)
}

func TestEndToEndFill(t *testing.T) {
	w := worldmock.New()
	e := startWorld(t, w, engine.Options{Timeout: 5 * time.Second})

	res := e.ExecuteFill(context.Background(), engine.FillRequest{
		Min: grid.Point{}, Max: grid.Point{X: 99, Y: 4, Z: 99}, Block: "stone",
	})
	if !res.Success {
		t.Fatalf("fill: %+v", res)
	}
	// 100x5x100 blocks of air became stone, across a 4x1x4 chunk grid.
	if res.UnitsAffected != 100*5*100 {
		t.Fatalf("units: %d", res.UnitsAffected)
	}
	if w.BlockAt(grid.Point{X: 50, Y: 2, Z: 50}) != "stone" {
		t.Fatal("world not filled")
	}

	// Idempotence: the repeat succeeds and changes nothing.
	again := e.ExecuteFill(context.Background(), engine.FillRequest{
		Min: grid.Point{}, Max: grid.Point{X: 99, Y: 4, Z: 99}, Block: "stone",
	})
	if !again.Success || again.UnitsAffected != 0 {
		t.Fatalf("repeat fill: %+v", again)
	}
}

func TestEndToEndSmartRepair(t *testing.T) {
	w := worldmock.New()
	e := startWorld(t, w, engine.Options{Timeout: 5 * time.Second})

	// Pre-fill the ground, then knock a hole in one corner chunk.
	if res := e.ExecuteFill(context.Background(), engine.FillRequest{
		Min: grid.Point{}, Max: grid.Point{X: 99, Y: 3, Z: 99}, Block: "dirt",
	}); !res.Success {
		t.Fatalf("prepare: %+v", res)
	}
	w.Handle("fill 0 0 0 10 3 10 air")

	res := e.ExecuteFill(context.Background(), engine.FillRequest{
		Min: grid.Point{}, Max: grid.Point{X: 99, Y: 3, Z: 99},
		Block: "dirt", Replace: "air", Smart: true,
	})
	if !res.Success {
		t.Fatalf("repair: %+v", res)
	}
	if res.UnitsAffected != 11*4*11 {
		t.Fatalf("repaired units: %d", res.UnitsAffected)
	}
	if w.BlockAt(grid.Point{X: 5, Y: 1, Z: 5}) != "dirt" {
		t.Fatal("hole not repaired")
	}
}

func TestEndToEndPartialFailure(t *testing.T) {
	w := worldmock.New()
	w.FailCommand = func(cmd string) bool {
		// Fail any chunk starting at x=32.
		return strings.HasPrefix(cmd, "fill 32 ")
	}
	e := startWorld(t, w, engine.Options{Timeout: 5 * time.Second, MaxRetries: 1})

	res := e.ExecuteFill(context.Background(), engine.FillRequest{
		Min: grid.Point{}, Max: grid.Point{X: 63, Y: 15, Z: 63}, Block: "stone",
	})
	if res.Success {
		t.Fatal("expected partial failure")
	}
	if res.Error == nil || !strings.Contains(res.Error.Detail, "2 of 4") {
		t.Fatalf("aggregate error: %+v", res.Error)
	}
	if res.UnitsAffected != 2*32*16*32 {
		t.Fatalf("surviving units: %d", res.UnitsAffected)
	}
}

func TestEndToEndGamerules(t *testing.T) {
	w := worldmock.New()
	e := startWorld(t, w, engine.Options{Timeout: 5 * time.Second})

	ok, err := e.VerifyGamerule(context.Background(), "keepInventory", "false")
	if err != nil || !ok {
		t.Fatalf("verify initial: ok=%v err=%v", ok, err)
	}
	if res := e.SetGamerule(context.Background(), "keepInventory", "true"); !res.Success {
		t.Fatalf("set: %+v", res)
	}
	ok, err = e.VerifyGamerule(context.Background(), "keepInventory", "true")
	if err != nil || !ok {
		t.Fatalf("verify after set: ok=%v err=%v", ok, err)
	}
}

func TestEndToEndBatchSigns(t *testing.T) {
	w := worldmock.New()
	e := startWorld(t, w, engine.Options{Timeout: 5 * time.Second})

	cmds := []string{
		"setblock 0 64 0 oak_sign",
		"setblock 1 64 0 oak_sign",
		"setblock 2 64 0 oak_sign",
		"setblock 3 64 0 oak_sign",
		"setblock 4 64 0 oak_sign",
		"setblock 5 64 0 oak_sign",
	}
	res := e.ExecuteBatch(context.Background(), cmds, engine.BatchOptions{Parallel: true, SkipVerify: true})
	if !res.Success {
		t.Fatalf("batch: %+v", res)
	}
	if res.UnitsAffected != len(cmds) {
		t.Fatalf("units: %d", res.UnitsAffected)
	}
	for i := range cmds {
		if w.BlockAt(grid.Point{X: i, Y: 64}) != "oak_sign" {
			t.Fatalf("sign %d missing", i)
		}
	}
}
