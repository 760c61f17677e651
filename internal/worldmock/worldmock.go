// Package worldmock is an in-memory block world that answers the admin
// command dialect the engine speaks: fill, setblock, execute-if-block
// probes, and gamerules. It backs the mockworld daemon and the integration
// tests; response wording deliberately mirrors real servers so the
// engine's verification heuristics get exercised.
package worldmock

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"voxelops.dev/internal/grid"
)

const airBlock = "air"

// World is safe for concurrent use by the dispatch worker pool.
type World struct {
	mu     sync.Mutex
	blocks map[grid.Point]string // absent means air
	rules  map[string]string

	// Latency delays every command, for throughput experiments.
	Latency time.Duration
	// FailCommand, when set, makes matching commands answer with an error
	// line. Used to inject chunk failures.
	FailCommand func(cmd string) bool
}

func New() *World {
	return &World{
		blocks: make(map[grid.Point]string),
		rules: map[string]string{
			"doDaylightCycle": "true",
			"doMobSpawning":   "true",
			"keepInventory":   "false",
		},
	}
}

// BlockAt returns the block at p, "air" when unset.
func (w *World) BlockAt(p grid.Point) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.blockAtLocked(p)
}

func (w *World) blockAtLocked(p grid.Point) string {
	if b, ok := w.blocks[p]; ok {
		return b
	}
	return airBlock
}

func (w *World) setLocked(p grid.Point, block string) {
	if block == airBlock {
		delete(w.blocks, p)
		return
	}
	w.blocks[p] = block
}

// Handle interprets one command and returns its response text.
func (w *World) Handle(cmd string) string {
	if w.Latency > 0 {
		time.Sleep(w.Latency)
	}
	if w.FailCommand != nil && w.FailCommand(cmd) {
		return "An unexpected error occurred while executing the command"
	}

	fields := strings.Fields(strings.TrimSpace(cmd))
	if len(fields) == 0 {
		return "Unknown command: "
	}
	switch fields[0] {
	case "fill":
		return w.handleFill(fields[1:])
	case "setblock":
		return w.handleSetblock(fields[1:])
	case "execute":
		return w.handleExecute(fields[1:])
	case "gamerule":
		return w.handleGamerule(fields[1:])
	case "seed":
		return "Seed: [1337]"
	case "say":
		return ""
	default:
		return "Unknown command: " + fields[0]
	}
}

func parsePoint(fields []string) (grid.Point, bool) {
	if len(fields) < 3 {
		return grid.Point{}, false
	}
	x, ex := strconv.Atoi(fields[0])
	y, ey := strconv.Atoi(fields[1])
	z, ez := strconv.Atoi(fields[2])
	if ex != nil || ey != nil || ez != nil {
		return grid.Point{}, false
	}
	return grid.Point{X: x, Y: y, Z: z}, true
}

// fill <x1 y1 z1> <x2 y2 z2> <block> [replace <filter>]
func (w *World) handleFill(args []string) string {
	if len(args) < 7 {
		return "Invalid command syntax: fill"
	}
	a, okA := parsePoint(args[0:3])
	b, okB := parsePoint(args[3:6])
	if !okA || !okB {
		return "Invalid position"
	}
	block := args[6]
	filter := ""
	if len(args) >= 9 && args[7] == "replace" {
		filter = args[8]
	}

	region := grid.NewRegion(a, b)
	w.mu.Lock()
	defer w.mu.Unlock()

	changed := 0
	for x := region.Min.X; x <= region.Max.X; x++ {
		for y := region.Min.Y; y <= region.Max.Y; y++ {
			for z := region.Min.Z; z <= region.Max.Z; z++ {
				p := grid.Point{X: x, Y: y, Z: z}
				cur := w.blockAtLocked(p)
				if filter != "" && cur != filter {
					continue
				}
				if cur == block {
					continue
				}
				w.setLocked(p, block)
				changed++
			}
		}
	}
	if changed == 0 {
		// Idempotent re-fill still succeeds.
		return "Successfully filled 0 blocks"
	}
	return fmt.Sprintf("Successfully filled %d blocks", changed)
}

// setblock <x y z> <block>; answers nothing, like real place commands.
func (w *World) handleSetblock(args []string) string {
	if len(args) < 4 {
		return "Invalid command syntax: setblock"
	}
	p, ok := parsePoint(args[0:3])
	if !ok {
		return "Invalid position"
	}
	w.mu.Lock()
	w.setLocked(p, args[3])
	w.mu.Unlock()
	return ""
}

// execute if block <x y z> <block>
func (w *World) handleExecute(args []string) string {
	if len(args) < 6 || args[0] != "if" || args[1] != "block" {
		return "Invalid command syntax: execute"
	}
	p, ok := parsePoint(args[2:5])
	if !ok {
		return "Invalid position"
	}
	if w.BlockAt(p) == args[5] {
		return "Test passed"
	}
	return "Test failed"
}

// gamerule <name> [value]
func (w *World) handleGamerule(args []string) string {
	if len(args) == 0 {
		return "Invalid command syntax: gamerule"
	}
	name := args[0]
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(args) == 1 {
		v, ok := w.rules[name]
		if !ok {
			return "Unknown gamerule: " + name
		}
		return fmt.Sprintf("Gamerule %s is currently set to: %s", name, v)
	}
	w.rules[name] = args[1]
	return fmt.Sprintf("Gamerule %s is now set to: %s", name, args[1])
}
