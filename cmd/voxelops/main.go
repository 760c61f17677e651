// voxelops issues administrative commands to a remote voxel world server
// reliably: retries with backoff, adaptive chunking for large fills, and
// classified errors with recovery suggestions.
//
// Usage:
//
//	voxelops [-config voxelops.yaml] exec <command...>
//	voxelops [-config voxelops.yaml] fill -from "x y z" -to "x y z" -block stone [-replace air] [-smart]
//	voxelops [-config voxelops.yaml] clear -from "x y z" -to "x y z"
//	voxelops [-config voxelops.yaml] batch <manifest.yaml>
//	voxelops [-config voxelops.yaml] gamerule <name> [value]
//	voxelops [-config voxelops.yaml] status
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"voxelops.dev/internal/config"
	"voxelops.dev/internal/engine"
	"voxelops.dev/internal/grid"
	"voxelops.dev/internal/history"
	"voxelops.dev/internal/manifest"
	"voxelops.dev/internal/oplog"
	"voxelops.dev/internal/transport"
	"voxelops.dev/internal/transport/rcon"
	"voxelops.dev/internal/transport/wsconsole"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to voxelops.yaml (defaults apply when empty)")
		verbose    = flag.Bool("v", false, "log retry and batch progress")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[voxelops] ", log.LstdFlags)

	cfg := config.Defaults()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			logger.Fatalf("load config: %v", err)
		}
	}
	if pw := os.Getenv("VOXELOPS_PASSWORD"); pw != "" {
		cfg.Password = pw
	}

	args := flag.Args()
	if len(args) == 0 {
		logger.Fatalf("missing subcommand: exec | fill | clear | batch | gamerule | status")
	}
	if args[0] == "status" {
		runStatus(cfg, logger)
		return
	}

	e, cleanup := buildEngine(cfg, logger, *verbose)
	defer cleanup()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var res engine.CommandResult
	switch args[0] {
	case "exec":
		if len(args) < 2 {
			logger.Fatalf("exec: missing command")
		}
		res = e.Execute(ctx, strings.Join(args[1:], " "))
	case "fill":
		res = runFill(ctx, e, args[1:], logger, false)
	case "clear":
		res = runFill(ctx, e, args[1:], logger, true)
	case "batch":
		res = runBatch(ctx, e, args[1:], logger)
	case "gamerule":
		runGamerule(ctx, e, args[1:], logger)
		return
	default:
		logger.Fatalf("unknown subcommand: %s", args[0])
	}

	printResult(res)
	if !res.Success {
		os.Exit(1)
	}
}

func buildEngine(cfg config.Config, logger *log.Logger, verbose bool) (*engine.Engine, func()) {
	var tr transport.Transport
	switch cfg.Transport {
	case "wsconsole":
		tr = wsconsole.NewClient(cfg.WSURL(), cfg.Password, cfg.Timeout())
	default:
		tr = rcon.NewClient(cfg.Addr(), cfg.Password, cfg.Timeout())
	}

	var (
		observers multiObserver
		closers   []func()
	)
	if cfg.OplogDir != "" {
		w := oplog.New(cfg.OplogDir, logger)
		observers = append(observers, w)
		closers = append(closers, func() { _ = w.Close() })
	}
	if cfg.HistoryPath != "" {
		st, err := history.Open(cfg.HistoryPath, logger)
		if err != nil {
			logger.Fatalf("open history: %v", err)
		}
		observers = append(observers, st)
		closers = append(closers, func() { _ = st.Close() })
	}

	opts := engine.Options{
		Timeout:      cfg.Timeout(),
		MaxRetries:   cfg.MaxRetries,
		ChunkSize:    cfg.ChunkSize,
		MinChunkSize: cfg.MinChunkSize,
		MaxChunkSize: cfg.MaxChunkSize,
		WindowSize:   cfg.WindowSize,
		CacheTTL:     cfg.CacheTTL(),
		Workers:      cfg.Workers,
	}
	if verbose {
		opts.Logger = logger
	}
	if len(observers) > 0 {
		opts.Observer = observers
	}

	return engine.New(tr, opts), func() {
		for _, c := range closers {
			c()
		}
	}
}

// multiObserver fans results and samples out to every configured sink.
type multiObserver []engine.Observer

func (m multiObserver) RecordResult(r engine.CommandResult) {
	for _, o := range m {
		o.RecordResult(r)
	}
}

func (m multiObserver) RecordSample(s engine.PerformanceSample) {
	for _, o := range m {
		if so, ok := o.(engine.SampleObserver); ok {
			so.RecordSample(s)
		}
	}
}

func parsePoint(s string) (grid.Point, error) {
	fields := strings.Fields(strings.ReplaceAll(s, ",", " "))
	if len(fields) != 3 {
		return grid.Point{}, fmt.Errorf("want three coordinates, got %q", s)
	}
	var p grid.Point
	if _, err := fmt.Sscanf(strings.Join(fields, " "), "%d %d %d", &p.X, &p.Y, &p.Z); err != nil {
		return grid.Point{}, fmt.Errorf("parse %q: %w", s, err)
	}
	return p, nil
}

func runFill(ctx context.Context, e *engine.Engine, args []string, logger *log.Logger, clear bool) engine.CommandResult {
	fs := flag.NewFlagSet("fill", flag.ExitOnError)
	var (
		from    = fs.String("from", "", "region corner, e.g. \"0 64 0\"")
		to      = fs.String("to", "", "opposite corner")
		block   = fs.String("block", "stone", "block to place")
		replace = fs.String("replace", "", "only replace this block")
		smart   = fs.Bool("smart", false, "probe chunks and skip satisfied ones")
	)
	_ = fs.Parse(args)

	a, err := parsePoint(*from)
	if err != nil {
		logger.Fatalf("-from: %v", err)
	}
	b, err := parsePoint(*to)
	if err != nil {
		logger.Fatalf("-to: %v", err)
	}

	if clear {
		return e.ExecuteClear(ctx, a, b)
	}
	return e.ExecuteFill(ctx, engine.FillRequest{
		Min: a, Max: b, Block: *block, Replace: *replace, Smart: *smart,
	})
}

func runBatch(ctx context.Context, e *engine.Engine, args []string, logger *log.Logger) engine.CommandResult {
	if len(args) < 1 {
		logger.Fatalf("batch: missing manifest path")
	}
	m, err := manifest.Load(args[0])
	if err != nil {
		logger.Fatalf("load manifest: %v", err)
	}

	// Split by verification mode so each group keeps its semantics.
	var verified, unverified []string
	for _, c := range m.Commands {
		if c.Verified() {
			verified = append(verified, c.Run)
		} else {
			unverified = append(unverified, c.Run)
		}
	}

	results := make([]engine.CommandResult, 0, 2)
	if len(verified) > 0 {
		results = append(results, e.ExecuteBatch(ctx, verified, engine.BatchOptions{Parallel: m.Parallel}))
	}
	if len(unverified) > 0 {
		results = append(results, e.ExecuteBatch(ctx, unverified, engine.BatchOptions{Parallel: m.Parallel, SkipVerify: true}))
	}
	if len(results) == 1 {
		return results[0]
	}

	agg := engine.CommandResult{Success: true, Command: fmt.Sprintf("manifest %s", args[0])}
	for _, r := range results {
		agg.UnitsAffected += r.UnitsAffected
		agg.Retries = max(agg.Retries, r.Retries)
		agg.ExecutionTime += r.ExecutionTime
		if !r.Success {
			agg.Success = false
			agg.Error = r.Error
		}
	}
	return agg
}

// runStatus summarizes the command history database without touching the
// server.
func runStatus(cfg config.Config, logger *log.Logger) {
	if cfg.HistoryPath == "" {
		logger.Fatalf("status: no history_db configured")
	}
	st, err := history.Open(cfg.HistoryPath, logger)
	if err != nil {
		logger.Fatalf("open history: %v", err)
	}
	defer st.Close()

	total, failed, err := st.OpCounts()
	if err != nil {
		logger.Fatalf("counts: %v", err)
	}
	fmt.Printf("history %s\n", cfg.HistoryPath)
	fmt.Printf("  commands=%d failed=%d\n", total, failed)
}

func runGamerule(ctx context.Context, e *engine.Engine, args []string, logger *log.Logger) {
	switch len(args) {
	case 1:
		v, err := e.QueryGamerule(ctx, args[0])
		if err != nil {
			logger.Fatalf("%v", err)
		}
		fmt.Printf("%s = %s\n", args[0], v)
	case 2:
		if res := e.SetGamerule(ctx, args[0], args[1]); !res.Success {
			printResult(res)
			os.Exit(1)
		}
		ok, err := e.VerifyGamerule(ctx, args[0], args[1])
		if err != nil {
			logger.Fatalf("verify: %v", err)
		}
		if !ok {
			logger.Fatalf("gamerule %s did not take the value %s", args[0], args[1])
		}
		fmt.Printf("%s = %s (verified)\n", args[0], args[1])
	default:
		logger.Fatalf("gamerule: want <name> [value]")
	}
}

func printResult(res engine.CommandResult) {
	status := "ok"
	if !res.Success {
		status = "FAILED"
	}
	fmt.Printf("%s  %s\n", status, res.Command)
	fmt.Printf("  units=%d retries=%d elapsed=%s\n", res.UnitsAffected, res.Retries, res.ExecutionTime.Round(time.Millisecond))
	if res.Error != nil {
		fmt.Printf("  error: %s\n", res.Error.Message())
		for _, s := range res.Error.Suggestions {
			fmt.Printf("    - %s\n", s)
		}
	}
}
