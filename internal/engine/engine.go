package engine

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"voxelops.dev/internal/transport"
)

// Defaults for Options zero values.
const (
	DefaultTimeout      = 10 * time.Second
	DefaultMaxRetries   = 3
	DefaultBackoffBase  = time.Second
	DefaultChunkSize    = 32
	DefaultMinChunkSize = 16
	DefaultMaxChunkSize = 48
	DefaultWindowSize   = 20
	DefaultCacheTTL     = 60 * time.Second
	DefaultWorkers      = 4
)

// Observer receives every finished CommandResult. Implementations must be
// safe for concurrent use; recording is best-effort and never fails a
// command.
type Observer interface {
	RecordResult(r CommandResult)
}

// SampleObserver is optionally implemented by an Observer that also wants
// the performance samples feeding the adaptive controller.
type SampleObserver interface {
	RecordSample(s PerformanceSample)
}

// Options configures one Engine instance. Zero values take the defaults
// above. Every independent client instance owns its own adaptive state and
// caches; nothing here is process-global.
type Options struct {
	Timeout      time.Duration // per-attempt hard timeout
	MaxRetries   int           // attempts per command
	BackoffBase  time.Duration // first backoff step; doubles per retry
	ChunkSize    int           // initial fill chunk edge
	MinChunkSize int
	MaxChunkSize int
	WindowSize   int           // performance sample window capacity
	CacheTTL     time.Duration // gamerule cache freshness
	Workers      int           // parallel dispatch pool bound

	Logger   *log.Logger
	Observer Observer
}

// Engine executes admin commands reliably over a Transport.
type Engine struct {
	tr  transport.Transport
	log *log.Logger
	obs Observer

	timeout     time.Duration
	maxRetries  int
	backoffBase time.Duration
	workers     int

	adaptive *AdaptiveSizer
	rules    *flagCache

	// Injection points for tests.
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
	newID func() string
}

func New(tr transport.Transport, opts Options) *Engine {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = DefaultBackoffBase
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.MinChunkSize <= 0 {
		opts.MinChunkSize = DefaultMinChunkSize
	}
	if opts.MaxChunkSize <= 0 {
		opts.MaxChunkSize = DefaultMaxChunkSize
	}
	if opts.WindowSize <= 0 {
		opts.WindowSize = DefaultWindowSize
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}

	return &Engine{
		tr:          tr,
		log:         opts.Logger,
		obs:         opts.Observer,
		timeout:     opts.Timeout,
		maxRetries:  opts.MaxRetries,
		backoffBase: opts.BackoffBase,
		workers:     opts.Workers,
		adaptive:    NewAdaptiveSizer(opts.ChunkSize, opts.MinChunkSize, opts.MaxChunkSize, opts.WindowSize),
		rules:       newFlagCache(opts.CacheTTL),
		sleep:       sleepCtx,
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
	}
}

// ChunkSize exposes the current adaptive chunk edge, mainly for status
// reporting.
func (e *Engine) ChunkSize() int { return e.adaptive.ChunkSize() }

// PerformanceWindow returns a copy of the retained throughput samples.
func (e *Engine) PerformanceWindow() []PerformanceSample { return e.adaptive.Window() }

func (e *Engine) observe(r CommandResult) {
	if e.obs != nil {
		e.obs.RecordResult(r)
	}
}

func (e *Engine) observeSample(s PerformanceSample) {
	e.adaptive.Record(s)
	if so, ok := e.obs.(SampleObserver); ok {
		so.RecordSample(s)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
