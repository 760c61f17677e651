// Package oplog appends every command outcome and performance sample to
// hour-rotated, zstd-compressed JSONL files. Recording is best-effort: a
// sink failure is logged and never fails the command that produced it.
package oplog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"voxelops.dev/internal/engine"
)

// record is one oplog line.
type record struct {
	Kind   string                    `json:"kind"` // "result" or "sample"
	At     time.Time                 `json:"at"`
	Result *engine.CommandResult     `json:"result,omitempty"`
	Sample *engine.PerformanceSample `json:"sample,omitempty"`
}

// Writer implements engine.Observer and engine.SampleObserver.
type Writer struct {
	baseDir string
	prefix  string
	log     *log.Logger

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func New(baseDir string, logger *log.Logger) *Writer {
	return &Writer{baseDir: baseDir, prefix: "ops", log: logger}
}

func (w *Writer) RecordResult(r engine.CommandResult) {
	w.write(record{Kind: "result", At: time.Now().UTC(), Result: &r})
}

func (w *Writer) RecordSample(s engine.PerformanceSample) {
	w.write(record{Kind: "sample", At: time.Now().UTC(), Sample: &s})
}

func (w *Writer) write(rec record) {
	if err := w.append(rec); err != nil {
		w.log.Printf("[oplog] append: %v", err)
	}
}

func (w *Writer) append(rec record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := rec.At.Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *Writer) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.baseDir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.pathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	w.curHour = hour
	return nil
}

func (w *Writer) closeLocked() error {
	var err error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err
}

func (w *Writer) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}
