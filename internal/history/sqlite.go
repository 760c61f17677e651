// Package history keeps a sqlite index of executed commands and the
// performance samples behind the adaptive controller. It is a write-only
// read model for post-hoc inspection: the engine never reads tuning back
// from it, so adaptive state still resets with the process.
package history

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"voxelops.dev/internal/engine"
)

// Store implements engine.Observer and engine.SampleObserver. Writes go
// through a single writer goroutine; bursty batches enqueue without
// stalling the dispatch pool, and overflow is dropped (the oplog remains
// the durable record).
type Store struct {
	db *sql.DB

	ch   chan row
	wg   sync.WaitGroup
	once sync.Once

	// mu guards closed against the channel close: senders hold the read
	// lock across the send, so once Close flips closed under the write
	// lock no send can race close(s.ch).
	mu     sync.RWMutex
	closed bool

	log *log.Logger
}

type rowKind int

const (
	rowResult rowKind = iota + 1
	rowSample
)

type row struct {
	kind   rowKind
	result engine.CommandResult
	sample engine.PerformanceSample
	at     time.Time
}

func Open(path string, logger *log.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{
		db:  db,
		ch:  make(chan row, 8192),
		log: logger,
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initSchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ops (
			id TEXT PRIMARY KEY,
			command TEXT NOT NULL,
			success INTEGER NOT NULL,
			units INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			retries INTEGER NOT NULL,
			error_category TEXT,
			error_detail TEXT,
			at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_ops_at ON ops(at);`,
		`CREATE TABLE IF NOT EXISTS samples (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			units INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			units_per_sec REAL NOT NULL,
			success INTEGER NOT NULL,
			at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_samples_kind_at ON samples(kind, at);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *Store) RecordResult(r engine.CommandResult) {
	if s == nil {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- row{kind: rowResult, result: r, at: time.Now().UTC()}:
	default:
		// Drop when the writer falls behind.
	}
}

func (s *Store) RecordSample(smp engine.PerformanceSample) {
	if s == nil {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- row{kind: rowSample, sample: smp, at: time.Now().UTC()}:
	default:
	}
}

func (s *Store) loop() {
	for r := range s.ch {
		var err error
		switch r.kind {
		case rowResult:
			err = s.insertResult(r.result, r.at)
		case rowSample:
			err = s.insertSample(r.sample, r.at)
		}
		if err != nil {
			s.log.Printf("[history] insert: %v", err)
		}
	}
}

func (s *Store) insertResult(r engine.CommandResult, at time.Time) error {
	var cat, detail any
	if r.Error != nil {
		cat = string(r.Error.Category)
		detail = r.Error.Detail
	}
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO ops (id, command, success, units, duration_ms, retries, error_category, error_detail, at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Command, boolInt(r.Success), r.UnitsAffected, r.ExecutionTime.Milliseconds(),
		r.Retries, cat, detail, at.Format(time.RFC3339Nano),
	)
	return err
}

func (s *Store) insertSample(smp engine.PerformanceSample, at time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO samples (kind, units, duration_ms, units_per_sec, success, at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(smp.Kind), smp.Units, smp.Duration.Milliseconds(), smp.UnitsPerSecond,
		boolInt(smp.Success), at.Format(time.RFC3339Nano),
	)
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// OpCounts returns total and failed command counts, for status output.
func (s *Store) OpCounts() (total, failed int, err error) {
	if err = s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(1 - success), 0) FROM ops`).Scan(&total, &failed); err != nil {
		return 0, 0, err
	}
	return total, failed, nil
}
