// Package recorder stores run summaries in a SQLite database.
package recorder

import (
	"database/sql"
	"fmt"
	"time"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/pipesim/timing/cache"
	"github.com/sarchlab/pipesim/timing/core"
	"github.com/sarchlab/pipesim/timing/pipeline"
)

// Entry is one recorded run.
type Entry struct {
	ID    string
	Time  time.Time
	Trace string

	Cache   cache.Config
	Predict pipeline.PredictMode
	Stats   core.Stats
}

// Recorder buffers run summaries and writes them in batches.
type Recorder struct {
	db        *sql.DB
	statement *sql.Stmt

	pending   []Entry
	batchSize int
	closed    bool
}

// New opens (or creates) the database at path. Pending entries are flushed
// on Close and when the process exits through atexit.
func New(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open run database %s: %w", path, err)
	}

	r := &Recorder{db: db, batchSize: 64}

	if err := r.createTable(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := r.prepareStatement(); err != nil {
		_ = db.Close()
		return nil, err
	}

	atexit.Register(func() { _ = r.Close() })

	return r, nil
}

func (r *Recorder) createTable() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id             TEXT PRIMARY KEY,
			trace          TEXT NOT NULL,
			index_bits     INTEGER NOT NULL,
			block_words    INTEGER NOT NULL,
			associativity  INTEGER NOT NULL,
			policy         INTEGER NOT NULL,
			predict        INTEGER NOT NULL,
			accesses       INTEGER NOT NULL,
			hits           INTEGER NOT NULL,
			misses         INTEGER NOT NULL,
			evictions      INTEGER NOT NULL,
			cycles         INTEGER NOT NULL,
			instructions   INTEGER NOT NULL,
			branches       INTEGER NOT NULL,
			correct        INTEGER NOT NULL,
			mispredictions INTEGER NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	return nil
}

func (r *Recorder) prepareStatement() error {
	stmt, err := r.db.Prepare(`
		INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	r.statement = stmt
	return nil
}

// Record buffers the report of a run over trace and returns the run ID.
func (r *Recorder) Record(trace string, report core.Report) (string, error) {
	id := xid.New()

	r.pending = append(r.pending, Entry{
		ID:      id.String(),
		Time:    id.Time(),
		Trace:   trace,
		Cache:   report.Config.Cache,
		Predict: report.Config.Predict,
		Stats:   report.Stats,
	})

	if len(r.pending) >= r.batchSize {
		if err := r.Flush(); err != nil {
			return "", err
		}
	}

	return id.String(), nil
}

// Flush writes all buffered entries in one transaction.
func (r *Recorder) Flush() error {
	if len(r.pending) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	stmt := tx.Stmt(r.statement)
	for _, e := range r.pending {
		_, err := stmt.Exec(
			e.ID,
			e.Trace,
			e.Cache.IndexBits,
			e.Cache.BlockWords,
			e.Cache.Associativity,
			int(e.Cache.Policy),
			int(e.Predict),
			e.Stats.CacheAccesses,
			e.Stats.CacheHits,
			e.Stats.CacheMisses,
			e.Stats.Evictions,
			e.Stats.Cycles,
			e.Stats.Instructions,
			e.Stats.Branches,
			e.Stats.CorrectPredictions,
			e.Stats.Mispredictions,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert run %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit runs: %w", err)
	}

	r.pending = nil

	return nil
}

// Runs returns every flushed entry, oldest first.
func (r *Recorder) Runs() ([]Entry, error) {
	rows, err := r.db.Query(`
		SELECT id, trace, index_bits, block_words, associativity, policy,
			predict, accesses, hits, misses, evictions, cycles, instructions,
			branches, correct, mispredictions
		FROM runs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			policy  int
			predict int
		)

		err := rows.Scan(
			&e.ID,
			&e.Trace,
			&e.Cache.IndexBits,
			&e.Cache.BlockWords,
			&e.Cache.Associativity,
			&policy,
			&predict,
			&e.Stats.CacheAccesses,
			&e.Stats.CacheHits,
			&e.Stats.CacheMisses,
			&e.Stats.Evictions,
			&e.Stats.Cycles,
			&e.Stats.Instructions,
			&e.Stats.Branches,
			&e.Stats.CorrectPredictions,
			&e.Stats.Mispredictions,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		e.Cache.Policy = cache.Policy(policy)
		e.Predict = pipeline.PredictMode(predict)

		if id, err := xid.FromString(e.ID); err == nil {
			e.Time = id.Time()
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Close flushes pending entries and closes the database. It is safe to call
// more than once.
func (r *Recorder) Close() error {
	if r.closed {
		return nil
	}

	err := r.Flush()

	r.closed = true
	_ = r.statement.Close()
	if cerr := r.db.Close(); err == nil {
		err = cerr
	}

	return err
}
