// Package sqlite persists processed visibility blocks to a SQLite
// database. Each process run gets its own run row, and block rows are
// batched in memory and flushed either when the batch fills or on a
// periodic ticker, so slow disks never stall the pipeline per block.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/arraydata/visibility.report/internal/monitoring"
	"github.com/arraydata/visibility.report/internal/timeutil"
	"github.com/arraydata/visibility.report/internal/vis"
	"github.com/arraydata/visibility.report/internal/vis/adapters"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Options configures a Store. Zero values select sensible defaults.
type Options struct {
	// ObsID labels the run row, typically the observation identifier.
	ObsID string

	// Clock drives the periodic flush. Defaults to the real clock.
	Clock timeutil.Clock

	// FlushInterval is the period of the background flush. Defaults to
	// 5 seconds.
	FlushInterval time.Duration

	// BatchRows flushes synchronously once this many visibility rows
	// are pending. Defaults to 4096.
	BatchRows int
}

// Store writes visibility blocks to SQLite. It implements
// adapters.Writer.
type Store struct {
	db    *sql.DB
	runID string

	clock     timeutil.Clock
	interval  time.Duration
	batchRows int

	mu         sync.Mutex
	pendingVis []visRow
	pendingUVW []uvwRow
	blockIndex int64
	closed     bool

	ticker timeutil.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
}

var _ adapters.Writer = (*Store)(nil)

type visRow struct {
	timeGPS    float64
	antA, antB int
	channel    int
	freqHz     float64
	pol        int
	re, im     float64
	weight     float64
	flagged    bool
}

type uvwRow struct {
	timeGPS    float64
	antA, antB int
	u, v, w    float64
}

// Open opens or creates the database at path, applies any pending
// migrations and registers a new run.
func Open(path string, opts Options) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{
		db:        db,
		runID:     uuid.NewString(),
		clock:     opts.Clock,
		interval:  opts.FlushInterval,
		batchRows: opts.BatchRows,
		stop:      make(chan struct{}),
	}
	if s.clock == nil {
		s.clock = timeutil.RealClock{}
	}
	if s.interval <= 0 {
		s.interval = 5 * time.Second
	}
	if s.batchRows <= 0 {
		s.batchRows = 4096
	}

	if _, err := db.Exec(`INSERT INTO runs (run_id, obs_id) VALUES (?, ?)`, s.runID, opts.ObsID); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to register run: %w", err)
	}

	s.ticker = s.clock.NewTicker(s.interval)
	s.wg.Add(1)
	go s.flushLoop()
	return s, nil
}

// migrateUp applies the embedded migrations, in the same way the
// migrate CLI would against a migrations directory.
func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	// Note: we don't close m because it would close the underlying DB
	// connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// RunID returns this store's run identifier.
func (s *Store) RunID() string { return s.runID }

// WriteBlock queues the block's rows for insertion and records its
// stats row immediately. The visibility rows flush on the background
// ticker, or synchronously when the pending batch reaches BatchRows.
func (s *Store) WriteBlock(ctx context.Context, blk *vis.Block, stats *vis.Stats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &adapters.WriterClosedError{}
	}

	if _, err := s.db.Exec(`
		INSERT INTO block_stats (
			run_id, block_index, time_steps, baselines, channels,
			out_time_steps, out_channels, cells_missing_solution,
			cells_invalid_solution, solutions_singular, output_flagged
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.runID, s.blockIndex, stats.TimeSteps, stats.Baselines, stats.Channels,
		stats.OutTimeSteps, stats.OutChannels, stats.CellsMissingSolution,
		stats.CellsInvalidSolution, stats.SolutionsSingular, stats.OutputFlaggedElements,
	); err != nil {
		return fmt.Errorf("failed to record block stats: %w", err)
	}
	s.blockIndex++

	for t, epoch := range blk.Epochs {
		gps := epoch.GPSSeconds()
		for bl, baseline := range blk.Baselines {
			uvw := blk.UVWs[blk.UVWIdx(t, bl)]
			s.pendingUVW = append(s.pendingUVW, uvwRow{
				timeGPS: gps,
				antA:    baseline.A,
				antB:    baseline.B,
				u:       uvw.U,
				v:       uvw.V,
				w:       uvw.W,
			})
			for c, freq := range blk.ChannelFreqsHz {
				for p := 0; p < vis.NumPols; p++ {
					i := blk.Idx(t, bl, c, p)
					v := blk.Data[i]
					s.pendingVis = append(s.pendingVis, visRow{
						timeGPS: gps,
						antA:    baseline.A,
						antB:    baseline.B,
						channel: c,
						freqHz:  freq,
						pol:     p,
						re:      real(v),
						im:      imag(v),
						weight:  float64(blk.Weights[i]),
						flagged: blk.Flags[i],
					})
				}
			}
		}
	}

	if len(s.pendingVis) >= s.batchRows {
		return s.flushLocked()
	}
	return nil
}

// Flush writes all pending rows to the database.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	if len(s.pendingVis) == 0 && len(s.pendingUVW) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin flush transaction: %w", err)
	}
	defer tx.Rollback()

	uvwStmt, err := tx.Prepare(`
		INSERT INTO uvws (run_id, time_gps, ant_a, ant_b, u, v, w)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare uvw insert: %w", err)
	}
	defer uvwStmt.Close()
	for _, r := range s.pendingUVW {
		if _, err := uvwStmt.Exec(s.runID, r.timeGPS, r.antA, r.antB, r.u, r.v, r.w); err != nil {
			return fmt.Errorf("failed to insert uvw row: %w", err)
		}
	}

	visStmt, err := tx.Prepare(`
		INSERT INTO visibilities (
			run_id, time_gps, ant_a, ant_b, channel, freq_hz, pol,
			re, im, weight, flagged
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare visibility insert: %w", err)
	}
	defer visStmt.Close()
	for _, r := range s.pendingVis {
		if _, err := visStmt.Exec(
			s.runID, r.timeGPS, r.antA, r.antB, r.channel, r.freqHz, r.pol,
			r.re, r.im, r.weight, r.flagged,
		); err != nil {
			return fmt.Errorf("failed to insert visibility row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit flush: %w", err)
	}
	monitoring.Logf("sqlite: flushed %d visibility rows, %d uvw rows (run %s)",
		len(s.pendingVis), len(s.pendingUVW), s.runID)
	s.pendingVis = s.pendingVis[:0]
	s.pendingUVW = s.pendingUVW[:0]
	return nil
}

func (s *Store) flushLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stop:
			return
		case <-s.ticker.C():
			if err := s.Flush(); err != nil {
				monitoring.Logf("sqlite: periodic flush failed: %v", err)
			}
		}
	}
}

// Close stops the background flusher, flushes anything pending and
// closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.ticker.Stop()
	close(s.stop)
	s.wg.Wait()

	flushErr := s.Flush()
	closeErr := s.db.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
