package telemetry

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Store persists runs, tick records and bookmarks to SQLite so several
// runs (for example a sweep) can be compared after the fact.
type Store struct {
	conn *sqlx.DB
}

// RunRecord describes one colony of a run. Every reset starts a new epoch.
type RunRecord struct {
	RunID     string `db:"run_id"`
	Epoch     int    `db:"epoch"`
	Seed      int64  `db:"seed"`
	Width     int    `db:"width"`
	Height    int    `db:"height"`
	Capacity  int    `db:"capacity"`
	StartedAt int64  `db:"started_at"` // unix seconds

	// Aggregated from the ticks table when listing.
	Ticks   int64 `db:"ticks"`
	PeakPop int   `db:"peak_population"`
}

type tickRow struct {
	RunID string `db:"run_id"`
	Epoch int    `db:"epoch"`
	TickRecord
}

type bookmarkRow struct {
	Epoch int `db:"epoch"`
	Bookmark
}

const tickColumns = `tick, population, births, deaths, density_factor, phase,
	state_normal_pct, state_stressed_pct, state_withdrawn_pct, state_aggressive_pct, state_beautiful_one_pct,
	role_normal_pct, role_aggressor_pct, role_withdrawn_pct, role_neglectful_parent_pct, role_beautiful_one_pct`

// OpenStore opens or creates a SQLite database at path.
// Returns nil if path is empty (storage disabled).
func OpenStore(path string) (*Store, error) {
	if path == "" {
		return nil, nil
	}

	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT NOT NULL,
		epoch INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		capacity INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		PRIMARY KEY (run_id, epoch)
	);

	CREATE TABLE IF NOT EXISTS ticks (
		run_id TEXT NOT NULL,
		epoch INTEGER NOT NULL,
		tick INTEGER NOT NULL,
		population INTEGER NOT NULL,
		births INTEGER NOT NULL,
		deaths INTEGER NOT NULL,
		density_factor REAL NOT NULL,
		phase TEXT NOT NULL,
		state_normal_pct REAL NOT NULL,
		state_stressed_pct REAL NOT NULL,
		state_withdrawn_pct REAL NOT NULL,
		state_aggressive_pct REAL NOT NULL,
		state_beautiful_one_pct REAL NOT NULL,
		role_normal_pct REAL NOT NULL,
		role_aggressor_pct REAL NOT NULL,
		role_withdrawn_pct REAL NOT NULL,
		role_neglectful_parent_pct REAL NOT NULL,
		role_beautiful_one_pct REAL NOT NULL,
		PRIMARY KEY (run_id, epoch, tick)
	);

	CREATE TABLE IF NOT EXISTS bookmarks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		epoch INTEGER NOT NULL,
		type TEXT NOT NULL,
		tick INTEGER NOT NULL,
		from_phase TEXT NOT NULL,
		to_phase TEXT NOT NULL,
		population INTEGER NOT NULL,
		density REAL NOT NULL,
		description TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bookmarks_run ON bookmarks(run_id, epoch);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.conn.Close()
}

// StartRun records the start of a colony epoch.
func (s *Store) StartRun(r RunRecord) error {
	if s == nil {
		return nil
	}
	if r.StartedAt == 0 {
		r.StartedAt = time.Now().Unix()
	}
	_, err := s.conn.NamedExec(`INSERT OR REPLACE INTO runs
		(run_id, epoch, seed, width, height, capacity, started_at)
		VALUES (:run_id, :epoch, :seed, :width, :height, :capacity, :started_at)`, r)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// SaveTicks appends tick records for one epoch in a single transaction.
func (s *Store) SaveTicks(runID string, epoch int, ticks []TickStats) error {
	if s == nil || len(ticks) == 0 {
		return nil
	}

	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamed(`INSERT OR REPLACE INTO ticks (run_id, epoch, ` + tickColumns + `)
		VALUES (:run_id, :epoch, :tick, :population, :births, :deaths, :density_factor, :phase,
		:state_normal_pct, :state_stressed_pct, :state_withdrawn_pct, :state_aggressive_pct, :state_beautiful_one_pct,
		:role_normal_pct, :role_aggressor_pct, :role_withdrawn_pct, :role_neglectful_parent_pct, :role_beautiful_one_pct)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range ticks {
		if _, err := stmt.Exec(tickRow{RunID: runID, Epoch: epoch, TickRecord: t.ToCSV()}); err != nil {
			return fmt.Errorf("insert tick %d: %w", t.Tick, err)
		}
	}
	return tx.Commit()
}

// SaveBookmark appends a bookmark for one epoch.
func (s *Store) SaveBookmark(epoch int, b Bookmark) error {
	if s == nil {
		return nil
	}
	_, err := s.conn.NamedExec(`INSERT INTO bookmarks
		(run_id, epoch, type, tick, from_phase, to_phase, population, density, description)
		VALUES (:run_id, :epoch, :type, :tick, :from_phase, :to_phase, :population, :density, :description)`,
		bookmarkRow{Epoch: epoch, Bookmark: b})
	if err != nil {
		return fmt.Errorf("insert bookmark: %w", err)
	}
	return nil
}

// Runs lists every recorded epoch with its tick count and peak population.
func (s *Store) Runs() ([]RunRecord, error) {
	var runs []RunRecord
	err := s.conn.Select(&runs, `
		SELECT r.run_id, r.epoch, r.seed, r.width, r.height, r.capacity, r.started_at,
			COALESCE(MAX(t.tick), 0) AS ticks,
			COALESCE(MAX(t.population), 0) AS peak_population
		FROM runs r
		LEFT JOIN ticks t ON t.run_id = r.run_id AND t.epoch = r.epoch
		GROUP BY r.run_id, r.epoch
		ORDER BY r.started_at, r.run_id, r.epoch`)
	return runs, err
}

// Ticks returns the last limit tick records of an epoch in tick order.
// A limit of zero or less returns them all.
func (s *Store) Ticks(runID string, epoch, limit int) ([]TickRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	var ticks []TickRecord
	err := s.conn.Select(&ticks, `
		SELECT * FROM (
			SELECT `+tickColumns+` FROM ticks
			WHERE run_id = ? AND epoch = ?
			ORDER BY tick DESC LIMIT ?
		) ORDER BY tick`, runID, epoch, limit)
	return ticks, err
}

// Bookmarks returns the bookmarks of an epoch in the order they were recorded.
func (s *Store) Bookmarks(runID string, epoch int) ([]Bookmark, error) {
	var bookmarks []Bookmark
	err := s.conn.Select(&bookmarks, `
		SELECT run_id, type, tick, from_phase, to_phase, population, density, description
		FROM bookmarks WHERE run_id = ? AND epoch = ? ORDER BY id`, runID, epoch)
	return bookmarks, err
}
