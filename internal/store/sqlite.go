package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements the DB interface using SQLite
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens path (":memory:" for a throwaway database).
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer; an in-memory database also lives on a single connection.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate applies the embedded SQLite migrations.
func (s *SQLiteDB) Migrate(ctx context.Context) error {
	return migrate(ctx, s.db, goose.DialectSQLite3, "migrations/sqlite")
}

const runColumns = `id, kind, system, signal, target, hands, played, recorded, decks,
		reshuffle_threshold, seed, server_seed_hash, client_seed, nonce, config_json,
		banker, player, tie, timed_out, exploitable, elapsed_ms, engine_version, created_at`

// SaveRun inserts run, assigning an ID and creation time when empty.
func (s *SQLiteDB) SaveRun(ctx context.Context, run *Run) error {
	prepareRun(run)

	query := `INSERT INTO runs (` + runColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		run.ID, run.Kind, run.System, run.Signal, run.Target,
		run.Hands, run.Played, run.Recorded, run.Decks, run.ReshuffleThreshold,
		strconv.FormatUint(run.Seed, 10), run.ServerSeedHash, run.ClientSeed,
		strconv.FormatUint(run.Nonce, 10), run.ConfigJSON,
		run.Banker, run.Player, run.Tie, boolInt(run.TimedOut), boolInt(run.Exploitable),
		run.ElapsedMs, run.EngineVersion, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// SaveBins saves all bins of a run in one transaction.
func (s *SQLiteDB) SaveBins(ctx context.Context, runID string, bins []RunBin) error {
	if len(bins) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_bins
		(run_id, bin_index, bin_left, bin_right, hands, hits, p_hat, ci_lower, ci_upper, ev, kelly)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range bins {
		if _, err := stmt.ExecContext(ctx, runID, b.Index, b.Left, b.Right, b.Hands, b.Hits,
			b.PHat, b.CILower, b.CIUpper, b.EV, b.Kelly); err != nil {
			return fmt.Errorf("failed to save bin %d: %w", b.Index, err)
		}
	}

	return tx.Commit()
}

// SaveRuinStats saves the per-strategy rows of a ruin study.
func (s *SQLiteDB) SaveRuinStats(ctx context.Context, runID string, stats []RuinRow) error {
	if len(stats) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_ruin
		(run_id, strategy, simulations, ruined, avg_ruin_time, min_ruin_time, max_ruin_time, avg_final)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range stats {
		if _, err := stmt.ExecContext(ctx, runID, r.Strategy, r.Simulations, r.Ruined,
			r.AvgRuinTime, r.MinRuinTime, r.MaxRuinTime, r.AvgFinal); err != nil {
			return fmt.Errorf("failed to save ruin stats for %s: %w", r.Strategy, err)
		}
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRun(row rowScanner) (*Run, error) {
	var run Run
	var seed, nonce string
	var timedOut, exploitable int
	err := row.Scan(
		&run.ID, &run.Kind, &run.System, &run.Signal, &run.Target,
		&run.Hands, &run.Played, &run.Recorded, &run.Decks, &run.ReshuffleThreshold,
		&seed, &run.ServerSeedHash, &run.ClientSeed, &nonce, &run.ConfigJSON,
		&run.Banker, &run.Player, &run.Tie, &timedOut, &exploitable,
		&run.ElapsedMs, &run.EngineVersion, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if run.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
		return nil, fmt.Errorf("run %s: bad seed %q: %w", run.ID, seed, err)
	}
	if run.Nonce, err = strconv.ParseUint(nonce, 10, 64); err != nil {
		return nil, fmt.Errorf("run %s: bad nonce %q: %w", run.ID, nonce, err)
	}
	run.TimedOut = timedOut == 1
	run.Exploitable = exploitable == 1
	return &run, nil
}

// GetRun retrieves a run by ID
func (s *SQLiteDB) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanSQLiteRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

// GetBins returns a run's bins ordered by index.
func (s *SQLiteDB) GetBins(ctx context.Context, runID string) ([]RunBin, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		run_id, bin_index, bin_left, bin_right, hands, hits, p_hat, ci_lower, ci_upper, ev, kelly
		FROM run_bins WHERE run_id = ? ORDER BY bin_index`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bins []RunBin
	for rows.Next() {
		var b RunBin
		if err := rows.Scan(&b.RunID, &b.Index, &b.Left, &b.Right, &b.Hands, &b.Hits,
			&b.PHat, &b.CILower, &b.CIUpper, &b.EV, &b.Kelly); err != nil {
			return nil, err
		}
		bins = append(bins, b)
	}
	return bins, rows.Err()
}

// GetRuinStats returns a run's ruin rows ordered by strategy.
func (s *SQLiteDB) GetRuinStats(ctx context.Context, runID string) ([]RuinRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		run_id, strategy, simulations, ruined, avg_ruin_time, min_ruin_time, max_ruin_time, avg_final
		FROM run_ruin WHERE run_id = ? ORDER BY strategy`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RuinRow
	for rows.Next() {
		var r RuinRow
		var avg sql.NullFloat64
		if err := rows.Scan(&r.RunID, &r.Strategy, &r.Simulations, &r.Ruined, &avg,
			&r.MinRuinTime, &r.MaxRuinTime, &r.AvgFinal); err != nil {
			return nil, err
		}
		if avg.Valid {
			v := avg.Float64
			r.AvgRuinTime = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListRuns retrieves runs with pagination and filtering
func (s *SQLiteDB) ListRuns(ctx context.Context, query RunsQuery) (*RunsList, error) {
	query = normalizeQuery(query)

	var conds []string
	var args []any
	if query.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, query.Kind)
	}
	if query.System != "" {
		conds = append(conds, "system = ?")
		args = append(args, query.System)
	}
	whereClause := ""
	if len(conds) > 0 {
		whereClause = "WHERE " + strings.Join(conds, " AND ")
	}

	var totalCount int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs "+whereClause, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to get total count: %w", err)
	}

	offset := (query.Page - 1) * query.PerPage
	args = append(args, query.PerPage, offset)

	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs `+whereClause+`
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanSQLiteRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return &RunsList{
		Runs:       runs,
		TotalCount: totalCount,
		Page:       query.Page,
		PerPage:    query.PerPage,
		TotalPages: totalPages(totalCount, query.PerPage),
	}, nil
}

func prepareRun(run *Run) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.ConfigJSON == "" {
		run.ConfigJSON = "{}"
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
