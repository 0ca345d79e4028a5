package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// Run kinds.
const (
	KindBinned  = "binned"
	KindCompare = "compare"
	KindRuin    = "ruin"
)

// DB persists simulation runs and their per-bin and per-strategy results.
type DB interface {
	Close() error
	Migrate(ctx context.Context) error
	SaveRun(ctx context.Context, run *Run) error
	SaveBins(ctx context.Context, runID string, bins []RunBin) error
	SaveRuinStats(ctx context.Context, runID string, stats []RuinRow) error
	GetRun(ctx context.Context, id string) (*Run, error)
	GetBins(ctx context.Context, runID string) ([]RunBin, error)
	GetRuinStats(ctx context.Context, runID string) ([]RuinRow, error)
	ListRuns(ctx context.Context, query RunsQuery) (*RunsList, error)
}

// RunsQuery represents query parameters for listing runs
type RunsQuery struct {
	Kind    string `json:"kind,omitempty"`
	System  string `json:"system,omitempty"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

// RunsList represents a paginated runs response
type RunsList struct {
	Runs       []Run `json:"runs"`
	TotalCount int   `json:"total_count"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
}

// Run is one persisted simulation.
type Run struct {
	ID                 string    `json:"id" db:"id"`
	Kind               string    `json:"kind" db:"kind"`
	System             string    `json:"system" db:"system"`
	Signal             string    `json:"signal" db:"signal"`
	Target             string    `json:"target" db:"target"`
	Hands              int64     `json:"hands" db:"hands"`
	Played             int64     `json:"played" db:"played"`
	Recorded           int64     `json:"recorded" db:"recorded"`
	Decks              int       `json:"decks" db:"decks"`
	ReshuffleThreshold int       `json:"reshuffle_threshold" db:"reshuffle_threshold"`
	Seed               uint64    `json:"seed" db:"seed"`
	ServerSeedHash     string    `json:"server_seed_hash,omitempty" db:"server_seed_hash"` // SHA256 hash only
	ClientSeed         string    `json:"client_seed,omitempty" db:"client_seed"`
	Nonce              uint64    `json:"nonce,omitempty" db:"nonce"`
	ConfigJSON         string    `json:"config_json" db:"config_json"`
	Banker             int64     `json:"banker" db:"banker"`
	Player             int64     `json:"player" db:"player"`
	Tie                int64     `json:"tie" db:"tie"`
	TimedOut           bool      `json:"timed_out" db:"timed_out"`
	Exploitable        bool      `json:"exploitable" db:"exploitable"`
	ElapsedMs          int64     `json:"elapsed_ms" db:"elapsed_ms"`
	EngineVersion      string    `json:"engine_version" db:"engine_version"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// RunBin is one bin of a binned run.
type RunBin struct {
	RunID   string  `json:"run_id" db:"run_id"`
	Index   int     `json:"bin_index" db:"bin_index"`
	Left    float64 `json:"bin_left" db:"bin_left"`
	Right   float64 `json:"bin_right" db:"bin_right"`
	Hands   int64   `json:"hands" db:"hands"`
	Hits    int64   `json:"hits" db:"hits"`
	PHat    float64 `json:"p_hat" db:"p_hat"`
	CILower float64 `json:"ci_lower" db:"ci_lower"`
	CIUpper float64 `json:"ci_upper" db:"ci_upper"`
	EV      float64 `json:"ev" db:"ev"`
	Kelly   float64 `json:"kelly" db:"kelly"`
}

// RuinRow is one strategy's line in a ruin study.
type RuinRow struct {
	RunID       string   `json:"run_id" db:"run_id"`
	Strategy    string   `json:"strategy" db:"strategy"`
	Simulations int      `json:"simulations" db:"simulations"`
	Ruined      int      `json:"ruined" db:"ruined"`
	AvgRuinTime *float64 `json:"avg_ruin_time,omitempty" db:"avg_ruin_time"`
	MinRuinTime int      `json:"min_ruin_time" db:"min_ruin_time"`
	MaxRuinTime int      `json:"max_ruin_time" db:"max_ruin_time"`
	AvgFinal    float64  `json:"avg_final_bankroll" db:"avg_final"`
}

func normalizeQuery(q RunsQuery) RunsQuery {
	if q.PerPage <= 0 {
		q.PerPage = 50
	}
	if q.PerPage > 500 {
		q.PerPage = 500
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return q
}

func totalPages(total, perPage int) int {
	return (total + perPage - 1) / perPage
}
