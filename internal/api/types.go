package api

import (
	"github.com/anamarijapotokar/Baccarat/internal/games"
	"github.com/anamarijapotokar/Baccarat/internal/sim"
	"github.com/anamarijapotokar/Baccarat/internal/store"
	"github.com/anamarijapotokar/Baccarat/internal/strategy"
)

// EngineError represents a structured error response with context
type EngineError struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty"`
}

// Error implements the error interface
func (e EngineError) Error() string {
	return e.Message
}

// Error types with proper categorization
const (
	// Input validation errors
	ErrTypeValidation    = "validation_error"
	ErrTypeInvalidParams = "invalid_params"
	ErrTypeInvalidStake  = "invalid_stake"

	// Simulation errors
	ErrTypeUnknownStrategy = "unknown_strategy"
	ErrTypeScript          = "script_error"
	ErrTypeSimulation      = "simulation_error"

	// System errors
	ErrTypeNotFound           = "not_found"
	ErrTypeTimeout            = "timeout"
	ErrTypeInternal           = "internal_error"
	ErrTypeServiceUnavailable = "service_unavailable"
)

// ErrorCategory represents error categories for monitoring
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategorySimulation ErrorCategory = "simulation"
	CategorySystem     ErrorCategory = "system"
	CategoryTimeout    ErrorCategory = "timeout"
)

// GetErrorCategory returns the category for an error type
func GetErrorCategory(errType string) ErrorCategory {
	switch errType {
	case ErrTypeValidation, ErrTypeInvalidParams, ErrTypeInvalidStake, ErrTypeNotFound:
		return CategoryValidation
	case ErrTypeUnknownStrategy, ErrTypeScript, ErrTypeSimulation:
		return CategorySimulation
	case ErrTypeTimeout:
		return CategoryTimeout
	default:
		return CategorySystem
	}
}

// VersionInfo contains engine version information
type VersionInfo struct {
	EngineVersion string `json:"engine_version"`
	GitCommit     string `json:"git_commit,omitempty"`
	BuildTime     string `json:"build_time,omitempty"`
}

// SimulationRequest is a binned counting-shoe run.
type SimulationRequest struct {
	sim.Config

	// Persist defaults to true when a database is configured.
	Persist *bool `json:"persist,omitempty"`
}

// SharesPct is the outcome mix in percent.
type SharesPct struct {
	Banker float64 `json:"banker"`
	Player float64 `json:"player"`
	Tie    float64 `json:"tie"`
}

// SimulationResponse is a finished run.
type SimulationResponse struct {
	RunID string `json:"run_id,omitempty"`
	*sim.Result
	SharesPct     SharesPct `json:"shares_pct"`
	EngineVersion string    `json:"engine_version"`
}

// CompareRequest runs one base config under several counting systems.
type CompareRequest struct {
	sim.Config
	Systems        []string `json:"systems,omitempty"`
	IncludeResults bool     `json:"include_results,omitempty"`
	Persist        *bool    `json:"persist,omitempty"`
}

// CompareResponse lists one summary per system.
type CompareResponse struct {
	Systems       []sim.SystemSummary `json:"systems"`
	RunIDs        map[string]string   `json:"run_ids,omitempty"`
	EngineVersion string              `json:"engine_version"`
}

// CountingSystem describes one named weight table.
type CountingSystem struct {
	Name    string         `json:"name"`
	Weights map[string]int `json:"weights"`
	Balance int            `json:"balance"`
}

// SystemsResponse lists what a request may name.
type SystemsResponse struct {
	Systems       []CountingSystem `json:"systems"`
	Strategies    []string         `json:"strategies"`
	Signals       []sim.Signal     `json:"signals"`
	EngineVersion string           `json:"engine_version"`
}

// StrategyRequest plays one progression over a fresh outcome sequence,
// or over Outcomes when given.
type StrategyRequest struct {
	Strategy string          `json:"strategy"`
	Script   string          `json:"script,omitempty"`
	Config   strategy.Config `json:"config"`

	Hands              int             `json:"hands"`
	Decks              int             `json:"decks,omitempty"`
	ReshuffleThreshold int             `json:"reshuffle_threshold,omitempty"`
	Seed               uint64          `json:"seed"`
	Fair               *sim.FairSeeds  `json:"fair,omitempty"`
	Outcomes           []games.Outcome `json:"outcomes,omitempty"`

	IncludePath    bool `json:"include_path,omitempty"`
	TruncateAtRuin bool `json:"truncate_at_ruin,omitempty"`
}

// StrategyResponse carries the path statistics of one progression.
type StrategyResponse struct {
	Strategy      string              `json:"strategy"`
	Config        strategy.Config     `json:"config"`
	Hands         int                 `json:"hands"`
	Stats         strategy.Statistics `json:"stats"`
	ROI           float64             `json:"roi"`
	RuinTime      *int                `json:"ruin_time,omitempty"`
	Path          []float64           `json:"path,omitempty"`
	Shares        sim.Shares          `json:"shares"`
	Logs          []strategy.LogEntry `json:"logs,omitempty"`
	EngineVersion string              `json:"engine_version"`
}

// RuinRequest is a ruin study.
type RuinRequest struct {
	sim.RuinConfig
	Persist *bool `json:"persist,omitempty"`
}

// RuinResponse lists one line per strategy.
type RuinResponse struct {
	RunID         string          `json:"run_id,omitempty"`
	Stats         []sim.RuinStats `json:"stats"`
	EngineVersion string          `json:"engine_version"`
}

// SettleRequest settles one stake.
type SettleRequest struct {
	Outcome    games.Outcome `json:"outcome"`
	Bet        string        `json:"bet_type"`
	Stake      float64       `json:"stake"`
	Commission *float64      `json:"commission,omitempty"`
}

// SettleResponse is the signed profit of a settled stake.
type SettleResponse struct {
	Profit        float64       `json:"profit"`
	Payout        float64       `json:"payout"`
	Echo          SettleRequest `json:"echo"`
	EngineVersion string        `json:"engine_version"`
}

// RunDetail is a stored run with its bins or ruin lines.
type RunDetail struct {
	store.Run
	Bins []store.RunBin  `json:"bins,omitempty"`
	Ruin []store.RuinRow `json:"ruin,omitempty"`
}

// StreamFrame is one websocket message of a streamed simulation.
type StreamFrame struct {
	Type     string              `json:"type"`
	Progress *sim.Progress       `json:"progress,omitempty"`
	Result   *SimulationResponse `json:"result,omitempty"`
	Error    *EngineError        `json:"error,omitempty"`
}

// Stream frame types.
const (
	FrameProgress = "progress"
	FrameResult   = "result"
	FrameError    = "error"
)
