package strategy

import (
	"fmt"
	"math"

	"github.com/anamarijapotokar/Baccarat/internal/games"
)

// Result is a bankroll path with its statistics.
type Result struct {
	Strategy string     `json:"strategy"`
	Config   Config     `json:"config"`
	Path     []float64  `json:"path,omitempty"`
	Stats    Statistics `json:"stats"`
}

// Run plays p over outcomes. The path has one entry per outcome; once the
// bankroll reaches zero no further stakes are placed and every later entry is 0.
func Run(outcomes []games.Outcome, cfg Config, p Progression) (*Result, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bankroll := cfg.InitialBankroll
	current := cfg.BaseBet
	stats := NewStatistics(bankroll)
	path := make([]float64, len(outcomes))

	for i, outcome := range outcomes {
		// Ruin is checked before settling.
		if bankroll <= 0 {
			path[i] = 0
			stats.RecordIdle()
			continue
		}

		stake := math.Min(current, bankroll)
		profit, err := games.Settle(outcome, cfg.Bet, stake, cfg.Commission)
		if err != nil {
			return nil, fmt.Errorf("hand %d: %w", i+1, err)
		}
		bankroll += profit
		if bankroll <= 0 {
			bankroll = 0
		}
		path[i] = bankroll
		stats.RecordBet(stake, profit, bankroll)

		if bankroll == 0 {
			continue
		}
		next, err := p.Next(current, profit > 0, bankroll)
		if err != nil {
			return nil, fmt.Errorf("hand %d: %w", i+1, err)
		}
		if !(next > 0) || math.IsInf(next, 0) {
			return nil, fmt.Errorf("%w: %v after hand %d", ErrInvalidStake, next, i+1)
		}
		current = next
	}

	return &Result{
		Strategy: p.Name(),
		Config:   cfg,
		Path:     path,
		Stats:    *stats,
	}, nil
}

// Simulate returns only the bankroll path of Run.
func Simulate(outcomes []games.Outcome, cfg Config, p Progression) ([]float64, error) {
	res, err := Run(outcomes, cfg, p)
	if err != nil {
		return nil, err
	}
	return res.Path, nil
}

func simulateNamed(name string, outcomes []games.Outcome, cfg Config) ([]float64, error) {
	p, err := New(name, cfg)
	if err != nil {
		return nil, err
	}
	return Simulate(outcomes, cfg, p)
}

// SimulateFlat stakes the base bet on every hand.
func SimulateFlat(outcomes []games.Outcome, cfg Config) ([]float64, error) {
	return simulateNamed("flat", outcomes, cfg)
}

// SimulateMartingale doubles after each loss.
func SimulateMartingale(outcomes []games.Outcome, cfg Config) ([]float64, error) {
	return simulateNamed("martingale", outcomes, cfg)
}

// SimulateParoli doubles after each win up to cfg.MaxBet.
func SimulateParoli(outcomes []games.Outcome, cfg Config) ([]float64, error) {
	return simulateNamed("paroli", outcomes, cfg)
}

// SimulateDAlembert moves the stake by one unit per hand.
func SimulateDAlembert(outcomes []games.Outcome, cfg Config) ([]float64, error) {
	return simulateNamed("dalembert", outcomes, cfg)
}

// RuinTime returns the first 1-indexed position where the bankroll is at or
// below zero, and false if the path never reaches ruin.
func RuinTime(path []float64) (int, bool) {
	for i, b := range path {
		if b <= 0 {
			return i + 1, true
		}
	}
	return 0, false
}

// TruncateAtRuin drops every entry after the ruin point.
func TruncateAtRuin(path []float64) []float64 {
	if t, ok := RuinTime(path); ok {
		return path[:t]
	}
	return path
}
