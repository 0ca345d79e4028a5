package sim

import (
	"context"
	"fmt"
	"strings"

	"github.com/anamarijapotokar/Baccarat/internal/games"
)

// Signal selects the pre-hand count that keys the bins.
type Signal string

const (
	SignalTrueCount    Signal = "true_count"
	SignalRunningCount Signal = "running_count"
)

// ParseSignal accepts "true_count"/"true" and "running_count"/"running".
func ParseSignal(s string) (Signal, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "true", "true_count", "truecount":
		return SignalTrueCount, nil
	case "running", "running_count", "runningcount":
		return SignalRunningCount, nil
	default:
		return "", fmt.Errorf("%w: unknown signal %q", ErrInvalidConfig, s)
	}
}

// Value extracts the signal from a snapshot.
func (s Signal) Value(snap games.CountSnapshot) float64 {
	if s == SignalRunningCount {
		return float64(snap.RunningCount)
	}
	return snap.TrueCount
}

// DefaultBins returns the bin layout usually used with the signal.
func (s Signal) DefaultBins() BinConfig {
	if s == SignalRunningCount {
		return BinConfig{Width: 5, Min: -60, Max: 60}
	}
	return BinConfig{Width: 1, Min: -10, Max: 10}
}

// Shares tallies outcomes over every hand played, recorded or not.
type Shares struct {
	Banker int64 `json:"banker"`
	Player int64 `json:"player"`
	Tie    int64 `json:"tie"`
}

// Add counts one outcome.
func (s *Shares) Add(o games.Outcome) {
	switch o {
	case games.Banker:
		s.Banker++
	case games.Player:
		s.Player++
	case games.Tie:
		s.Tie++
	}
}

// Merge adds other into s.
func (s *Shares) Merge(other Shares) {
	s.Banker += other.Banker
	s.Player += other.Player
	s.Tie += other.Tie
}

// Total is the number of hands tallied.
func (s Shares) Total() int64 {
	return s.Banker + s.Player + s.Tie
}

// Percent returns the share of o in percent.
func (s Shares) Percent(o games.Outcome) float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	var n int64
	switch o {
	case games.Banker:
		n = s.Banker
	case games.Player:
		n = s.Player
	case games.Tie:
		n = s.Tie
	}
	return float64(n) / float64(total) * 100
}

// Drive plays hands on cs. Before each hand it runs the reshuffle checkpoint
// and captures the signal, then resolves the hand and records it in agg.
// Hands outside the bin range are still played. ctx is only checked between
// hands; on cancellation the shares so far are returned with ctx.Err().
func Drive(ctx context.Context, cs *games.CountingShoe, agg *Aggregator, hands int64, signal Signal) (Shares, error) {
	var shares Shares
	for i := int64(0); i < hands; i++ {
		select {
		case <-ctx.Done():
			return shares, ctx.Err()
		default:
		}

		round, snap, err := games.ResolveCounted(cs)
		if err != nil {
			return shares, fmt.Errorf("hand %d: %w", i+1, err)
		}
		shares.Add(round.Outcome)
		agg.Record(signal.Value(snap), round.Outcome)
	}
	return shares, nil
}
