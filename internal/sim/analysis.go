package sim

import (
	"context"
	"math"
	"sort"

	"github.com/anamarijapotokar/Baccarat/internal/games"
)

// ExploitableFrequency is the share of hands (in percent) that must fall in
// +EV bins before a system is called exploitable.
const ExploitableFrequency = 0.5

// Analysis summarises how practical the +EV bins of a run are.
type Analysis struct {
	TotalHands    int64     `json:"total_hands"`
	PositiveHands int64     `json:"positive_hands"`
	FrequencyPct  float64   `json:"frequency_pct"`
	Best          *BinStats `json:"best,omitempty"`
	AvgEV         float64   `json:"avg_ev"`
	AvgKelly      float64   `json:"avg_kelly"`
	HandsBetween  float64   `json:"hands_between,omitempty"`
	HoursBetween  float64   `json:"hours_between,omitempty"`
	HandsPerHour  int       `json:"hands_per_hour"`
	Exploitable   bool      `json:"exploitable"`
}

// Analyze computes the +EV frequency, the best bin and hand-weighted averages
// over +EV bins. handsPerHour <= 0 uses DefaultHandsPerHour.
func Analyze(bins []BinStats, handsPerHour int) Analysis {
	if handsPerHour <= 0 {
		handsPerHour = DefaultHandsPerHour
	}
	a := Analysis{HandsPerHour: handsPerHour}

	var evSum, kellySum float64
	for i := range bins {
		b := bins[i]
		a.TotalHands += b.Hands
		if b.EV <= 0 {
			continue
		}
		a.PositiveHands += b.Hands
		evSum += b.EV * float64(b.Hands)
		kellySum += b.Kelly * float64(b.Hands)
		if a.Best == nil || b.EV > a.Best.EV {
			best := b
			a.Best = &best
		}
	}
	if a.TotalHands == 0 || a.PositiveHands == 0 {
		return a
	}

	a.FrequencyPct = float64(a.PositiveHands) / float64(a.TotalHands) * 100
	a.AvgEV = evSum / float64(a.PositiveHands)
	a.AvgKelly = kellySum / float64(a.PositiveHands)
	a.HandsBetween = float64(a.TotalHands) / float64(a.PositiveHands)
	a.HoursBetween = a.HandsBetween / float64(handsPerHour)
	a.Exploitable = a.FrequencyPct >= ExploitableFrequency
	return a
}

// SystemSummary is one row of a system comparison.
type SystemSummary struct {
	System       string  `json:"system"`
	MaxEV        float64 `json:"max_ev"`
	FrequencyPct float64 `json:"frequency_pct"`
	BestPHat     float64 `json:"best_p_hat"`
	Exploitable  bool    `json:"exploitable"`
	Result       *Result `json:"result,omitempty"`
}

// CompareSystems runs base once per named system (all when systems is empty)
// and summarises each. Runs are sequential; each uses base's workers.
func (s *Simulator) CompareSystems(ctx context.Context, base Config, systems []string) ([]SystemSummary, error) {
	if len(systems) == 0 {
		systems = games.SystemNames()
	} else {
		systems = append([]string(nil), systems...)
		sort.Strings(systems)
	}

	out := make([]SystemSummary, 0, len(systems))
	for _, name := range systems {
		cfg := base
		cfg.System = name
		cfg.Weights = nil
		res, err := s.Run(ctx, cfg)
		if err != nil {
			return nil, err
		}

		row := SystemSummary{
			System:       name,
			MaxEV:        math.Inf(-1),
			FrequencyPct: res.Analysis.FrequencyPct,
			Exploitable:  res.Analysis.Exploitable,
			Result:       res,
		}
		for _, b := range res.Bins {
			row.MaxEV = math.Max(row.MaxEV, b.EV)
			row.BestPHat = math.Max(row.BestPHat, b.PHat)
		}
		if len(res.Bins) == 0 {
			row.MaxEV = 0
		}
		out = append(out, row)
	}
	return out, nil
}
