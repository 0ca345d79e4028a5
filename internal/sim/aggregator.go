package sim

import (
	"fmt"
	"math"
	"sort"

	"github.com/anamarijapotokar/Baccarat/internal/games"
)

// BinConfig is a half-open signal range [Min, Max) cut into bins of Width.
type BinConfig struct {
	Width float64 `json:"bin_width"`
	Min   float64 `json:"min_signal"`
	Max   float64 `json:"max_signal"`
}

// maxBinIndex bounds |signal/Width| so bin indices stay exact integers.
const maxBinIndex = 1 << 40

// Validate rejects non-positive widths, empty or unbounded ranges and
// widths so small that a bin index would overflow.
func (c BinConfig) Validate() error {
	if !(c.Width > 0) || math.IsInf(c.Width, 0) {
		return fmt.Errorf("%w: bin width %v", ErrDegenerateSignalRange, c.Width)
	}
	if !(c.Min < c.Max) {
		return fmt.Errorf("%w: min %v >= max %v", ErrDegenerateSignalRange, c.Min, c.Max)
	}
	if math.IsInf(c.Min, 0) || math.IsInf(c.Max, 0) {
		return fmt.Errorf("%w: range [%v, %v) is unbounded", ErrDegenerateSignalRange, c.Min, c.Max)
	}
	if math.Abs(c.Min/c.Width) > maxBinIndex || math.Abs(c.Max/c.Width) > maxBinIndex {
		return fmt.Errorf("%w: bin width %v too small for range [%v, %v)", ErrDegenerateSignalRange, c.Width, c.Min, c.Max)
	}
	return nil
}

// Index returns floor(signal/Width).
func (c BinConfig) Index(signal float64) int {
	return int(math.Floor(signal / c.Width))
}

// Contains reports whether signal lies in [Min, Max).
func (c BinConfig) Contains(signal float64) bool {
	return signal >= c.Min && signal < c.Max
}

// Bin holds raw counts for one signal bin.
type Bin struct {
	Index int   `json:"index"`
	Hands int64 `json:"hands"`
	Hits  int64 `json:"hits"`
}

type counts struct {
	hands int64
	hits  int64
}

// Aggregator accumulates (hands, hits) per bin for one target outcome.
// It is owned by a single shard; combine shards with Merge.
type Aggregator struct {
	cfg    BinConfig
	target games.Outcome
	bins   map[int]*counts
}

// NewAggregator validates cfg at setup, never during a run.
func NewAggregator(cfg BinConfig, target games.Outcome) (*Aggregator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !target.Valid() {
		return nil, fmt.Errorf("%w: target %v", games.ErrInvalidOutcome, target)
	}
	return &Aggregator{cfg: cfg, target: target, bins: make(map[int]*counts)}, nil
}

// Config returns the bin configuration.
func (a *Aggregator) Config() BinConfig { return a.cfg }

// Target returns the counted outcome.
func (a *Aggregator) Target() games.Outcome { return a.target }

// Record counts one hand. Signals outside [Min, Max) are ignored and false is returned.
func (a *Aggregator) Record(signal float64, outcome games.Outcome) bool {
	if !a.cfg.Contains(signal) {
		return false
	}
	idx := a.cfg.Index(signal)
	c, ok := a.bins[idx]
	if !ok {
		c = &counts{}
		a.bins[idx] = c
	}
	c.hands++
	if outcome == a.target {
		c.hits++
	}
	return true
}

// Merge adds other's counts into a.
func (a *Aggregator) Merge(other *Aggregator) error {
	if a.cfg != other.cfg || a.target != other.target {
		return fmt.Errorf("%w: %+v/%s vs %+v/%s", ErrIncompatibleBins, a.cfg, a.target, other.cfg, other.target)
	}
	for idx, oc := range other.bins {
		c, ok := a.bins[idx]
		if !ok {
			c = &counts{}
			a.bins[idx] = c
		}
		c.hands += oc.hands
		c.hits += oc.hits
	}
	return nil
}

// Recorded is the total number of hands inside the range.
func (a *Aggregator) Recorded() int64 {
	var n int64
	for _, c := range a.bins {
		n += c.hands
	}
	return n
}

// Bins returns the non-empty bins ordered by index.
func (a *Aggregator) Bins() []Bin {
	out := make([]Bin, 0, len(a.bins))
	for idx, c := range a.bins {
		if c.hands == 0 {
			continue
		}
		out = append(out, Bin{Index: idx, Hands: c.hands, Hits: c.hits})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// BinStats is the estimate for one non-empty bin.
type BinStats struct {
	Index   int     `json:"bin_index"`
	Left    float64 `json:"bin_left"`
	Right   float64 `json:"bin_right"`
	Hands   int64   `json:"hands"`
	Hits    int64   `json:"hits"`
	PHat    float64 `json:"p_hat"`
	CILower float64 `json:"ci_lower"`
	CIUpper float64 `json:"ci_upper"`
	EV      float64 `json:"ev"`
	Kelly   float64 `json:"kelly"`
}

// Stats computes per-bin estimates for a bet on the target paying payout:1,
// with a Wilson interval at z.
func (a *Aggregator) Stats(payout, z float64) []BinStats {
	return ComputeStats(a.cfg, a.Bins(), payout, z)
}

// ComputeStats turns raw bins into estimates. Bins with no hands are skipped.
func ComputeStats(cfg BinConfig, bins []Bin, payout, z float64) []BinStats {
	if z <= 0 {
		z = DefaultZ
	}
	out := make([]BinStats, 0, len(bins))
	for _, b := range bins {
		if b.Hands == 0 {
			continue
		}
		p := float64(b.Hits) / float64(b.Hands)
		lo, hi := Wilson(b.Hits, b.Hands, z)
		left := float64(b.Index) * cfg.Width
		out = append(out, BinStats{
			Index:   b.Index,
			Left:    left,
			Right:   left + cfg.Width,
			Hands:   b.Hands,
			Hits:    b.Hits,
			PHat:    p,
			CILower: lo,
			CIUpper: hi,
			EV:      EV(p, payout),
			Kelly:   Kelly(p, payout),
		})
	}
	return out
}
