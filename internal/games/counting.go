package games

import (
	"fmt"
	"math"

	"github.com/anamarijapotokar/Baccarat/internal/engine"
)

// DefaultMinDecksFloor bounds the true-count divisor late in the shoe.
const DefaultMinDecksFloor = 0.5

// Weights assigns a count weight per rank. Ranks not present weigh 0.
type Weights map[Rank]int

// Weight returns the weight for r.
func (w Weights) Weight(r Rank) int {
	return w[r]
}

// Clone returns an independent copy.
func (w Weights) Clone() Weights {
	out := make(Weights, len(w))
	for r, v := range w {
		out[r] = v
	}
	return out
}

// Balance is the full-shoe sum of weights per deck. A balanced system sums to zero.
func (w Weights) Balance() int {
	sum := 0
	for _, r := range Ranks {
		sum += w[r] * suitsPerRank
	}
	return sum
}

// CountingConfig configures a counting shoe.
type CountingConfig struct {
	ShoeConfig
	Weights       Weights `json:"weights"`
	MinDecksFloor float64 `json:"min_decks_floor"`
}

// CountSnapshot is the count state observed before a hand is dealt.
type CountSnapshot struct {
	RunningCount int     `json:"running_count"`
	TrueCount    float64 `json:"true_count"`
	Remaining    int     `json:"remaining"`
}

// CountingShoe tracks a running count over a Shoe. The inner shoe is not
// exposed: rebuilding it and zeroing the count happen together in Checkpoint.
type CountingShoe struct {
	shoe    *Shoe
	weights Weights
	floor   float64
	count   int
}

// NewCountingShoe builds a shoe that keeps a running count under weights.
func NewCountingShoe(cfg CountingConfig, src engine.Source) (*CountingShoe, error) {
	floor := cfg.MinDecksFloor
	if floor == 0 {
		floor = DefaultMinDecksFloor
	}
	if floor < 0 || math.IsNaN(floor) || math.IsInf(floor, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFloor, cfg.MinDecksFloor)
	}
	shoe, err := NewShoe(cfg.ShoeConfig, src)
	if err != nil {
		return nil, err
	}
	weights := cfg.Weights
	if weights == nil {
		weights = Weights{}
	}
	return &CountingShoe{shoe: shoe, weights: weights.Clone(), floor: floor}, nil
}

// Draw deals one card and adds its weight to the running count.
func (c *CountingShoe) Draw() (Rank, error) {
	r, err := c.shoe.Draw()
	if err != nil {
		return 0, err
	}
	c.count += c.weights[r]
	return r, nil
}

// Checkpoint applies the reshuffle policy and resets the count when the shoe is rebuilt.
func (c *CountingShoe) Checkpoint() bool {
	if !c.shoe.Checkpoint() {
		return false
	}
	c.count = 0
	return true
}

// RunningCount is the sum of weights dealt since the last rebuild.
func (c *CountingShoe) RunningCount() int { return c.count }

// TrueCount is RunningCount / max(DecksRemaining, floor).
func (c *CountingShoe) TrueCount() float64 {
	return float64(c.count) / math.Max(c.shoe.DecksRemaining(), c.floor)
}

// Snapshot captures the current count state.
func (c *CountingShoe) Snapshot() CountSnapshot {
	return CountSnapshot{
		RunningCount: c.count,
		TrueCount:    c.TrueCount(),
		Remaining:    c.shoe.Remaining(),
	}
}

// MinDecksFloor is the effective true-count divisor floor.
func (c *CountingShoe) MinDecksFloor() float64 { return c.floor }

func (c *CountingShoe) Remaining() int { return c.shoe.Remaining() }
func (c *CountingShoe) DecksRemaining() float64 { return c.shoe.DecksRemaining() }
func (c *CountingShoe) Decks() int { return c.shoe.Decks() }
func (c *CountingShoe) Threshold() int { return c.shoe.Threshold() }
func (c *CountingShoe) Shuffles() int { return c.shoe.Shuffles() }
func (c *CountingShoe) Cards() []Rank { return c.shoe.Cards() }
