package games

import (
	"fmt"
	"sort"
)

// Counting systems aimed at the Tie bet.
var (
	// OddGood counts odd ranks up and even/zero ranks down.
	OddGood = Weights{
		Ace: 1, Three: 1, Five: 1, Seven: 1, Nine: 1,
		Two: -1, Four: -1, Six: -1, Eight: -1,
		Ten: -1, Jack: -1, Queen: -1, King: -1,
	}

	// EvenGood is OddGood inverted.
	EvenGood = Weights{
		Ace: -1, Three: -1, Five: -1, Seven: -1, Nine: -1,
		Two: 1, Four: 1, Six: 1, Eight: 1,
		Ten: 1, Jack: 1, Queen: 1, King: 1,
	}

	// Griffin weights each rank by its estimated effect on tie frequency.
	Griffin = Weights{
		Ace: -2, Two: 1, Three: -2, Four: 2, Five: -2,
		Six: 2, Seven: -1, Eight: 2, Nine: -1,
		Ten: 1, Jack: 1, Queen: 1, King: 1,
	}

	// ZeroHeavy tracks the density of zero-valued cards.
	ZeroHeavy = Weights{
		Ace: -1, Two: -1, Three: -1, Four: -1, Five: -1,
		Six: -1, Seven: -1, Eight: -1, Nine: -1,
		Ten: 3, Jack: 3, Queen: 3, King: 3,
	}

	// Balanced mixes small positive and negative tags across every rank.
	Balanced = Weights{
		Ace: 1, Two: -1, Three: 2, Four: 0, Five: 1,
		Six: 0, Seven: 1, Eight: -1, Nine: 2,
		Ten: 1, Jack: 1, Queen: 1, King: 1,
	}
)

var systems = map[string]Weights{
	"odd-good":   OddGood,
	"even-good":  EvenGood,
	"griffin":    Griffin,
	"zero-heavy": ZeroHeavy,
	"balanced":   Balanced,
}

// Systems returns copies of the named counting systems.
func Systems() map[string]Weights {
	out := make(map[string]Weights, len(systems))
	for name, w := range systems {
		out[name] = w.Clone()
	}
	return out
}

// SystemNames lists the named systems alphabetically.
func SystemNames() []string {
	names := make([]string, 0, len(systems))
	for name := range systems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupSystem returns a copy of the named system.
func LookupSystem(name string) (Weights, bool) {
	w, ok := systems[name]
	if !ok {
		return nil, false
	}
	return w.Clone(), true
}

// ParseWeights converts symbol-keyed weights ({"A": 1, "10": -1}) into Weights.
func ParseWeights(raw map[string]int) (Weights, error) {
	out := make(Weights, len(raw))
	for sym, v := range raw {
		r, err := ParseRank(sym)
		if err != nil {
			return nil, fmt.Errorf("weights: %w", err)
		}
		out[r] = v
	}
	return out, nil
}

// Symbols converts Weights back into symbol keys.
func (w Weights) Symbols() map[string]int {
	out := make(map[string]int, len(w))
	for r, v := range w {
		out[r.String()] = v
	}
	return out
}
