package games

import (
	"errors"
	"math"
	"testing"

	"github.com/anamarijapotokar/Baccarat/internal/engine"
)

func TestCountingShoeTracksWeights(t *testing.T) {
	cs, err := NewCountingShoe(CountingConfig{Weights: OddGood}, engine.NewSeededSource(11))
	if err != nil {
		t.Fatalf("NewCountingShoe failed: %v", err)
	}

	expected := 0
	for i := 0; i < 200; i++ {
		r, err := cs.Draw()
		if err != nil {
			t.Fatal(err)
		}
		expected += OddGood[r]
		if cs.RunningCount() != expected {
			t.Fatalf("after %d draws expected count %d, got %d", i+1, expected, cs.RunningCount())
		}
	}
}

func TestCountingShoePartialWeights(t *testing.T) {
	cs, _ := NewCountingShoe(CountingConfig{
		ShoeConfig: ShoeConfig{Decks: 1},
		Weights:    Weights{Ten: 1},
	}, engine.NewSeededSource(2))

	for cs.Remaining() > 0 {
		if _, err := cs.Draw(); err != nil {
			t.Fatal(err)
		}
	}
	if cs.RunningCount() != 4 {
		t.Errorf("expected count 4 after a full deck, got %d", cs.RunningCount())
	}
}

func TestCountingShoeFullShoeBalance(t *testing.T) {
	cs, _ := NewCountingShoe(CountingConfig{
		ShoeConfig: ShoeConfig{Decks: 2},
		Weights:    Griffin,
	}, engine.NewSeededSource(8))

	for cs.Remaining() > 0 {
		if _, err := cs.Draw(); err != nil {
			t.Fatal(err)
		}
	}
	if want := Griffin.Balance() * 2; cs.RunningCount() != want {
		t.Errorf("expected %d, got %d", want, cs.RunningCount())
	}
}

func TestCountingShoeResetOnCheckpoint(t *testing.T) {
	cs, _ := NewCountingShoe(CountingConfig{
		ShoeConfig: ShoeConfig{Decks: 1, ReshuffleThreshold: 20},
		Weights:    ZeroHeavy,
	}, engine.NewSeededSource(4))

	for cs.Remaining() >= 20 {
		if _, err := cs.Draw(); err != nil {
			t.Fatal(err)
		}
	}
	if !cs.Checkpoint() {
		t.Fatal("expected a rebuild")
	}
	if cs.RunningCount() != 0 {
		t.Errorf("count not reset: %d", cs.RunningCount())
	}
	if cs.Remaining() != CardsPerDeck {
		t.Errorf("expected %d cards, got %d", CardsPerDeck, cs.Remaining())
	}
	if cs.Checkpoint() {
		t.Error("second checkpoint should not rebuild a full shoe")
	}
}

func TestTrueCountFloor(t *testing.T) {
	cs, _ := NewCountingShoe(CountingConfig{
		ShoeConfig:    ShoeConfig{Decks: 1},
		Weights:       Weights{Ace: 1, Two: 1, Three: 1, Four: 1, Five: 1, Six: 1, Seven: 1, Eight: 1, Nine: 1, Ten: 1, Jack: 1, Queen: 1, King: 1},
		MinDecksFloor: 0.5,
	}, engine.NewSeededSource(6))

	// 26 cards dealt: 0.5 decks remain, count 26
	for i := 0; i < 26; i++ {
		cs.Draw()
	}
	if tc := cs.TrueCount(); math.Abs(tc-52) > 1e-9 {
		t.Errorf("expected true count 52, got %f", tc)
	}

	// 50 cards dealt: floor kicks in
	for i := 0; i < 24; i++ {
		cs.Draw()
	}
	if tc := cs.TrueCount(); math.Abs(tc-100) > 1e-9 {
		t.Errorf("expected floored true count 100, got %f", tc)
	}

	for cs.Remaining() > 0 {
		cs.Draw()
	}
	if tc := cs.TrueCount(); math.IsInf(tc, 0) || math.IsNaN(tc) {
		t.Errorf("true count not finite on empty shoe: %f", tc)
	}
}

func TestCountingShoeValidation(t *testing.T) {
	if _, err := NewCountingShoe(CountingConfig{MinDecksFloor: -1}, engine.NewSeededSource(1)); !errors.Is(err, ErrInvalidFloor) {
		t.Errorf("expected ErrInvalidFloor, got %v", err)
	}
	cs, err := NewCountingShoe(CountingConfig{}, engine.NewSeededSource(1))
	if err != nil {
		t.Fatal(err)
	}
	if cs.MinDecksFloor() != DefaultMinDecksFloor {
		t.Errorf("expected default floor, got %f", cs.MinDecksFloor())
	}
}

func TestCountingShoeWeightsCopied(t *testing.T) {
	w := Weights{Ace: 1}
	cs, _ := NewCountingShoe(CountingConfig{ShoeConfig: ShoeConfig{Decks: 1}, Weights: w}, engine.NewSeededSource(1))
	w[Ace] = 100
	for cs.Remaining() > 0 {
		cs.Draw()
	}
	if cs.RunningCount() != 4 {
		t.Errorf("caller mutation leaked into the shoe: count %d", cs.RunningCount())
	}
}

func TestSystems(t *testing.T) {
	names := SystemNames()
	if len(names) != 5 {
		t.Fatalf("expected 5 systems, got %d", len(names))
	}
	for _, name := range names {
		w, ok := LookupSystem(name)
		if !ok {
			t.Fatalf("system %s not found", name)
		}
		if len(w) != 13 {
			t.Errorf("system %s weights %d ranks, expected 13", name, len(w))
		}
	}
	if _, ok := LookupSystem("hi-lo"); ok {
		t.Error("unexpected system hi-lo")
	}

	w, _ := LookupSystem("odd-good")
	w[Ace] = 42
	if OddGood[Ace] != 1 {
		t.Error("LookupSystem returned shared weights")
	}
}

func TestParseWeights(t *testing.T) {
	w, err := ParseWeights(map[string]int{"A": 1, "10": -2, "k": 3})
	if err != nil {
		t.Fatalf("ParseWeights failed: %v", err)
	}
	if w[Ace] != 1 || w[Ten] != -2 || w[King] != 3 || w[Two] != 0 {
		t.Errorf("unexpected weights %v", w)
	}
	if _, err := ParseWeights(map[string]int{"X": 1}); !errors.Is(err, ErrInvalidRank) {
		t.Errorf("expected ErrInvalidRank, got %v", err)
	}

	sym := OddGood.Symbols()
	if sym["A"] != 1 || sym["K"] != -1 {
		t.Errorf("unexpected symbols %v", sym)
	}
}
