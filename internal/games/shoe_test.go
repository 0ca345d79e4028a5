package games

import (
	"errors"
	"testing"

	"github.com/anamarijapotokar/Baccarat/internal/engine"
)

func TestNewShoeComposition(t *testing.T) {
	for _, decks := range []int{1, 2, 6, 8} {
		shoe, err := NewShoe(ShoeConfig{Decks: decks}, engine.NewSeededSource(uint64(decks)))
		if err != nil {
			t.Fatalf("NewShoe(%d) failed: %v", decks, err)
		}
		if shoe.Remaining() != decks*CardsPerDeck {
			t.Errorf("decks=%d: expected %d cards, got %d", decks, decks*CardsPerDeck, shoe.Remaining())
		}

		counts := map[Rank]int{}
		for _, c := range shoe.Cards() {
			counts[c]++
		}
		for _, r := range Ranks {
			if counts[r] != 4*decks {
				t.Errorf("decks=%d: expected %d of %s, got %d", decks, 4*decks, r, counts[r])
			}
		}
	}
}

func TestNewShoeDefaults(t *testing.T) {
	shoe, err := NewShoe(ShoeConfig{}, engine.NewSeededSource(1))
	if err != nil {
		t.Fatalf("NewShoe failed: %v", err)
	}
	if shoe.Decks() != DefaultDecks || shoe.Remaining() != 416 {
		t.Errorf("expected 8 decks / 416 cards, got %d / %d", shoe.Decks(), shoe.Remaining())
	}
	if shoe.Threshold() != DefaultReshuffleThreshold {
		t.Errorf("expected threshold %d, got %d", DefaultReshuffleThreshold, shoe.Threshold())
	}
	if shoe.Shuffles() != 1 {
		t.Errorf("expected 1 shuffle, got %d", shoe.Shuffles())
	}
}

func TestNewShoeValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  ShoeConfig
		want error
	}{
		{"negative decks", ShoeConfig{Decks: -1}, ErrInvalidDeckCount},
		{"threshold too low", ShoeConfig{Decks: 8, ReshuffleThreshold: 5}, ErrThresholdTooLow},
		{"threshold equals shoe", ShoeConfig{Decks: 1, ReshuffleThreshold: 52}, ErrThresholdTooHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewShoe(tt.cfg, engine.NewSeededSource(1))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestShoeDeterministic(t *testing.T) {
	a, _ := NewShoe(ShoeConfig{}, engine.NewSeededSource(77))
	b, _ := NewShoe(ShoeConfig{}, engine.NewSeededSource(77))
	ca, cb := a.Cards(), b.Cards()
	for i := range ca {
		if ca[i] != cb[i] {
			t.Fatalf("card %d differs: %s != %s", i, ca[i], cb[i])
		}
	}
}

func TestShoeDraw(t *testing.T) {
	shoe, _ := NewShoe(ShoeConfig{Decks: 1}, engine.NewSeededSource(3))
	for shoe.Remaining() > 0 {
		before := shoe.Cards()
		card, err := shoe.Draw()
		if err != nil {
			t.Fatalf("Draw failed: %v", err)
		}
		if shoe.Remaining() != len(before)-1 {
			t.Fatalf("expected %d remaining, got %d", len(before)-1, shoe.Remaining())
		}
		if before[len(before)-1] != card {
			t.Fatalf("expected top card %s, got %s", before[len(before)-1], card)
		}
	}

	if _, err := shoe.Draw(); !errors.Is(err, ErrEmptyShoe) {
		t.Errorf("expected ErrEmptyShoe, got %v", err)
	}
}

func TestShoeCheckpoint(t *testing.T) {
	shoe, _ := NewShoe(ShoeConfig{Decks: 1, ReshuffleThreshold: 10}, engine.NewSeededSource(5))

	for shoe.Remaining() > 10 {
		if _, err := shoe.Draw(); err != nil {
			t.Fatal(err)
		}
	}
	if shoe.Checkpoint() {
		t.Fatal("checkpoint rebuilt with exactly threshold cards left")
	}

	if _, err := shoe.Draw(); err != nil {
		t.Fatal(err)
	}
	if !shoe.Checkpoint() {
		t.Fatal("checkpoint did not rebuild below threshold")
	}
	if shoe.Remaining() != CardsPerDeck {
		t.Errorf("expected full shoe after rebuild, got %d", shoe.Remaining())
	}
	if shoe.Shuffles() != 2 {
		t.Errorf("expected 2 shuffles, got %d", shoe.Shuffles())
	}
}

func TestBuildCardsFairSource(t *testing.T) {
	seeds := engine.Seeds{Server: "server", Client: "client"}
	a := BuildCards(8, engine.NewFairSource(seeds, 1))
	b := BuildCards(8, engine.NewFairSource(seeds, 1))
	if len(a) != 416 {
		t.Fatalf("expected 416 cards, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("fair shoes differ at %d", i)
		}
	}
}
