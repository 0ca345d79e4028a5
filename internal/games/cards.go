package games

import (
	"fmt"
	"strings"
)

// Rank is one of the 13 card ranks. Suits never matter in baccarat, so a deck
// is four copies of each rank.
type Rank uint8

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

// Ranks lists every rank in order Ace..King.
var Ranks = [13]Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

const (
	// CardsPerDeck is the size of one standard deck.
	CardsPerDeck = 52
	suitsPerRank = 4
)

var rankNames = [...]string{"?", "A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// Value returns the baccarat point value: A=1, 2-9 face value, 10/J/Q/K=0.
func (r Rank) Value() int {
	if r >= Ace && r <= Nine {
		return int(r)
	}
	return 0
}

// Valid reports whether r is one of the 13 ranks.
func (r Rank) Valid() bool {
	return r >= Ace && r <= King
}

func (r Rank) String() string {
	if !r.Valid() {
		return rankNames[0]
	}
	return rankNames[r]
}

// MarshalText encodes the rank as its symbol ("A", "10", "K").
func (r Rank) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRank, r)
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a rank symbol.
func (r *Rank) UnmarshalText(text []byte) error {
	parsed, err := ParseRank(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRank parses "A", "2".."10", "J", "Q", "K" (case-insensitive, "T" for ten).
func ParseRank(s string) (Rank, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A", "1":
		return Ace, nil
	case "2":
		return Two, nil
	case "3":
		return Three, nil
	case "4":
		return Four, nil
	case "5":
		return Five, nil
	case "6":
		return Six, nil
	case "7":
		return Seven, nil
	case "8":
		return Eight, nil
	case "9":
		return Nine, nil
	case "10", "T":
		return Ten, nil
	case "J":
		return Jack, nil
	case "Q":
		return Queen, nil
	case "K":
		return King, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidRank, s)
	}
}

// HandValue sums point values mod 10.
func HandValue(cards []Rank) int {
	total := 0
	for _, c := range cards {
		total += c.Value()
	}
	return total % 10
}
