package games

import (
	"fmt"

	"github.com/anamarijapotokar/Baccarat/internal/engine"
)

const (
	// DefaultDecks is the usual 8-deck baccarat shoe (416 cards).
	DefaultDecks = 8

	// MaxCardsPerHand is the most a single hand can consume: three per side.
	MaxCardsPerHand = 6

	// DefaultReshuffleThreshold rebuilds the shoe once fewer cards remain
	// than one worst-case hand needs.
	DefaultReshuffleThreshold = MaxCardsPerHand
)

// ShoeConfig configures deck count and penetration. Zero values take the defaults.
type ShoeConfig struct {
	Decks              int `json:"decks"`
	ReshuffleThreshold int `json:"reshuffle_threshold"`
}

// WithDefaults fills zero fields.
func (c ShoeConfig) WithDefaults() ShoeConfig {
	if c.Decks == 0 {
		c.Decks = DefaultDecks
	}
	if c.ReshuffleThreshold == 0 {
		c.ReshuffleThreshold = DefaultReshuffleThreshold
	}
	return c
}

// Validate checks a defaulted config.
func (c ShoeConfig) Validate() error {
	if c.Decks <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDeckCount, c.Decks)
	}
	if c.ReshuffleThreshold < MaxCardsPerHand {
		return fmt.Errorf("%w: %d < %d", ErrThresholdTooLow, c.ReshuffleThreshold, MaxCardsPerHand)
	}
	if c.ReshuffleThreshold >= c.Decks*CardsPerDeck {
		return fmt.Errorf("%w: %d >= %d", ErrThresholdTooHigh, c.ReshuffleThreshold, c.Decks*CardsPerDeck)
	}
	return nil
}

// Shoe is a depletable, shuffled multiset of ranks dealt from the end.
// A Shoe belongs to one simulation; it is not safe for concurrent use.
type Shoe struct {
	cards     []Rank
	decks     int
	threshold int
	src       engine.Source
	shuffles  int
}

// NewShoe builds and shuffles a shoe.
func NewShoe(cfg ShoeConfig, src engine.Source) (*Shoe, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Shoe{
		cards:     make([]Rank, 0, cfg.Decks*CardsPerDeck),
		decks:     cfg.Decks,
		threshold: cfg.ReshuffleThreshold,
		src:       src,
	}
	s.rebuild()
	return s, nil
}

// BuildCards returns decks×52 ranks, four of each rank per deck, shuffled with src.
func BuildCards(decks int, src engine.Source) []Rank {
	cards := make([]Rank, 0, decks*CardsPerDeck)
	return fillAndShuffle(cards, decks, src)
}

func fillAndShuffle(cards []Rank, decks int, src engine.Source) []Rank {
	cards = cards[:0]
	for d := 0; d < decks; d++ {
		for _, r := range Ranks {
			for i := 0; i < suitsPerRank; i++ {
				cards = append(cards, r)
			}
		}
	}
	// Fisher-Yates
	for i := len(cards) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
	return cards
}

func (s *Shoe) rebuild() {
	s.cards = fillAndShuffle(s.cards, s.decks, s.src)
	s.shuffles++
}

// Draw removes and returns the top card.
func (s *Shoe) Draw() (Rank, error) {
	n := len(s.cards)
	if n == 0 {
		return 0, ErrEmptyShoe
	}
	card := s.cards[n-1]
	s.cards = s.cards[:n-1]
	return card, nil
}

// Checkpoint rebuilds the shoe when fewer than Threshold cards remain.
// It must run before a hand is dealt, never in the middle of one.
func (s *Shoe) Checkpoint() bool {
	if len(s.cards) >= s.threshold {
		return false
	}
	s.rebuild()
	return true
}

// Remaining is the number of undealt cards.
func (s *Shoe) Remaining() int { return len(s.cards) }

// DecksRemaining is Remaining/52.
func (s *Shoe) DecksRemaining() float64 {
	return float64(len(s.cards)) / CardsPerDeck
}

// Decks is the configured deck count.
func (s *Shoe) Decks() int { return s.decks }

// Threshold is the reshuffle threshold in cards.
func (s *Shoe) Threshold() int { return s.threshold }

// Shuffles counts how many shoes have been built, including the first.
func (s *Shoe) Shuffles() int { return s.shuffles }

// Cards returns a copy of the undealt cards; the last element is dealt next.
func (s *Shoe) Cards() []Rank {
	out := make([]Rank, len(s.cards))
	copy(out, s.cards)
	return out
}
