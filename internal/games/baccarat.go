package games

import (
	"fmt"
	"strings"
)

// Outcome is the result of one resolved hand.
type Outcome uint8

const (
	Player Outcome = iota + 1
	Banker
	Tie
)

// Outcomes lists the three outcomes.
var Outcomes = [3]Outcome{Player, Banker, Tie}

func (o Outcome) String() string {
	switch o {
	case Player:
		return "Player"
	case Banker:
		return "Banker"
	case Tie:
		return "Tie"
	default:
		return fmt.Sprintf("Outcome(%d)", uint8(o))
	}
}

// Valid reports whether o is Player, Banker or Tie.
func (o Outcome) Valid() bool {
	return o >= Player && o <= Tie
}

// MarshalText encodes the outcome name.
func (o Outcome) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOutcome, o)
	}
	return []byte(o.String()), nil
}

// UnmarshalText decodes an outcome name.
func (o *Outcome) UnmarshalText(text []byte) error {
	parsed, err := ParseOutcome(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// ParseOutcome parses "player", "banker" or "tie" in any case.
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "player", "p":
		return Player, nil
	case "banker", "b":
		return Banker, nil
	case "tie", "t":
		return Tie, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidOutcome, s)
	}
}

// Hand holds the 2 or 3 cards of one side.
type Hand struct {
	cards [3]Rank
	n     int
}

func (h *Hand) add(r Rank) {
	h.cards[h.n] = r
	h.n++
}

// Cards returns the cards in deal order.
func (h Hand) Cards() []Rank {
	out := make([]Rank, h.n)
	copy(out, h.cards[:h.n])
	return out
}

// Len is the number of cards held.
func (h Hand) Len() int { return h.n }

// Value is the baccarat total (sum mod 10).
func (h Hand) Value() int {
	total := 0
	for i := 0; i < h.n; i++ {
		total += h.cards[i].Value()
	}
	return total % 10
}

// Third returns the third card, if drawn.
func (h Hand) Third() (Rank, bool) {
	if h.n < 3 {
		return 0, false
	}
	return h.cards[2], true
}

// Round is a fully resolved hand.
type Round struct {
	Player     Hand
	Banker     Hand
	Natural    bool
	PlayerDrew bool
	BankerDrew bool
	Outcome    Outcome
}

// CardsUsed is the number of cards the round consumed (4 to 6).
func (r Round) CardsUsed() int {
	return r.Player.Len() + r.Banker.Len()
}

// Dealer is a card source with a reshuffle checkpoint. Shoe and CountingShoe implement it.
type Dealer interface {
	Draw() (Rank, error)
	Checkpoint() bool
}

// ResolveHand runs the reshuffle checkpoint and then plays one hand.
func ResolveHand(d Dealer) (Round, error) {
	d.Checkpoint()
	return playHand(d)
}

// ResolveCounted runs the checkpoint, captures the count before any card of
// the hand is dealt, then plays the hand.
func ResolveCounted(cs *CountingShoe) (Round, CountSnapshot, error) {
	cs.Checkpoint()
	snap := cs.Snapshot()
	round, err := playHand(cs)
	return round, snap, err
}

// DealOutcomes resolves n consecutive hands from d.
func DealOutcomes(d Dealer, n int) ([]Outcome, error) {
	outcomes := make([]Outcome, n)
	for i := range outcomes {
		round, err := ResolveHand(d)
		if err != nil {
			return outcomes[:i], fmt.Errorf("hand %d: %w", i+1, err)
		}
		outcomes[i] = round.Outcome
	}
	return outcomes, nil
}

func playHand(d Dealer) (Round, error) {
	var round Round

	// Deal order: player, player, banker, banker
	for i := 0; i < 4; i++ {
		card, err := d.Draw()
		if err != nil {
			return Round{}, err
		}
		if i < 2 {
			round.Player.add(card)
		} else {
			round.Banker.add(card)
		}
	}

	playerScore := round.Player.Value()
	bankerScore := round.Banker.Value()

	// Neither side draws if either has a natural (8 or 9)
	if IsNatural(playerScore) || IsNatural(bankerScore) {
		round.Natural = true
		round.Outcome = Compare(playerScore, bankerScore)
		return round, nil
	}

	playerThird := 0
	if PlayerShouldDraw(playerScore) {
		card, err := d.Draw()
		if err != nil {
			return Round{}, err
		}
		round.Player.add(card)
		round.PlayerDrew = true
		playerThird = card.Value()
		playerScore = round.Player.Value()
	}

	if BankerShouldDraw(bankerScore, round.PlayerDrew, playerThird) {
		card, err := d.Draw()
		if err != nil {
			return Round{}, err
		}
		round.Banker.add(card)
		round.BankerDrew = true
		bankerScore = round.Banker.Value()
	}

	round.Outcome = Compare(playerScore, bankerScore)
	return round, nil
}

// IsNatural reports a two-card 8 or 9.
func IsNatural(score int) bool {
	return score == 8 || score == 9
}

// PlayerShouldDraw is the player rule: draw on 0-5, stand on 6-7.
func PlayerShouldDraw(playerScore int) bool {
	return playerScore <= 5
}

// BankerShouldDraw implements the banker tableau. playerThird is the point
// value of the player's third card and is ignored when the player stood.
func BankerShouldDraw(bankerScore int, playerDrew bool, playerThird int) bool {
	if !playerDrew {
		return bankerScore <= 5
	}
	switch bankerScore {
	case 0, 1, 2:
		return true
	case 3:
		return playerThird != 8
	case 4:
		return playerThird >= 2 && playerThird <= 7
	case 5:
		return playerThird >= 4 && playerThird <= 7
	case 6:
		return playerThird == 6 || playerThird == 7
	default: // 7
		return false
	}
}

// Compare returns the winner of two final totals.
func Compare(playerScore, bankerScore int) Outcome {
	switch {
	case playerScore > bankerScore:
		return Player
	case bankerScore > playerScore:
		return Banker
	default:
		return Tie
	}
}
