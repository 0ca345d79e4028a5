package games

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// BetType is the side a stake is placed on.
type BetType string

const (
	BetPlayer BetType = "Player"
	BetBanker BetType = "Banker"
	BetTie    BetType = "Tie"
)

const (
	// DefaultCommission is taken from winning Banker bets.
	DefaultCommission = 0.05

	// TiePayout is the Tie bet's b in b:1.
	TiePayout = 8
)

// ParseBetType parses "player", "banker" or "tie" in any case.
func ParseBetType(s string) (BetType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "player":
		return BetPlayer, nil
	case "banker":
		return BetBanker, nil
	case "tie":
		return BetTie, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidBetType, s)
	}
}

// Outcome is the hand result that wins this bet.
func (b BetType) Outcome() (Outcome, error) {
	switch b {
	case BetPlayer:
		return Player, nil
	case BetBanker:
		return Banker, nil
	case BetTie:
		return Tie, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidBetType, string(b))
	}
}

// Payout returns b in b:1 for a winning bet.
func Payout(bet BetType, commission float64) (float64, error) {
	switch bet {
	case BetPlayer:
		return 1, nil
	case BetBanker:
		if !validCommission(commission) {
			return 0, fmt.Errorf("%w: %v", ErrInvalidCommission, commission)
		}
		p, _ := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(commission)).Float64()
		return p, nil
	case BetTie:
		return TiePayout, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidBetType, string(bet))
	}
}

// Settle returns the signed profit of a stake on bet given the outcome.
// Player and Banker push on a Tie; the Tie bet has no push.
func Settle(outcome Outcome, bet BetType, stake, commission float64) (float64, error) {
	if !outcome.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidOutcome, outcome)
	}
	if !(stake >= 0) || math.IsInf(stake, 1) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidStake, stake)
	}
	if !validCommission(commission) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidCommission, commission)
	}

	s := decimal.NewFromFloat(stake)
	var profit decimal.Decimal

	switch bet {
	case BetPlayer:
		switch outcome {
		case Player:
			profit = s
		case Banker:
			profit = s.Neg()
		default:
			profit = decimal.Zero
		}
	case BetBanker:
		switch outcome {
		case Banker:
			profit = s.Mul(decimal.NewFromInt(1).Sub(decimal.NewFromFloat(commission)))
		case Player:
			profit = s.Neg()
		default:
			profit = decimal.Zero
		}
	case BetTie:
		if outcome == Tie {
			profit = s.Mul(decimal.NewFromInt(TiePayout))
		} else {
			profit = s.Neg()
		}
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidBetType, string(bet))
	}

	f, _ := profit.Float64()
	return f, nil
}

// validCommission is false for NaN and anything outside [0, 1).
func validCommission(c float64) bool {
	return c >= 0 && c < 1
}
