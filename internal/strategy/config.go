package strategy

import (
	"fmt"
	"math"

	"github.com/anamarijapotokar/Baccarat/internal/games"
)

// Config is shared by every progression.
type Config struct {
	InitialBankroll float64       `json:"initial_bankroll"`
	BaseBet         float64       `json:"base_bet"`
	Bet             games.BetType `json:"bet_type"`
	Commission      float64       `json:"commission,omitempty"`

	// MaxBet caps Paroli stakes. Zero means InitialBankroll.
	MaxBet float64 `json:"max_bet,omitempty"`
	// Unit is the D'Alembert step. Zero means BaseBet.
	Unit float64 `json:"unit,omitempty"`
}

// WithDefaults fills zero fields.
func (c Config) WithDefaults() Config {
	if c.Bet == "" {
		c.Bet = games.BetBanker
	}
	if c.Commission == 0 {
		c.Commission = games.DefaultCommission
	}
	if c.MaxBet == 0 {
		c.MaxBet = c.InitialBankroll
	}
	if c.Unit == 0 {
		c.Unit = c.BaseBet
	}
	return c
}

// Validate checks a config after defaults are applied.
func (c Config) Validate() error {
	if !positive(c.InitialBankroll) {
		return fmt.Errorf("%w: initial bankroll must be positive, got %v", ErrInvalidConfig, c.InitialBankroll)
	}
	if !positive(c.BaseBet) {
		return fmt.Errorf("%w: base bet must be positive, got %v", ErrInvalidConfig, c.BaseBet)
	}
	if _, err := c.Bet.Outcome(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if !(c.Commission >= 0 && c.Commission < 1) {
		return fmt.Errorf("%w: commission must be in [0,1), got %v", ErrInvalidConfig, c.Commission)
	}
	if !positive(c.MaxBet) || c.MaxBet < c.BaseBet {
		return fmt.Errorf("%w: max bet %v must be at least the base bet %v", ErrInvalidConfig, c.MaxBet, c.BaseBet)
	}
	if !positive(c.Unit) {
		return fmt.Errorf("%w: unit must be positive, got %v", ErrInvalidConfig, c.Unit)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
