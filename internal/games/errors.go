package games

import "errors"

var (
	// ErrEmptyShoe means a draw reached an empty shoe. The reshuffle
	// checkpoint makes this unreachable; seeing it is a programming error.
	ErrEmptyShoe = errors.New("draw from empty shoe")

	ErrInvalidBetType    = errors.New("invalid bet type")
	ErrInvalidOutcome    = errors.New("invalid outcome")
	ErrInvalidRank       = errors.New("invalid rank")
	ErrInvalidDeckCount  = errors.New("deck count must be positive")
	ErrThresholdTooLow   = errors.New("reshuffle threshold below cards needed for one hand")
	ErrThresholdTooHigh  = errors.New("reshuffle threshold not below shoe size")
	ErrInvalidFloor      = errors.New("min decks floor must be positive")
	ErrInvalidStake      = errors.New("stake must not be negative")
	ErrInvalidCommission = errors.New("commission must be in [0, 1)")
)
