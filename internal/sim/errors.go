package sim

import "errors"

var (
	ErrDegenerateSignalRange = errors.New("degenerate signal range")
	ErrIncompatibleBins      = errors.New("incompatible bin configurations")
	ErrInvalidConfig         = errors.New("invalid simulation config")
)
