package strategy

import "errors"

var (
	ErrInvalidConfig   = errors.New("invalid strategy config")
	ErrInvalidStake    = errors.New("progression returned an invalid stake")
	ErrUnknownStrategy = errors.New("unknown strategy")
	ErrScript          = errors.New("script error")
)
