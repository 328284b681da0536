package amm

import "errors"

var (
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidReserves  = errors.New("reserves must be positive")
	ErrReserveExhausted = errors.New("requested output exceeds reserve")
)
