package engine

import "errors"

var (
	ErrUnknownCoin   = errors.New("coin not found")
	ErrUnknownPool   = errors.New("pool not found")
	ErrNothingToUndo = errors.New("no transaction to undo")
	ErrPoolNotFound  = errors.New("undo target pool no longer exists")
	ErrCoinInUse     = errors.New("coin is referenced by an active pool")
	ErrSymbolTaken   = errors.New("coin symbol already registered")
	ErrInvalidSymbol = errors.New("symbol must be 1-6 characters")
)
