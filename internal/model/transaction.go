package model

import "github.com/google/uuid"

// TxType classifies a swap relative to coin A: selling A in is a sell,
// buying A out with B is a buy.
type TxType string

const (
	TxBuy  TxType = "buy"
	TxSell TxType = "sell"
)

// Transaction is one executed swap recorded in the ledger.
type Transaction struct {
	ID        uuid.UUID `json:"id"`
	PoolID    uuid.UUID `json:"pool_id"`
	Type      TxType    `json:"type"`
	AmountIn  float64   `json:"amount_in"`
	AmountOut float64   `json:"amount_out"`
	TokenIn   string    `json:"token_in"`
	TokenOut  string    `json:"token_out"`
	Timestamp int64     `json:"timestamp"`
	Price     float64   `json:"price"`
}
