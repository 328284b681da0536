package model

// PricePoint is one OHLC sample appended to a pool's history per trade.
// Timestamps are Unix milliseconds; volume is in stable-coin units when
// derivable.
type PricePoint struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}
