package model

// Candle is one fixed-width OHLC bucket aggregated from price points.
// BucketStart is the bucket's floor timestamp in Unix milliseconds.
type Candle struct {
	BucketStart int64   `json:"bucket_start"`
	Open        float64 `json:"open"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Close       float64 `json:"close"`
	Volume      float64 `json:"volume"`
}
