// Package candle folds a pool's raw per-trade price points into fixed-width
// OHLC buckets. Aggregation is a pure, deterministic function over the
// immutable history, so it can be re-run with any width on demand.
package candle

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/emirkutlugun77/amm-pool-sim/internal/model"
)

// ErrInvalidWidth rejects non-positive bucket widths.
var ErrInvalidWidth = errors.New("bucket width must be positive")

// ReferenceWidths are the timeframes offered by chart frontends. Any
// positive width is accepted by Aggregate.
var ReferenceWidths = []time.Duration{
	time.Minute,
	5 * time.Minute,
	15 * time.Minute,
	time.Hour,
	4 * time.Hour,
	24 * time.Hour,
}

// Aggregate groups price points into floor-aligned buckets of the given
// width. Within a bucket the first point (in input order) opens, the last
// closes, highs and lows fold by max/min, and volumes sum. Output is sorted
// ascending by bucket start. Empty input yields empty output.
func Aggregate(history []model.PricePoint, width time.Duration) ([]model.Candle, error) {
	if width <= 0 {
		return nil, ErrInvalidWidth
	}
	if len(history) == 0 {
		return []model.Candle{}, nil
	}

	widthMs := width.Milliseconds()
	buckets := make(map[int64]*model.Candle, len(history))
	for _, point := range history {
		key := point.Timestamp / widthMs * widthMs
		if point.Timestamp < 0 && point.Timestamp%widthMs != 0 {
			key -= widthMs
		}

		c, ok := buckets[key]
		if !ok {
			buckets[key] = &model.Candle{
				BucketStart: key,
				Open:        point.Open,
				High:        point.High,
				Low:         point.Low,
				Close:       point.Close,
				Volume:      point.Volume,
			}
			continue
		}
		if point.High > c.High {
			c.High = point.High
		}
		if point.Low < c.Low {
			c.Low = point.Low
		}
		c.Close = point.Close
		c.Volume += point.Volume
	}

	out := make([]model.Candle, 0, len(buckets))
	for _, c := range buckets {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BucketStart < out[j].BucketStart })
	return out, nil
}

// ParseWidth parses a timeframe label such as "1m", "15m", "4h", or "1d".
// Day suffixes are accepted on top of Go duration syntax.
func ParseWidth(label string) (time.Duration, error) {
	label = strings.TrimSpace(label)
	if strings.HasSuffix(label, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(label, "d"))
		if err != nil || days <= 0 {
			return 0, fmt.Errorf("invalid timeframe %q", label)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(label)
	if err != nil {
		return 0, fmt.Errorf("invalid timeframe %q: %w", label, err)
	}
	if d <= 0 {
		return 0, ErrInvalidWidth
	}
	return d, nil
}
