package metrics

import (
	"fmt"
	"math"
)

// FormatAmount renders a large value with a K/M/B/T suffix.
func FormatAmount(value float64) string {
	if value == 0 {
		return "0"
	}

	sign := ""
	abs := math.Abs(value)
	if value < 0 {
		sign = "-"
	}

	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%s%.2fT", sign, abs/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%s%.2fB", sign, abs/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%s%.2fM", sign, abs/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%s%.2fK", sign, abs/1e3)
	default:
		return fmt.Sprintf("%s%.2f", sign, abs)
	}
}

// FormatPrice renders a stable-coin price with decimals scaled to its
// magnitude.
func FormatPrice(price float64) string {
	switch {
	case price == 0:
		return "$0.00"
	case price >= 1:
		return fmt.Sprintf("$%.2f", price)
	case price >= 0.01:
		return fmt.Sprintf("$%.4f", price)
	default:
		return fmt.Sprintf("$%.8f", price)
	}
}
