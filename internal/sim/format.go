package sim

import (
	"fmt"
	"math"
)

// FormatMoney renders whole-dollar amounts in the compact style the game UI
// uses everywhere: $850, $12.5K, $4.2M, $1.1B.
func FormatMoney(v int64) string {
	neg := ""
	if v < 0 {
		neg = "-"
		v = -v
	}
	f := float64(v)
	switch {
	case f >= 1e9:
		return fmt.Sprintf("%s$%.1fB", neg, f/1e9)
	case f >= 1e6:
		return fmt.Sprintf("%s$%.1fM", neg, f/1e6)
	case f >= 1e3:
		return fmt.Sprintf("%s$%.1fK", neg, f/1e3)
	default:
		return fmt.Sprintf("%s$%.0f", neg, f)
	}
}

// FormatPercent renders a ratio as a signed percentage: 0.123 -> "+12.3%".
func FormatPercent(v float64) string {
	sign := "+"
	if v < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s%.1f%%", sign, math.Abs(v)*100)
}
