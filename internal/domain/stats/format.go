package stats

import (
	"fmt"
	"math"
)

// maxFormatSeconds is the largest float64 that converts to int exactly.
const maxFormatSeconds = 1 << 53

// FormatDuration renders a duration in seconds as "45s", "2m 5s" or
// "1h 1m". Fractions are truncated. NaN and negative input render as
// "0s"; values past maxFormatSeconds, +Inf included, are clamped.
func FormatDuration(seconds float64) string {
	switch {
	case math.IsNaN(seconds) || seconds < 0:
		seconds = 0
	case seconds > maxFormatSeconds:
		seconds = maxFormatSeconds
	}
	total := int(seconds)
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", total)
	case seconds < 3600:
		return fmt.Sprintf("%dm %ds", total/60, total%60)
	default:
		return fmt.Sprintf("%dh %dm", total/3600, (total%3600)/60)
	}
}
