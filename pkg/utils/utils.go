package utils

import "fmt"

// FormatMinutes renders a fractional minute count as "1h 05m" or "42m"
func FormatMinutes(minutes float64) string {
	if minutes < 0 {
		minutes = -minutes
	}
	total := int64(minutes + 0.5)
	if total < 60 {
		return fmt.Sprintf("%dm", total)
	}
	return fmt.Sprintf("%dh %02dm", total/60, total%60)
}
