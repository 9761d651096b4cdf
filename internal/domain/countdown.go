package domain

import (
	"fmt"
	"strings"
	"time"
)

// Countdown formats the time remaining until resetsAt as a short
// human-readable string: "2h 5m", "50m", "now" once the reset point has
// passed, or "?" when the timestamp is missing or unparseable. It is total
// over its input domain and never panics.
func Countdown(resetsAt string, now time.Time) string {
	trimmed := strings.TrimSpace(resetsAt)
	if trimmed == "" {
		return "?"
	}

	reset, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		return "?"
	}

	remaining := reset.Sub(now)
	if remaining <= 0 {
		return "now"
	}

	totalSeconds := int64(remaining / time.Second)
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}

	return fmt.Sprintf("%dm", minutes)
}
