package utils

import (
	"fmt"
	"strings"
	"time"
)

func Format[T any](ptr *T) string {
	if ptr == nil {
		return ""
	}
	return fmt.Sprintf("%v", *ptr)
}

// FormatClock renders a timestamp the way the DTR and the attendance log show it, e.g. "08:05 AM".
func FormatClock(t *time.Time, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.In(loc).Format("03:04 PM")
}

func FormatHours(hours float64) string {
	return fmt.Sprintf("%.2f", hours)
}

// SplitCSV splits "a, b,,c" into ["a" "b" "c"].
func SplitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
