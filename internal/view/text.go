package view

import (
	"fmt"
	"strings"
	"time"
)

// FormatRelativeTime labels ts relative to now. Under an hour is "Just now",
// under a day is "<N>h ago", anything older is "<N>d ago". Counts truncate.
func FormatRelativeTime(ts, now time.Time) string {
	hours := int(now.Sub(ts) / time.Hour)
	switch {
	case hours < 1:
		return "Just now"
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	default:
		return fmt.Sprintf("%dd ago", hours/24)
	}
}

// Truncate keeps the first maxWords words of text. Shorter text is returned
// untouched; longer text is re-joined with single spaces and gets "...".
func Truncate(text string, maxWords int) string {
	if maxWords < 0 {
		maxWords = 0
	}
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
