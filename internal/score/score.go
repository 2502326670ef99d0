// Package score provides threat score classification and display formatting
// shared across the console views. The 0-100 banding here is the single source
// of truth; every view model derives categories through it.
package score

import (
	"fmt"
	"time"
)

// Category is the semantic band of a 0-100 threat score.
type Category string

const (
	CategoryLow      Category = "low"      // 0-25
	CategoryMedium   Category = "medium"   // 26-50
	CategoryHigh     Category = "high"     // 51-75
	CategoryCritical Category = "critical" // 76-100
)

// Categorize maps a threat score to its band. Boundaries classify upward:
// 26 is medium, 51 is high, 76 is critical.
func Categorize(score int) Category {
	switch {
	case score >= 76:
		return CategoryCritical
	case score >= 51:
		return CategoryHigh
	case score >= 26:
		return CategoryMedium
	default:
		return CategoryLow
	}
}

// Color returns the hex display color for a score.
func Color(score int) string {
	switch {
	case score >= 76:
		return "#ef4444"
	case score >= 51:
		return "#f59e0b"
	case score >= 26:
		return "#eab308"
	default:
		return "#10b981"
	}
}

// HealthColor returns the display color for a feed health state.
func HealthColor(health string) string {
	switch health {
	case "healthy":
		return "#10b981"
	case "degraded":
		return "#f59e0b"
	case "offline":
		return "#ef4444"
	default:
		return "#64748b"
	}
}

// TypeIcon returns the icon name for an IOC type.
func TypeIcon(iocType string) string {
	switch iocType {
	case "ip":
		return "Globe"
	case "domain":
		return "Link"
	case "hash":
		return "Hash"
	case "url":
		return "ExternalLink"
	case "email":
		return "Mail"
	case "cve":
		return "ShieldAlert"
	default:
		return "FileQuestion"
	}
}

// FormatNumber abbreviates large counts for display (1.2K, 3.4M).
func FormatNumber(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// FormatTimestamp renders a timestamp as a relative duration ("3h ago").
// Nil timestamps render as "N/A".
func FormatTimestamp(ts *time.Time) string {
	if ts == nil || ts.IsZero() {
		return "N/A"
	}
	return formatRelative(time.Since(*ts))
}

func formatRelative(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// FormatDate renders a timestamp as "2006-01-02 15:04", or "N/A" when nil.
func FormatDate(ts *time.Time) string {
	if ts == nil || ts.IsZero() {
		return "N/A"
	}
	return ts.Format("2006-01-02 15:04")
}

// Truncate shortens a string to maxLen runes, appending an ellipsis.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
