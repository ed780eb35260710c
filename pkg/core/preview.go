package core

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// DefaultPreviewLength is the number of characters kept by DerivePreview.
	DefaultPreviewLength = 60
	// DefaultDateLayout renders labels older than a week.
	DefaultDateLayout = "2006/1/2"

	ellipsis = "..."
)

// headingMarker matches an ATX heading marker and the whitespace after it,
// wherever it occurs in the text.
var headingMarker = regexp.MustCompile(`#{1,6}\s`)

// DerivePreview strips markdown heading markers from content, trims it and
// truncates it to maxLength characters, appending an ellipsis when cut.
// A non-positive maxLength uses DefaultPreviewLength.
func DerivePreview(content string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultPreviewLength
	}
	plain := strings.TrimSpace(headingMarker.ReplaceAllString(content, ""))

	runes := []rune(plain)
	if len(runes) <= maxLength {
		return plain
	}
	return string(runes[:maxLength]) + ellipsis
}

const (
	minute = int64(time.Minute / time.Millisecond)
	hour   = int64(time.Hour / time.Millisecond)
	day    = 24 * hour
	week   = 7 * day
)

// DeriveRelativeLabel maps the time elapsed since lastUpdated (epoch ms) to a
// human label. Both arguments are epoch milliseconds.
func DeriveRelativeLabel(lastUpdated, now int64) string {
	return FormatRelativeLabel(lastUpdated, now, DefaultDateLayout)
}

// FormatRelativeLabel is DeriveRelativeLabel with an explicit layout for
// dates older than a week.
func FormatRelativeLabel(lastUpdated, now int64, layout string) string {
	diff := now - lastUpdated
	switch {
	case diff < minute:
		return "just now"
	case diff < hour:
		return plural(diff/minute, "minute")
	case diff < day:
		return plural(diff/hour, "hour")
	case diff < week:
		return plural(diff/day, "day")
	}
	if layout == "" {
		layout = DefaultDateLayout
	}
	return time.UnixMilli(lastUpdated).Format(layout)
}

func plural(n int64, unit string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss ago", n, unit)
	}
	return fmt.Sprintf("%d %s ago", n, unit)
}
