package pipeline

import (
	"strings"
	"time"
)

// TimestampLayout is the display format of the Latest_Time/Oldest_Time columns.
const TimestampLayout = "2006-01-02 15:04:05"

// timestampLayouts are tried in order; the first successful parse wins.
// Month-first beats day-first for ambiguous slash dates such as 03/04/2024.
var timestampLayouts = []string{
	"2006-1-2 15:04:05",
	"2006-1-2T15:04:05",
	"2006-1-2T15:04:05Z",
	"2006-1-2",
	"1/2/2006",
	"2/1/2006",
}

// ParseTimestamp reports false for empty input or when no layout matches.
// time.Parse would accept fractional seconds after any seconds field, but no
// layout has one, so such values are rejected up front.
func ParseTimestamp(value string) (time.Time, bool) {
	if value == "" || strings.ContainsAny(value, ".,") {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders value in TimestampLayout, or "" when it does not parse.
func FormatTimestamp(value string) string {
	t, ok := ParseTimestamp(value)
	if !ok {
		return ""
	}
	return t.Format(TimestampLayout)
}
