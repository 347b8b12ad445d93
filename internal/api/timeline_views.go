package api

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// FilterTimeline keeps entries whose location contains search, compared
// case-folded. An empty search returns entries unchanged.
func FilterTimeline(entries []TimelineEntry, search string) []TimelineEntry {
	needle := folder.String(strings.TrimSpace(search))
	if needle == "" {
		return entries
	}
	out := make([]TimelineEntry, 0, len(entries))
	for _, entry := range entries {
		if strings.Contains(folder.String(entry.Location), needle) {
			out = append(out, entry)
		}
	}
	return out
}

// ParseDay validates a YYYY-MM-DD timeline day.
func ParseDay(value string) (string, error) {
	value = strings.TrimSpace(value)
	if _, err := time.Parse(time.DateOnly, value); err != nil {
		return "", fmt.Errorf("day %q must be YYYY-MM-DD", value)
	}
	return value, nil
}

// TimelineDays returns the distinct days in entries, in order of first
// appearance.
func TimelineDays(entries []TimelineEntry) []string {
	seen := make(map[string]struct{}, len(entries))
	var days []string
	for _, entry := range entries {
		if _, ok := seen[entry.Day]; ok {
			continue
		}
		seen[entry.Day] = struct{}{}
		days = append(days, entry.Day)
	}
	return days
}
