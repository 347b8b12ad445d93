package logs

import "strings"

// Filter selects log lines. The zero value matches everything, including
// lines that are not JSON.
type Filter struct {
	RunID string
	// MinLevel is a level name such as "warn"; empty disables level filtering.
	MinLevel  string
	EventType string
	Component string
}

func (f Filter) empty() bool {
	return f.RunID == "" && f.MinLevel == "" && f.EventType == "" && f.Component == ""
}

// Match reports whether line passes f.
func (f Filter) Match(line string) bool {
	if f.empty() {
		return true
	}
	entry, ok := ParseEntry(line)
	if !ok {
		return false
	}
	return f.MatchEntry(entry)
}

// MatchEntry reports whether a decoded entry passes f. RunID matches as a
// prefix so the short ids shown by `runs` work.
func (f Filter) MatchEntry(e Entry) bool {
	if f.MinLevel != "" && e.Level < ParseLevel(f.MinLevel) {
		return false
	}
	if f.RunID != "" && !strings.HasPrefix(e.RunID, f.RunID) {
		return false
	}
	if f.EventType != "" && e.EventType != f.EventType {
		return false
	}
	if f.Component != "" && e.Component != f.Component {
		return false
	}
	return true
}
