package model

import (
	"sort"
	"strings"
)

// Event-log lines shared by the builtin models so resets and parameter
// changes read uniformly across model types. Keys the model does not consume
// are named in the entry rather than silently dropped, so a typo shows up in
// the session's log.

// ResetEvent renders the event-log entry for a reset.
func ResetEvent(params Params, known map[string]bool) string {
	entry := "reset called"
	if len(params) > 0 {
		entry += ": " + params.String()
	}
	return entry + ignoredSuffix(params, known)
}

// UpdateEvent renders the event-log entry for a parameter update.
func UpdateEvent(params Params, known map[string]bool) string {
	entry := "params updated"
	if len(params) > 0 {
		entry += ": " + params.String()
	}
	return entry + ignoredSuffix(params, known)
}

func ignoredSuffix(params Params, known map[string]bool) string {
	var ignored []string
	for k := range params {
		if !known[k] {
			ignored = append(ignored, k)
		}
	}
	if len(ignored) == 0 {
		return ""
	}
	sort.Strings(ignored)
	return " (ignored: " + strings.Join(ignored, ", ") + ")"
}
