// Package display provides human-readable renderings of machine values.
//
// Rule: codes are for machines, words are for humans. Use these in CLI
// output and logs; keep raw codes for JSON fields and equality checks.
package display

import "fmt"

var parentTypes = map[string]string{
	"root":       "Root",
	"release":    "Release",
	"test-cycle": "Test Cycle",
	"test-suite": "Test Suite",
}

// ParentType returns the human-readable name for a container type code.
// Unknown codes are returned as-is.
func ParentType(code string) string {
	if name, ok := parentTypes[code]; ok {
		return name
	}
	return code
}

// ParentTypeWithCode returns "Test Cycle (test-cycle)" format.
func ParentTypeWithCode(code string) string {
	if name, ok := parentTypes[code]; ok {
		return name + " (" + code + ")"
	}
	return code
}

// Duration renders an execution time in milliseconds the way the platform UI
// does: seconds below a minute, minutes and seconds below an hour, hours and
// minutes beyond that.
func Duration(ms int64) string {
	seconds := float64(ms) / 1000
	switch {
	case seconds < 60:
		return fmt.Sprintf("%.2fs", seconds)
	case seconds < 3600:
		whole := int64(seconds)
		return fmt.Sprintf("%dm %ds", whole/60, whole%60)
	default:
		whole := int64(seconds)
		return fmt.Sprintf("%dh %dm", whole/3600, (whole%3600)/60)
	}
}

// PassRate renders a percentage with one decimal, e.g. "87.5%".
func PassRate(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate)
}
