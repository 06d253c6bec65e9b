package format

// Truncate shortens s to maxLen, appending "..." when it had to cut.
// Strings at or under maxLen come back unchanged.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// BoolMark renders a boolean as a check or cross for table cells.
func BoolMark(b bool) string {
	if b {
		return "✓"
	}
	return "✗"
}
