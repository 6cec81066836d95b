package util

import "strings"

// ConditionalString returns valueIfTrue if condition is true, otherwise valueIfFalse
func ConditionalString(condition bool, valueIfTrue, valueIfFalse string) string {
	if condition {
		return valueIfTrue
	}
	return valueIfFalse
}

// StringValue dereferences s, treating nil as empty
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringOrDefault returns the trimmed value of s, or fallback when it is nil or blank
func StringOrDefault(s *string, fallback string) string {
	value := strings.TrimSpace(StringValue(s))
	return ConditionalString(value != "", value, fallback)
}

// Truncate shortens s to at most max runes, marking the cut with "..."
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
