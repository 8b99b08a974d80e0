package util

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// TruncateString truncates a string to maxRunes characters (rune-based, not byte-based)
// If truncated, appends "..." to the result
func TruncateString(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// TruncateRunes cuts s to at most maxRunes characters without adding a marker.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	return string([]rune(s)[:maxRunes])
}

// RuneLen returns the number of characters in s.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Normalize performs basic string normalization (lowercase + trim)
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SplitBungieName splits "Name#0123" into its display name and numeric code.
// ok is false when the input has no valid four digit code suffix.
func SplitBungieName(s string) (name string, code int, ok bool) {
	s = strings.TrimSpace(s)
	idx := strings.LastIndex(s, "#")
	if idx <= 0 || idx == len(s)-1 {
		return s, 0, false
	}

	codeStr := s[idx+1:]
	if len(codeStr) > 4 {
		return s, 0, false
	}
	code, err := strconv.Atoi(codeStr)
	if err != nil || code < 0 {
		return s, 0, false
	}
	return s[:idx], code, true
}

// FormatBungieName renders a global display name with its zero padded code.
func FormatBungieName(name string, code int) string {
	return name + "#" + PadCode(code)
}

// PadCode renders a name code as four digits.
func PadCode(code int) string {
	s := strconv.Itoa(code)
	for len(s) < 4 {
		s = "0" + s
	}
	return s
}

// IsNumeric reports whether s is a non-empty run of ASCII digits.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Contains checks if a string slice contains a specific item
func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
