package common

import (
	"strings"
	"unicode/utf8"
)

// TruncateString cuts s to at most max runes.
func TruncateString(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// TruncateWords cuts s to at most max runes, preferring a word boundary
// so truncated prompt fields and meta text do not end mid-word. Falls
// back to a hard cut when no space exists in the window.
func TruncateWords(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	cut := TruncateString(s, max)
	if idx := strings.LastIndex(cut, " "); idx > max/2 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ,;:-")
}

// CollapseWhitespace trims s and collapses internal whitespace runs to
// single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
