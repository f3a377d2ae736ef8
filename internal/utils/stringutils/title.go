package stringutils

import (
	"strings"
	"unicode/utf8"
)

// Prefix returns at most n characters of s, counted in runes so multi-byte text is never split.
func Prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// CleanGeneratedTitle normalises a model generated title: trims whitespace and wrapping quotes,
// collapses internal whitespace and truncates to maxLen characters.
func CleanGeneratedTitle(raw string, maxLen int) string {
	title := strings.TrimSpace(raw)
	title = strings.Trim(title, "\"'`“”")
	title = strings.Join(strings.Fields(title), " ")
	return strings.TrimSpace(Prefix(title, maxLen))
}
