// Package textutil holds small string helpers shared across the daemon and CLI.
package textutil

import (
	"strings"
	"unicode"
)

// SanitizeFileName strips path components and replaces characters that are
// unsafe in stored filenames. Empty or dot-only input becomes "upload".
func SanitizeFileName(name string) string {
	// Keep only the final path element regardless of separator style.
	if idx := strings.LastIndexAny(name, `/\`); idx >= 0 {
		name = name[idx+1:]
	}
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}
	cleaned := strings.Trim(b.String(), ".")
	if cleaned == "" {
		return "upload"
	}
	return cleaned
}

// Truncate shortens s to at most max runes, appending an ellipsis when it
// had to cut. A max below 4 just hard-cuts.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max < 4 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
