package cache

import (
	"regexp"
	"strings"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
)

// NormalizeText canonicalizes one semantic field: lowercase, every
// character outside [a-z0-9\s] replaced with a space, whitespace runs
// collapsed, and the result trimmed. The transform is idempotent, so
// "PLA!!", "pla" and "  pla  " all normalize to "pla".
func NormalizeText(s string) string {
	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, " ")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
