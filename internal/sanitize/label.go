// Package sanitize normalizes symbol labels arriving from MCP clients and
// the CLI before they reach the engine's memory lookup.
package sanitize

import (
	"regexp"
	"strings"
)

// MaxLabelLength is the maximum length of a symbol label.
const MaxLabelLength = 48

// reRepeatedUnderscores matches 2 or more consecutive underscores.
var reRepeatedUnderscores = regexp.MustCompile(`_{2,}`)

// Label upper-cases a symbol label and keeps only [A-Z0-9_]. Hyphens and
// whitespace become underscores, repeated underscores collapse, and the
// result is truncated to MaxLabelLength.
//
// " learned-426 " normalizes to "LEARNED_426".
func Label(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range strings.ToUpper(input) {
		switch {
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_':
			b.WriteRune(r)
		case r == '-' || r == ' ' || r == '\t':
			b.WriteRune('_')
		}
	}
	s := reRepeatedUnderscores.ReplaceAllString(b.String(), "_")
	s = strings.Trim(s, "_")

	if len(s) > MaxLabelLength {
		s = s[:MaxLabelLength]
	}
	return s
}
