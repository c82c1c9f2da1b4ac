package filler

import (
	"fmt"
	"strings"
)

// IDSelector builds a CSS id selector for an arbitrary id. Characters outside
// [A-Za-z0-9_-] are backslash-escaped, so ids like "question_1[]" stay
// literal rather than being read as attribute selectors. A leading digit, or a
// digit after a leading '-', is written as a hex escape.
func IDSelector(id string) string {
	var b strings.Builder
	b.WriteByte('#')
	for i, r := range id {
		switch {
		case isDigit(r) && (i == 0 || i == 1 && id[0] == '-'):
			fmt.Fprintf(&b, `\%x `, r)
		case i == 0 && r == '-' && len(id) == 1:
			b.WriteString(`\-`)
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', isDigit(r), r == '_', r == '-', r > 0x7f:
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
