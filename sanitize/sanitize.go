// Package sanitize strips unsafe characters from free-text fields and
// truncates them before they reach storage. Sanitization is idempotent:
// applying it twice yields the same result as applying it once.
package sanitize

import "strings"

// MaxTextLen is the rune cap applied to every free-text field.
const MaxTextLen = 1000

var stripper = strings.NewReplacer("<", "", ">", "", "'", "", `"`, "")

// Text strips angle brackets and quote characters, trims surrounding
// whitespace, and truncates to MaxTextLen runes.
func Text(s string) string {
	s = stripper.Replace(s)
	s = strings.TrimSpace(s)

	if runes := []rune(s); len(runes) > MaxTextLen {
		// Re-trim so a cut that lands on whitespace stays idempotent.
		s = strings.TrimSpace(string(runes[:MaxTextLen]))
	}

	return s
}
