package sanitize

import "strings"

// MaxLength is the maximum number of runes kept from untrusted input.
const MaxLength = 500

// Clean strips characters usable for SQL or markup injection, trims
// surrounding whitespace, and truncates to MaxLength runes. It is
// applied to all free text before parsing, logging, or storage.
func Clean(input string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '"', '\'', '`', ';':
			return -1
		}
		return r
	}, input)

	cleaned = strings.TrimSpace(cleaned)

	runes := []rune(cleaned)
	if len(runes) > MaxLength {
		cleaned = string(runes[:MaxLength])
	}
	return cleaned
}
