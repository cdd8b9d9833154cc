package extract

import (
	"strings"
	"unicode/utf8"
)

// SplitBilingual splits a field value into its local-script and Latin
// components on a pipe separator. OCR sometimes reads the pipe as a broken
// bar, so both are accepted. Values without a separator are returned as both
// components, so dual-line rendering degrades to repeating the same text
// instead of failing.
func SplitBilingual(value string) (local, latin string) {
	if idx := strings.IndexAny(value, "|¦"); idx >= 0 {
		_, size := utf8.DecodeRuneInString(value[idx:])
		return strings.TrimSpace(value[:idx]), strings.TrimSpace(value[idx+size:])
	}
	value = strings.TrimSpace(value)
	return value, value
}
