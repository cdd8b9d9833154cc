package extract

import "strings"

// Ethiopic punctuation shows up inconsistently in OCR output depending on
// engine and image quality. Mapping it to ASCII equivalents keeps the label
// table and validators single-alphabet.
var punctReplacer = strings.NewReplacer(
	"፡", " ", // wordspace
	"።", ".", // full stop
	"፣", ",", // comma
	"፤", ";", // semicolon
	"፥", ":", // colon
	"፦", ":", // preface colon
	"：", ":", // fullwidth colon
)

// NormalizeLines splits raw OCR text into trimmed, non-empty lines and
// collapses internal whitespace. Order is preserved exactly; the extractor
// depends on top-to-bottom proximity of label and value lines. Empty input
// yields a nil slice.
func NormalizeLines(raw string) []string {
	if raw == "" {
		return nil
	}

	raw = punctReplacer.Replace(raw)
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
