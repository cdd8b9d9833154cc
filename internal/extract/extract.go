package extract

import "strings"

// Extract recovers the field schema from normalized OCR lines. The input is
// the combined front-page and back-page line sequence, front lines first,
// each page in its original top-to-bottom order.
//
// Each field is recovered independently by label-anchored search: the first
// line containing one of the field's label variants anchors the value, which
// is read from the remainder of that line when present, otherwise from the
// following line unless that line anchors a different field. The field's
// validator vets every candidate; the first candidate that validates wins
// and later matches are ignored.
//
// Extract is a pure function: identical input always yields identical
// output, and nothing is fabricated — a field that cannot be recovered stays
// empty.
func Extract(lines []string) Fields {
	var fields Fields

	for _, spec := range fieldSpecs {
		if value, ok := extractField(lines, spec); ok {
			fields.set(spec.key, value)
		}
	}

	if fields.IDNumberPrimary == "" {
		if run, ok := fallbackPrimaryID(lines); ok {
			fields.IDNumberPrimary = run
		}
	}

	return fields
}

func extractField(lines []string, spec fieldSpec) (string, bool) {
	for i, line := range lines {
		idx, label := labelIndex(line, spec.labels)
		if idx < 0 {
			continue
		}

		candidate, next := candidateFor(lines, i, idx, label, spec)
		if candidate == "" {
			continue
		}

		if spec.followLines > 0 {
			candidate = appendFollowing(lines, next, candidate, spec)
		}

		if value, ok := spec.validate(candidate); ok {
			return value, true
		}
	}
	return "", false
}

// candidateFor applies the value-location policy: remainder of the label
// line when it carries one, else the following line when that line is not
// itself another field's label. It also returns the index of the line after
// the candidate, for multi-line capture.
func candidateFor(lines []string, i, labelIdx int, label string, spec fieldSpec) (string, int) {
	remainder := lines[i][labelIdx+len(label):]
	remainder = strings.TrimLeft(remainder, " :.-")
	remainder = strings.TrimSpace(remainder)
	if remainder != "" {
		return remainder, i + 1
	}

	if i+1 < len(lines) && !looksLikeLabel(lines[i+1], spec.key) {
		return lines[i+1], i + 2
	}
	return "", i + 1
}

// appendFollowing extends a multi-line value with up to spec.followLines
// additional lines, stopping early at any line that anchors another field.
func appendFollowing(lines []string, from int, value string, spec fieldSpec) string {
	taken := 0
	for j := from; j < len(lines) && taken < spec.followLines; j++ {
		if looksLikeLabel(lines[j], spec.key) {
			break
		}
		value += " " + lines[j]
		taken++
	}
	return value
}

// fallbackPrimaryID scans for a long digit run near a card-identifier
// keyword when no labeled 16-digit candidate validated. OCR frequently
// drops or merges digits of the FCN, so a run of at least 12 adjacent to a
// keyword is accepted as-is.
func fallbackPrimaryID(lines []string) (string, bool) {
	for i, line := range lines {
		if !containsIDKeyword(line) {
			continue
		}
		for _, candidate := range []string{line, lineAt(lines, i+1)} {
			if run := longestDigitRun(candidate); len(run) >= 12 {
				return run, true
			}
		}
	}
	return "", false
}

func containsIDKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range idKeywords {
		if isShortASCII(kw) {
			if wordIndex(lower, kw) >= 0 {
				return true
			}
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func lineAt(lines []string, i int) string {
	if i >= 0 && i < len(lines) {
		return lines[i]
	}
	return ""
}
