package extract

import (
	"regexp"
	"strings"
)

// A validator inspects a candidate value and returns the value to store.
// It may narrow the candidate (dates, digit runs) or normalize it to a
// canonical constant (sex, nationality). ok=false rejects the candidate.
type validator func(candidate string) (value string, ok bool)

var (
	dayFirstDate  = regexp.MustCompile(`\d{1,2}[/.\-]\d{1,2}[/.\-]\d{4}`)
	yearFirstDate = regexp.MustCompile(`\d{4}[/.\-]\d{1,2}[/.\-]\d{1,2}`)
	separators    = strings.NewReplacer(" ", "", "-", "", "/", "", ".", "", "(", "", ")", "", "+", "")
	digitRunRe    = regexp.MustCompile(`\d+`)
)

// validateDate extracts the first date-shaped substring. Dates embed in noisy
// surrounding text, so the match, not the whole candidate, is the value.
func validateDate(candidate string) (string, bool) {
	if m := dayFirstDate.FindString(candidate); m != "" {
		return m, true
	}
	if m := yearFirstDate.FindString(candidate); m != "" {
		return m, true
	}
	return "", false
}

// digitRuns returns all contiguous digit runs after separator stripping.
func digitRuns(candidate string) []string {
	return digitRunRe.FindAllString(separators.Replace(candidate), -1)
}

func longestDigitRun(candidate string) string {
	longest := ""
	for _, run := range digitRuns(candidate) {
		if len(run) > len(longest) {
			longest = run
		}
	}
	return longest
}

// digitRunValidator accepts a candidate containing a digit run of exactly n
// once separators are stripped.
func digitRunValidator(n int) validator {
	return func(candidate string) (string, bool) {
		for _, run := range digitRuns(candidate) {
			if len(run) == n {
				return run, true
			}
		}
		return "", false
	}
}

func validateSex(candidate string) (string, bool) {
	lower := strings.ToLower(candidate)
	switch {
	case strings.Contains(candidate, "ወንድ") || strings.Contains(lower, "male") && !strings.Contains(lower, "female"):
		return SexMale, true
	case strings.Contains(candidate, "ሴት") || strings.Contains(lower, "female"):
		return SexFemale, true
	}
	return "", false
}

func validateNationality(candidate string) (string, bool) {
	lower := strings.ToLower(candidate)
	if strings.Contains(candidate, "ኢትዮጵያዊ") || strings.Contains(lower, "ethiopian") {
		return NationalityEthiopian, true
	}
	return "", false
}

// validateFreeText accepts any non-empty candidate as-is. Whitespace has
// already been normalized at the line level.
func validateFreeText(candidate string) (string, bool) {
	candidate = strings.TrimSpace(candidate)
	return candidate, candidate != ""
}
