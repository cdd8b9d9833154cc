package extract

import "strings"

// fieldSpec declares how one schema field is recovered: the label variants
// that anchor it, the validator that vets a candidate, and how many lines
// beyond the first a multi-line value may span.
type fieldSpec struct {
	key         string
	labels      []string
	validate    validator
	followLines int
}

// fieldSpecs is the single source of truth for extraction. One generic loop
// consumes this table; there are no per-field code paths.
var fieldSpecs = []fieldSpec{
	{
		key:      "full_name",
		labels:   []string{"ሙሉ ስም", "ስም", "full name", "name"},
		validate: validateFreeText,
	},
	{
		key:      "date_of_birth",
		labels:   []string{"የትውልድ ቀን", "ትውልድ", "date of birth", "birth", "dob"},
		validate: validateDate,
	},
	{
		key:      "sex",
		labels:   []string{"ጾታ", "sex", "gender"},
		validate: validateSex,
	},
	{
		key:      "expiry_date",
		labels:   []string{"የሚያበቃበት ቀን", "የሚያበቃበት", "date of expiry", "expiry", "expires"},
		validate: validateDate,
	},
	{
		key:      "issue_date",
		labels:   []string{"የተሰጠበት ቀን", "የተሰጠበት", "date of issue", "issue"},
		validate: validateDate,
	},
	{
		key:      "id_number_primary",
		labels:   []string{"ፋይዳ ቁጥር", "fayda number", "fcn", "fan"},
		validate: digitRunValidator(16),
	},
	{
		key:      "id_number_secondary",
		labels:   []string{"fin"},
		validate: digitRunValidator(12),
	},
	{
		key:      "serial_number",
		labels:   []string{"መለያ ቁጥር", "serial", "sn"},
		validate: validateFreeText,
	},
	{
		key:      "nationality",
		labels:   []string{"ዜግነት", "nationality"},
		validate: validateNationality,
	},
	{
		key:         "address",
		labels:      []string{"አድራሻ", "address", "ክልል", "region", "ክፍለ ከተማ", "subcity", "ወረዳ", "woreda"},
		validate:    validateFreeText,
		followLines: 4,
	},
	{
		key:      "phone",
		labels:   []string{"ስልክ", "phone", "mobile", "tel"},
		validate: digitRunValidator(10),
	},
}

// idKeywords anchor the fallback scan for the primary ID number when no
// labeled 16-digit run is found.
var idKeywords = []string{"ፋይዳ", "fcn", "fan", "fayda"}

// labelIndex finds the byte offset of the first matching label variant in
// line, or -1. Short all-ASCII tokens (FCN, FIN, SN, DOB) match only on word
// boundaries; everything else matches by case-insensitive containment.
func labelIndex(line string, labels []string) (int, string) {
	lower := strings.ToLower(line)
	for _, label := range labels {
		if isShortASCII(label) {
			if idx := wordIndex(lower, label); idx >= 0 {
				return idx, label
			}
			continue
		}
		if idx := strings.Index(lower, strings.ToLower(label)); idx >= 0 {
			return idx, label
		}
	}
	return -1, ""
}

func isShortASCII(label string) bool {
	if len(label) > 4 {
		return false
	}
	for i := 0; i < len(label); i++ {
		if label[i] >= 0x80 {
			return false
		}
	}
	return true
}

// wordIndex finds needle in haystack bounded by non-alphanumeric runes.
// Both arguments are expected lowercase.
func wordIndex(haystack, needle string) int {
	for from := 0; ; {
		idx := strings.Index(haystack[from:], needle)
		if idx < 0 {
			return -1
		}
		idx += from
		end := idx + len(needle)
		beforeOK := idx == 0 || !isAlnumByte(haystack[idx-1])
		afterOK := end == len(haystack) || !isAlnumByte(haystack[end])
		if beforeOK && afterOK {
			return idx
		}
		from = idx + 1
	}
}

func isAlnumByte(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

// looksLikeLabel reports whether line anchors any field other than exceptKey.
// It guards the next-line value policy against OCR output that merges two
// label-only lines.
func looksLikeLabel(line, exceptKey string) bool {
	for _, spec := range fieldSpecs {
		if spec.key == exceptKey {
			continue
		}
		if idx, _ := labelIndex(line, spec.labels); idx >= 0 {
			return true
		}
	}
	return false
}
