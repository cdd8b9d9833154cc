// Package extract recovers Fayda ID fields from bilingual OCR text.
package extract

// Canonical bilingual constants for token-normalized fields. Single-word
// recognizer output is unreliable enough that free-text capture is never
// used for sex or nationality.
const (
	SexMale              = "ወንድ | Male"
	SexFemale            = "ሴት | Female"
	NationalityEthiopian = "ኢትዮጵያዊ | Ethiopian"
)

// MinRecoveredFields is the threshold below which a caller may decide to
// substitute a sample record. The extractor itself never does.
const MinRecoveredFields = 3

// Fields is the fixed schema of identity attributes. A zero value is a
// complete, valid "nothing recovered" result: every attribute is a string
// and empty means not found.
type Fields struct {
	FullName          string
	DateOfBirth       string
	Sex               string
	ExpiryDate        string
	IssueDate         string
	IDNumberPrimary   string
	IDNumberSecondary string
	SerialNumber      string
	Nationality       string
	Address           string
	Phone             string
}

// Map returns the schema as a string map. Every key is always present;
// unrecovered fields map to the empty string.
func (f Fields) Map() map[string]string {
	return map[string]string{
		"full_name":           f.FullName,
		"date_of_birth":       f.DateOfBirth,
		"sex":                 f.Sex,
		"expiry_date":         f.ExpiryDate,
		"issue_date":          f.IssueDate,
		"id_number_primary":   f.IDNumberPrimary,
		"id_number_secondary": f.IDNumberSecondary,
		"serial_number":       f.SerialNumber,
		"nationality":         f.Nationality,
		"address":             f.Address,
		"phone":               f.Phone,
	}
}

// Recovered counts non-empty fields.
func (f Fields) Recovered() int {
	n := 0
	for _, v := range f.Map() {
		if v != "" {
			n++
		}
	}
	return n
}

func (f *Fields) set(key, value string) {
	switch key {
	case "full_name":
		f.FullName = value
	case "date_of_birth":
		f.DateOfBirth = value
	case "sex":
		f.Sex = value
	case "expiry_date":
		f.ExpiryDate = value
	case "issue_date":
		f.IssueDate = value
	case "id_number_primary":
		f.IDNumberPrimary = value
	case "id_number_secondary":
		f.IDNumberSecondary = value
	case "serial_number":
		f.SerialNumber = value
	case "nationality":
		f.Nationality = value
	case "address":
		f.Address = value
	case "phone":
		f.Phone = value
	}
}

// SampleFields returns an obviously synthetic record for callers that opt in
// to placeholder substitution when extraction recovers too little. The values
// must never be mistaken for real identity data.
func SampleFields() Fields {
	return Fields{
		FullName:          "ናሙና ስም | SAMPLE NAME",
		DateOfBirth:       "01/01/1990",
		Sex:               SexMale,
		ExpiryDate:        "01/01/2030",
		IssueDate:         "01/01/2022",
		IDNumberPrimary:   "0000000000000000",
		IDNumberSecondary: "000000000000",
		SerialNumber:      "SAMPLE-0000",
		Nationality:       NationalityEthiopian,
		Address:           "ናሙና አድራሻ | SAMPLE ADDRESS",
		Phone:             "0900000000",
	}
}
