package fhir

import (
	"time"

	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/exceptions"
)

const (
	hl7DateTime = "20060102150405"
	hl7Date     = "20060102"
)

// FormatToHl7 converts a FHIR instant or date into the fixed-width HL7 wire
// form: 14 digits for date-times, 8 for dates.
func FormatToHl7(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC().Format(hl7DateTime), nil
		}
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t.Format(hl7Date), nil
	}
	return "", exceptions.NewMappingError("unsupported timestamp %q", value)
}
