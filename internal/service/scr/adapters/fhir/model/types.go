package model

// Shared FHIR datatypes used across the resource graph. Only the fields the
// adaptor actually reads or writes are modelled.

type Identifier struct {
	System string `json:"system,omitempty"`
	Value  string `json:"value,omitempty"`
}

type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// Reference is a lookup key into the bundle arena, never an embedded
// resource. Resolution happens at consumption time via fhir.Resolve.
type Reference struct {
	Reference string `json:"reference,omitempty"`
}

type Period struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

type HumanName struct {
	Use    string   `json:"use,omitempty"`
	Family string   `json:"family,omitempty"`
	Given  []string `json:"given,omitempty"`
	Prefix []string `json:"prefix,omitempty"`
}

type Extension struct {
	URL                  string           `json:"url"`
	ValueCodeableConcept *CodeableConcept `json:"valueCodeableConcept,omitempty"`
	ValueString          string           `json:"valueString,omitempty"`
}

// FirstCoding returns the first coding of a concept, or a zero Coding.
func (c *CodeableConcept) FirstCoding() Coding {
	if c == nil || len(c.Coding) == 0 {
		return Coding{}
	}
	return c.Coding[0]
}
