// Package common holds the canonical GP Summary record: the fully resolved,
// flat representation that bridges the resource-graph side and the HL7v3
// wire side. It is built once by the fhir assembler and never mutated after.
package common

// GpSummary denormalizes the five required entities of a submission bundle
// plus its envelope metadata. It owns no references back into the bundle.
type GpSummary struct {
	// Envelope, copied verbatim from the bundle.
	HeaderID        string
	HeaderTimeStamp string

	// Composition
	CompositionID   string
	CompositionDate string
	CategoryCode    string
	CategoryDisplay string
	Title           string

	// PractitionerRole
	RoleProfileID string
	SDSJobRoleCode string

	// Organization
	OrganizationODSCode  string
	OrganizationName     string
	OrganizationTypeCode string

	// Practitioner
	SDSUserID          string
	PractitionerFamily string
	PractitionerGiven  string

	// Patient
	PatientNHSNumber string

	// Sections
	Findings      []Finding
	Circumstances []Circumstance
}

// Finding is one entry of the findings section, all times already in HL7
// wire form.
type Finding struct {
	IDRoot              string
	CodeCode            string
	CodeDisplayName     string
	StatusCodeCode      string
	EffectiveTimeLow    string
	EffectiveTimeHigh   string
	EffectiveTimeCentre string
}

// Circumstance is one entry of the social or personal circumstances section.
type Circumstance struct {
	IDRoot              string
	CodeCode            string
	CodeDisplayName     string
	StatusCodeCode      string
	EffectiveTimeLow    string
	EffectiveTimeHigh   string
	EffectiveTimeCentre string
}
