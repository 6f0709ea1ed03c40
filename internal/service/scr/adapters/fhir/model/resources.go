package model

// Resource is the common behaviour of every entity in the resource graph.
type Resource interface {
	GetResourceType() string
	GetID() string
}

const (
	TypePatient          = "Patient"
	TypePractitioner     = "Practitioner"
	TypePractitionerRole = "PractitionerRole"
	TypeOrganization     = "Organization"
	TypeRelatedPerson    = "RelatedPerson"
	TypeComposition      = "Composition"
	TypeEncounter        = "Encounter"
	TypeObservation      = "Observation"
)

type Patient struct {
	ResourceType string       `json:"resourceType"`
	ID           string       `json:"id,omitempty"`
	Identifier   []Identifier `json:"identifier,omitempty"`
	Name         []HumanName  `json:"name,omitempty"`
	Gender       string       `json:"gender,omitempty"`
	BirthDate    string       `json:"birthDate,omitempty"`
}

func (p *Patient) GetResourceType() string { return TypePatient }
func (p *Patient) GetID() string           { return p.ID }

type Practitioner struct {
	ResourceType string       `json:"resourceType"`
	ID           string       `json:"id,omitempty"`
	Identifier   []Identifier `json:"identifier,omitempty"`
	Name         []HumanName  `json:"name,omitempty"`
}

func (p *Practitioner) GetResourceType() string { return TypePractitioner }
func (p *Practitioner) GetID() string           { return p.ID }

type PractitionerRole struct {
	ResourceType string            `json:"resourceType"`
	ID           string            `json:"id,omitempty"`
	Identifier   []Identifier      `json:"identifier,omitempty"`
	Practitioner *Reference        `json:"practitioner,omitempty"`
	Organization *Reference        `json:"organization,omitempty"`
	Code         []CodeableConcept `json:"code,omitempty"`
}

func (p *PractitionerRole) GetResourceType() string { return TypePractitionerRole }
func (p *PractitionerRole) GetID() string           { return p.ID }

type Organization struct {
	ResourceType string       `json:"resourceType"`
	ID           string       `json:"id,omitempty"`
	Identifier   []Identifier `json:"identifier,omitempty"`
	Type         []CodeableConcept `json:"type,omitempty"`
	Name         string       `json:"name,omitempty"`
}

func (o *Organization) GetResourceType() string { return TypeOrganization }
func (o *Organization) GetID() string           { return o.ID }

type RelatedPerson struct {
	ResourceType string            `json:"resourceType"`
	ID           string            `json:"id,omitempty"`
	Patient      *Reference        `json:"patient,omitempty"`
	Relationship []CodeableConcept `json:"relationship,omitempty"`
	Name         []HumanName       `json:"name,omitempty"`
}

func (r *RelatedPerson) GetResourceType() string { return TypeRelatedPerson }
func (r *RelatedPerson) GetID() string           { return r.ID }

type Composition struct {
	ResourceType string               `json:"resourceType"`
	ID           string               `json:"id,omitempty"`
	Identifier   *Identifier          `json:"identifier,omitempty"`
	Status       string               `json:"status,omitempty"`
	Type         *CodeableConcept     `json:"type,omitempty"`
	Category     []CodeableConcept    `json:"category,omitempty"`
	Subject      *Reference           `json:"subject,omitempty"`
	Encounter    *Reference           `json:"encounter,omitempty"`
	Date         string               `json:"date,omitempty"`
	Author       []Reference          `json:"author,omitempty"`
	Title        string               `json:"title,omitempty"`
	Section      []CompositionSection `json:"section,omitempty"`
}

type CompositionSection struct {
	Title string      `json:"title,omitempty"`
	Code  *CodeableConcept `json:"code,omitempty"`
	Entry []Reference `json:"entry,omitempty"`
}

func (c *Composition) GetResourceType() string { return TypeComposition }
func (c *Composition) GetID() string           { return c.ID }

type Encounter struct {
	ResourceType string                 `json:"resourceType"`
	ID           string                 `json:"id,omitempty"`
	Identifier   []Identifier           `json:"identifier,omitempty"`
	Status       string                 `json:"status,omitempty"`
	Class        *Coding                `json:"class,omitempty"`
	Type         []CodeableConcept      `json:"type,omitempty"`
	Subject      *Reference             `json:"subject,omitempty"`
	Participant  []EncounterParticipant `json:"participant,omitempty"`
	Period       *Period                `json:"period,omitempty"`
}

type EncounterParticipant struct {
	Extension  []Extension       `json:"extension,omitempty"`
	Type       []CodeableConcept `json:"type,omitempty"`
	Period     *Period           `json:"period,omitempty"`
	Individual *Reference        `json:"individual,omitempty"`
}

func (e *Encounter) GetResourceType() string { return TypeEncounter }
func (e *Encounter) GetID() string           { return e.ID }

type Observation struct {
	ResourceType      string            `json:"resourceType"`
	ID                string            `json:"id,omitempty"`
	Identifier        []Identifier      `json:"identifier,omitempty"`
	Status            string            `json:"status,omitempty"`
	Category          []CodeableConcept `json:"category,omitempty"`
	Code              *CodeableConcept  `json:"code,omitempty"`
	Subject           *Reference        `json:"subject,omitempty"`
	Encounter         *Reference        `json:"encounter,omitempty"`
	EffectivePeriod   *Period           `json:"effectivePeriod,omitempty"`
	EffectiveDateTime string            `json:"effectiveDateTime,omitempty"`
}

func (o *Observation) GetResourceType() string { return TypeObservation }
func (o *Observation) GetID() string           { return o.ID }
