package model

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Bundle is the top-level resource-graph container exchanged with callers.
// Entries are unordered; relationships between them are expressed through
// references, not nesting.
type Bundle struct {
	ResourceType string      `json:"resourceType"`
	ID           string      `json:"id,omitempty"`
	Identifier   *Identifier `json:"identifier,omitempty"`
	Type         string      `json:"type,omitempty"`
	Timestamp    string      `json:"timestamp,omitempty"`
	Entry        []Entry     `json:"entry,omitempty"`
}

type Entry struct {
	FullURL  string   `json:"fullUrl,omitempty"`
	Resource Resource `json:"resource,omitempty"`
}

// UnmarshalJSON decodes the polymorphic entry resource by dispatching on its
// resourceType discriminator. Unknown types fail loudly rather than being
// silently dropped.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		FullURL  string          `json:"fullUrl"`
		Resource json.RawMessage `json:"resource"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.FullURL = raw.FullURL
	if len(raw.Resource) == 0 {
		return nil
	}

	var probe struct {
		ResourceType string `json:"resourceType"`
	}
	if err := json.Unmarshal(raw.Resource, &probe); err != nil {
		return err
	}

	var resource Resource
	switch probe.ResourceType {
	case TypePatient:
		resource = &Patient{}
	case TypePractitioner:
		resource = &Practitioner{}
	case TypePractitionerRole:
		resource = &PractitionerRole{}
	case TypeOrganization:
		resource = &Organization{}
	case TypeRelatedPerson:
		resource = &RelatedPerson{}
	case TypeComposition:
		resource = &Composition{}
	case TypeEncounter:
		resource = &Encounter{}
	case TypeObservation:
		resource = &Observation{}
	default:
		return fmt.Errorf("unsupported resource type %q in bundle entry", probe.ResourceType)
	}
	if err := json.Unmarshal(raw.Resource, resource); err != nil {
		return err
	}
	e.Resource = resource
	return nil
}

// ParseBundle decodes a resource-graph serialization.
func ParseBundle(data []byte) (*Bundle, error) {
	bundle := &Bundle{}
	if err := json.Unmarshal(data, bundle); err != nil {
		return nil, err
	}
	if bundle.ResourceType != "Bundle" {
		return nil, fmt.Errorf("expected a Bundle, got %q", bundle.ResourceType)
	}
	return bundle, nil
}

// Marshal encodes the bundle back to its wire form.
func (b *Bundle) Marshal() ([]byte, error) {
	return json.Marshal(b)
}
