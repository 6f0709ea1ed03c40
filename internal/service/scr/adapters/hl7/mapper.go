package hl7

import (
	"time"

	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/fhir/model"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/exceptions"
)

const (
	// SnomedSystem is the code system of every clinical coding on the wire.
	SnomedSystem = "http://snomed.info/sct"

	gpSummaryPath = "//QUPC_IN210000UK04/ControlActEvent/subject//GPSummary"

	wireDateTime = "20060102150405"
	wireDate     = "20060102"
)

// Mapper maps every occurrence of one markup concept into resource-graph
// entities. Implementations are stateless and safe for concurrent use.
type Mapper interface {
	Map(document *Node) ([]model.Resource, error)
}

// Registry is the closed set of inbound mappers, keyed by concept name.
// Adding a concept means one new Mapper and one entry here.
type Registry struct {
	order   []string
	mappers map[string]Mapper
}

// NewRegistry wires the mapper set. The participant mapper is shared between
// the concepts that attach people to events.
func NewRegistry() *Registry {
	participants := NewParticipantMapper()

	r := &Registry{mappers: make(map[string]Mapper)}
	r.register("composition", NewCompositionMapper())
	r.register("patient", NewPatientMapper())
	r.register("careEvent", NewCareEventMapper())
	r.register("finding", NewFindingMapper(participants))
	return r
}

func (r *Registry) register(concept string, m Mapper) {
	r.order = append(r.order, concept)
	r.mappers[concept] = m
}

// Mapper returns the mapper registered for a concept.
func (r *Registry) Mapper(concept string) (Mapper, bool) {
	m, ok := r.mappers[concept]
	return m, ok
}

// MapAll runs every registered mapper over the document and merges their
// output in registration order.
func (r *Registry) MapAll(document *Node) ([]model.Resource, error) {
	var resources []model.Resource
	for _, concept := range r.order {
		mapped, err := r.mappers[concept].Map(document)
		if err != nil {
			return nil, err
		}
		resources = append(resources, mapped...)
	}
	return resources, nil
}

// ParseDate recognizes exactly the two fixed-width wire forms: 8-digit dates
// and 14-digit date-times. Anything else is an UnsupportedDateError.
func ParseDate(value string) (time.Time, error) {
	var layout string
	switch len(value) {
	case len(wireDate):
		layout = wireDate
	case len(wireDateTime):
		layout = wireDateTime
	default:
		return time.Time{}, exceptions.UnsupportedDateError{Value: value}
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, exceptions.UnsupportedDateError{Value: value}
	}
	return t, nil
}

// parseFhirInstant converts a wire timestamp into the resource graph's
// instant form.
func parseFhirInstant(value string) (string, error) {
	t, err := ParseDate(value)
	if err != nil {
		return "", err
	}
	return t.Format(time.RFC3339), nil
}
