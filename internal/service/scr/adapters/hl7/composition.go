package hl7

import (
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/fhir/model"
	"github.com/google/uuid"
)

// CompositionMapper maps the GP Summary document header into a Composition.
type CompositionMapper struct{}

func NewCompositionMapper() *CompositionMapper {
	return &CompositionMapper{}
}

func (m *CompositionMapper) Map(document *Node) ([]model.Resource, error) {
	var resources []model.Resource
	for _, node := range NodesAt(document, gpSummaryPath) {
		summaryID, err := ValueAt(node, "./id/@root")
		if err != nil {
			return nil, err
		}
		code, err := ValueAt(node, "./code/@code")
		if err != nil {
			return nil, err
		}
		display, _ := OptionalValueAt(node, "./code/@displayName")

		composition := &model.Composition{
			ResourceType: model.TypeComposition,
			ID:           uuid.NewString(),
			Identifier:   &model.Identifier{Value: summaryID},
			Status:       "final",
			Type: &model.CodeableConcept{
				Coding: []model.Coding{{System: SnomedSystem, Code: code, Display: display}},
			},
		}
		if effectiveTime, ok := OptionalValueAt(node, "./effectiveTime/@value"); ok {
			date, err := parseFhirInstant(effectiveTime)
			if err != nil {
				return nil, err
			}
			composition.Date = date
		}
		resources = append(resources, composition)
	}
	return resources, nil
}
