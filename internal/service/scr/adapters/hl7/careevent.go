package hl7

import (
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/fhir/model"
	"github.com/google/uuid"
)

const (
	careEventBasePath = gpSummaryPath +
		"/pertinentInformation2/pertinentCREType/component/UKCT_MT144037UK01.CareEvent"
)

// CareEventMapper maps every care-event subtree into an Encounter.
type CareEventMapper struct{}

func NewCareEventMapper() *CareEventMapper {
	return &CareEventMapper{}
}

func (m *CareEventMapper) Map(document *Node) ([]model.Resource, error) {
	var resources []model.Resource
	for _, node := range NodesAt(document, careEventBasePath) {
		eventID, err := ValueAt(node, "./id/@root")
		if err != nil {
			return nil, err
		}
		code, err := ValueAt(node, "./code/@code")
		if err != nil {
			return nil, err
		}
		display, _ := OptionalValueAt(node, "./code/@displayName")

		encounter := &model.Encounter{
			ResourceType: model.TypeEncounter,
			ID:           uuid.NewString(),
			Identifier:   []model.Identifier{{Value: eventID}},
			Status:       "finished",
			Class:        &model.Coding{System: encounterClassSystem, Code: "UNK", Display: "Unknown"},
			Type: []model.CodeableConcept{{
				Coding: []model.Coding{{System: SnomedSystem, Code: code, Display: display}},
			}},
		}

		if err := m.mapPeriod(node, encounter); err != nil {
			return nil, err
		}
		resources = append(resources, encounter)
	}
	return resources, nil
}

func (m *CareEventMapper) mapPeriod(node *Node, encounter *model.Encounter) error {
	low, lowOK := OptionalValueAt(node, "./effectiveTime/low/@value")
	high, highOK := OptionalValueAt(node, "./effectiveTime/high/@value")
	centre, centreOK := OptionalValueAt(node, "./effectiveTime/centre/@value")

	var err error
	period := &model.Period{}
	switch {
	case lowOK || highOK:
		if lowOK {
			if period.Start, err = parseFhirInstant(low); err != nil {
				return err
			}
		}
		if highOK {
			if period.End, err = parseFhirInstant(high); err != nil {
				return err
			}
		}
	case centreOK:
		if period.Start, err = parseFhirInstant(centre); err != nil {
			return err
		}
	default:
		return nil
	}
	encounter.Period = period
	return nil
}
