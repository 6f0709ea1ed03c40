package hl7

import (
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/fhir/model"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/exceptions"
	"github.com/google/uuid"
)

const (
	findingBasePath = gpSummaryPath +
		"/pertinentInformation2/pertinentCREType/component/UKCT_MT144043UK02.Finding"

	findingIDPath              = "./id/@root"
	findingCodePath            = "./code/@code"
	findingCodeDisplayPath     = "./code/@displayName"
	findingStatusCodePath      = "./statusCode/@code"
	findingEffectiveLowPath    = "./effectiveTime/low/@value"
	findingEffectiveHighPath   = "./effectiveTime/high/@value"
	findingEffectiveCentrePath = "./effectiveTime/centre/@value"

	findingAuthorPath    = "./author"
	findingInformantPath = "./informant"
	findingPerformerPath = "./performer"

	participantTimePath   = "./time/@value"
	performerModeCodePath = "./modeCode/@code"
)

// FindingMapper maps every finding subtree into an Observation, synthesizing
// an Encounter for the people involved in it when any are recorded.
type FindingMapper struct {
	participants *ParticipantMapper
}

func NewFindingMapper(participants *ParticipantMapper) *FindingMapper {
	return &FindingMapper{participants: participants}
}

func (m *FindingMapper) Map(document *Node) ([]model.Resource, error) {
	var resources []model.Resource
	for _, node := range NodesAt(document, findingBasePath) {
		observation, err := m.mapObservation(node)
		if err != nil {
			return nil, err
		}
		resources = append(resources, observation)

		related, err := m.mapEncounter(node, observation)
		if err != nil {
			return nil, err
		}
		resources = append(resources, related...)
	}
	return resources, nil
}

func (m *FindingMapper) mapObservation(node *Node) (*model.Observation, error) {
	findingID, err := ValueAt(node, findingIDPath)
	if err != nil {
		return nil, err
	}
	code, err := ValueAt(node, findingCodePath)
	if err != nil {
		return nil, err
	}
	display, err := ValueAt(node, findingCodeDisplayPath)
	if err != nil {
		return nil, err
	}
	statusCode, err := ValueAt(node, findingStatusCodePath)
	if err != nil {
		return nil, err
	}
	status, err := observationStatus(statusCode)
	if err != nil {
		return nil, err
	}

	observation := &model.Observation{
		ResourceType: model.TypeObservation,
		ID:           uuid.NewString(),
		Identifier:   []model.Identifier{{Value: findingID}},
		Status:       status,
		Code: &model.CodeableConcept{
			Coding: []model.Coding{{System: SnomedSystem, Code: code, Display: display}},
		},
	}
	if err := m.mapEffectiveTime(node, observation); err != nil {
		return nil, err
	}
	return observation, nil
}

// mapEffectiveTime applies the effective-time policy: a period whenever
// either bound is present, otherwise the centre instant.
func (m *FindingMapper) mapEffectiveTime(node *Node, observation *model.Observation) error {
	low, lowOK := OptionalValueAt(node, findingEffectiveLowPath)
	high, highOK := OptionalValueAt(node, findingEffectiveHighPath)
	centre, centreOK := OptionalValueAt(node, findingEffectiveCentrePath)

	var err error
	if lowOK || highOK {
		period := &model.Period{}
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
		observation.EffectivePeriod = period
		return nil
	}
	if centreOK {
		if observation.EffectiveDateTime, err = parseFhirInstant(centre); err != nil {
			return err
		}
	}
	return nil
}

// mapEncounter synthesizes an encounter only when the finding records an
// author, an informant or at least one performer. A finding with none of
// these stays a standalone observation.
func (m *FindingMapper) mapEncounter(finding *Node, observation *model.Observation) ([]model.Resource, error) {
	author, authorOK := OptionalNodeAt(finding, findingAuthorPath)
	informant, informantOK := OptionalNodeAt(finding, findingInformantPath)
	performers := NodesAt(finding, findingPerformerPath)

	if !authorOK && !informantOK && len(performers) == 0 {
		return nil, nil
	}

	encounter := &model.Encounter{
		ResourceType: model.TypeEncounter,
		ID:           uuid.NewString(),
		Status:       "finished",
		Class:        &model.Coding{System: encounterClassSystem, Code: "UNK", Display: "Unknown"},
	}

	var resources []model.Resource
	for _, performer := range performers {
		produced, err := m.mapPerformer(encounter, performer)
		if err != nil {
			return nil, err
		}
		resources = append(resources, produced...)
	}
	if authorOK {
		produced, err := m.mapAuthor(encounter, author)
		if err != nil {
			return nil, err
		}
		resources = append(resources, produced...)
	}
	if informantOK {
		produced, err := m.mapInformant(encounter, informant)
		if err != nil {
			return nil, err
		}
		resources = append(resources, produced...)
	}

	observation.Encounter = &model.Reference{Reference: model.TypeEncounter + "/" + encounter.ID}
	return append(resources, encounter), nil
}

// Only practitioner roles may perform. Performer participants additionally
// carry the mode-code extension resolved through the side lookup table.
func (m *FindingMapper) mapPerformer(encounter *model.Encounter, performer *Node) ([]model.Resource, error) {
	produced, start, err := m.mapParticipantEntities(performer)
	if err != nil {
		return nil, err
	}
	modeCode, err := ValueAt(performer, performerModeCodePath)
	if err != nil {
		return nil, err
	}
	extension, err := modeCodeExtension(modeCode)
	if err != nil {
		return nil, err
	}
	for _, resource := range produced {
		if resource.GetResourceType() != model.TypePractitionerRole {
			continue
		}
		encounter.Participant = append(encounter.Participant, model.EncounterParticipant{
			Extension:  []model.Extension{extension},
			Type:       []model.CodeableConcept{participationPerformer},
			Period:     &model.Period{Start: start},
			Individual: &model.Reference{Reference: resource.GetResourceType() + "/" + resource.GetID()},
		})
	}
	return produced, nil
}

// Only practitioner roles may author.
func (m *FindingMapper) mapAuthor(encounter *model.Encounter, author *Node) ([]model.Resource, error) {
	produced, start, err := m.mapParticipantEntities(author)
	if err != nil {
		return nil, err
	}
	for _, resource := range produced {
		if resource.GetResourceType() != model.TypePractitionerRole {
			continue
		}
		encounter.Participant = append(encounter.Participant, model.EncounterParticipant{
			Type:       []model.CodeableConcept{participationAuthor},
			Period:     &model.Period{Start: start},
			Individual: &model.Reference{Reference: resource.GetResourceType() + "/" + resource.GetID()},
		})
	}
	return produced, nil
}

// Practitioner roles and related persons may inform; a related person can
// never author or perform.
func (m *FindingMapper) mapInformant(encounter *model.Encounter, informant *Node) ([]model.Resource, error) {
	produced, start, err := m.mapParticipantEntities(informant)
	if err != nil {
		return nil, err
	}
	for _, resource := range produced {
		resourceType := resource.GetResourceType()
		if resourceType != model.TypePractitionerRole && resourceType != model.TypeRelatedPerson {
			continue
		}
		encounter.Participant = append(encounter.Participant, model.EncounterParticipant{
			Type:       []model.CodeableConcept{participationInformant},
			Period:     &model.Period{Start: start},
			Individual: &model.Reference{Reference: resourceType + "/" + resource.GetID()},
		})
	}
	return produced, nil
}

// mapParticipantEntities runs the shared participant mapper over one
// participation subtree and parses its recorded time, which becomes the
// participant period start.
func (m *FindingMapper) mapParticipantEntities(node *Node) ([]model.Resource, string, error) {
	timeValue, err := ValueAt(node, participantTimePath)
	if err != nil {
		return nil, "", err
	}
	start, err := parseFhirInstant(timeValue)
	if err != nil {
		return nil, "", err
	}
	produced, err := m.participants.Map(node)
	if err != nil {
		return nil, "", err
	}
	return produced, start, nil
}

func observationStatus(statusCode string) (string, error) {
	switch statusCode {
	case "normal", "active", "completed":
		return "final", nil
	case "nullified":
		return "entered-in-error", nil
	default:
		return "", exceptions.NewMappingError("unsupported finding status code %q", statusCode)
	}
}
