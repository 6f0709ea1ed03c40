package hl7

import (
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/fhir/model"
	"github.com/google/uuid"
)

const (
	sdsRoleProfileSystem = "https://fhir.nhs.uk/Id/sds-role-profile-id"
	sdsUserSystem        = "https://fhir.nhs.uk/Id/sds-user-id"
	odsOrganizationSystem = "https://fhir.nhs.uk/Id/ods-organization-code"

	agentPersonSDSPath = "./UKCT_MT160018UK01.AgentPersonSDS"
	agentPersonPath    = "./UKCT_MT160018UK01.AgentPerson"
	relatedPersonPath  = "./UKCT_MT144035UK01.RelatedPerson"
)

// ParticipantMapper maps one author/informant/performer subtree into the
// person and role entities behind it. It is shared by every mapper that
// attaches participants to an event; the caller decides which of the produced
// entities may fill which participation role.
type ParticipantMapper struct{}

func NewParticipantMapper() *ParticipantMapper {
	return &ParticipantMapper{}
}

func (m *ParticipantMapper) Map(participant *Node) ([]model.Resource, error) {
	if agent, ok := OptionalNodeAt(participant, agentPersonSDSPath); ok {
		return m.mapAgentPersonSDS(agent)
	}
	if agent, ok := OptionalNodeAt(participant, agentPersonPath); ok {
		return m.mapAgentPerson(agent)
	}
	if related, ok := OptionalNodeAt(participant, relatedPersonPath); ok {
		return m.mapRelatedPerson(related)
	}
	return nil, nil
}

// mapAgentPersonSDS produces a PractitionerRole backed by a Practitioner,
// both identified through their SDS identifiers.
func (m *ParticipantMapper) mapAgentPersonSDS(agent *Node) ([]model.Resource, error) {
	roleProfileID, err := ValueAt(agent, "./id/@extension")
	if err != nil {
		return nil, err
	}
	sdsUserID, err := ValueAt(agent, "./agentPersonSDS/id/@extension")
	if err != nil {
		return nil, err
	}

	practitioner := &model.Practitioner{
		ResourceType: model.TypePractitioner,
		ID:           uuid.NewString(),
		Identifier:   []model.Identifier{{System: sdsUserSystem, Value: sdsUserID}},
	}
	role := &model.PractitionerRole{
		ResourceType: model.TypePractitionerRole,
		ID:           uuid.NewString(),
		Identifier:   []model.Identifier{{System: sdsRoleProfileSystem, Value: roleProfileID}},
		Practitioner: &model.Reference{Reference: model.TypePractitioner + "/" + practitioner.ID},
	}
	return []model.Resource{role, practitioner}, nil
}

// mapAgentPerson produces a PractitionerRole, a named Practitioner and the
// represented Organization.
func (m *ParticipantMapper) mapAgentPerson(agent *Node) ([]model.Resource, error) {
	practitioner := &model.Practitioner{
		ResourceType: model.TypePractitioner,
		ID:           uuid.NewString(),
	}
	if name, ok := humanNameAt(agent, "./agentPerson/name"); ok {
		practitioner.Name = []model.HumanName{name}
	}

	var resources []model.Resource
	role := &model.PractitionerRole{
		ResourceType: model.TypePractitionerRole,
		ID:           uuid.NewString(),
		Practitioner: &model.Reference{Reference: model.TypePractitioner + "/" + practitioner.ID},
	}

	if orgNode, ok := OptionalNodeAt(agent, "./representedOrganization"); ok {
		organization := &model.Organization{
			ResourceType: model.TypeOrganization,
			ID:           uuid.NewString(),
		}
		if odsCode, ok := OptionalValueAt(orgNode, "./id/@extension"); ok {
			organization.Identifier = []model.Identifier{{System: odsOrganizationSystem, Value: odsCode}}
		}
		if name, ok := OptionalValueAt(orgNode, "./name"); ok {
			organization.Name = name
		}
		role.Organization = &model.Reference{Reference: model.TypeOrganization + "/" + organization.ID}
		resources = append(resources, organization)
	}

	return append(resources, role, practitioner), nil
}

// mapRelatedPerson produces a RelatedPerson carrying the wire relationship
// coding.
func (m *ParticipantMapper) mapRelatedPerson(related *Node) ([]model.Resource, error) {
	relationshipCode, err := ValueAt(related, "./code/@code")
	if err != nil {
		return nil, err
	}
	relationshipDisplay, _ := OptionalValueAt(related, "./code/@displayName")

	person := &model.RelatedPerson{
		ResourceType: model.TypeRelatedPerson,
		ID:           uuid.NewString(),
		Relationship: []model.CodeableConcept{{
			Coding: []model.Coding{{
				System:  SnomedSystem,
				Code:    relationshipCode,
				Display: relationshipDisplay,
			}},
		}},
	}
	if name, ok := humanNameAt(related, "./relatedPerson/name"); ok {
		person.Name = []model.HumanName{name}
	}
	return []model.Resource{person}, nil
}

func humanNameAt(node *Node, path string) (model.HumanName, bool) {
	nameNode, ok := OptionalNodeAt(node, path)
	if !ok {
		return model.HumanName{}, false
	}
	name := model.HumanName{}
	if family, ok := OptionalValueAt(nameNode, "./family"); ok {
		name.Family = family
	}
	if given, ok := OptionalValueAt(nameNode, "./given"); ok {
		name.Given = []string{given}
	}
	return name, name.Family != "" || len(name.Given) > 0
}
