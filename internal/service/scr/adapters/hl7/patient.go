package hl7

import (
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/fhir/model"
	"github.com/google/uuid"
)

const (
	patientBasePath      = gpSummaryPath + "/recordTarget/patient"
	patientNHSNumberPath = "./id/@extension"

	nhsNumberSystem = "https://fhir.nhs.uk/Id/nhs-number"
)

// PatientMapper maps the record target into a Patient.
type PatientMapper struct{}

func NewPatientMapper() *PatientMapper {
	return &PatientMapper{}
}

func (m *PatientMapper) Map(document *Node) ([]model.Resource, error) {
	var resources []model.Resource
	for _, node := range NodesAt(document, patientBasePath) {
		nhsNumber, err := ValueAt(node, patientNHSNumberPath)
		if err != nil {
			return nil, err
		}
		resources = append(resources, &model.Patient{
			ResourceType: model.TypePatient,
			ID:           uuid.NewString(),
			Identifier:   []model.Identifier{{System: nhsNumberSystem, Value: nhsNumber}},
		})
	}
	return resources, nil
}
