package fhir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/fhir/model"
)

func TestResolve(t *testing.T) {
	patient := &model.Patient{ResourceType: model.TypePatient, ID: "patient-1"}
	encounter := &model.Encounter{ResourceType: model.TypeEncounter, ID: "5e8b2f1c-0000-4000-8000-000000000001"}
	bundle := &model.Bundle{
		ResourceType: "Bundle",
		Entry: []model.Entry{
			{FullURL: "urn:uuid:5e8b2f1c-0000-4000-8000-000000000001", Resource: encounter},
			{Resource: patient},
		},
	}

	t.Run("by type and id", func(t *testing.T) {
		assert.Equal(t, patient, Resolve(bundle, model.Reference{Reference: "Patient/patient-1"}))
	})

	t.Run("by full url", func(t *testing.T) {
		assert.Equal(t, encounter, Resolve(bundle, model.Reference{
			Reference: "urn:uuid:5e8b2f1c-0000-4000-8000-000000000001",
		}))
	})

	t.Run("unresolved", func(t *testing.T) {
		assert.Nil(t, Resolve(bundle, model.Reference{Reference: "Patient/absent"}))
		assert.Nil(t, Resolve(bundle, model.Reference{}))
	})
}

func TestParseBundleRoundTrip(t *testing.T) {
	payload := `{
		"resourceType": "Bundle",
		"identifier": {"value": "4d3a4242-8f89-11ea-8b2d-b741f13efc47"},
		"type": "document",
		"timestamp": "2020-08-05T10:20:00Z",
		"entry": [
			{"fullUrl": "urn:uuid:patient-1", "resource": {
				"resourceType": "Patient",
				"id": "patient-1",
				"identifier": [{"system": "https://fhir.nhs.uk/Id/nhs-number", "value": "9999999999"}]
			}},
			{"resource": {
				"resourceType": "Observation",
				"id": "obs-1",
				"status": "final",
				"effectivePeriod": {"start": "2020-08-05T10:20:00Z"}
			}}
		]
	}`

	bundle, err := model.ParseBundle([]byte(payload))
	require.NoError(t, err)
	require.Len(t, bundle.Entry, 2)

	patient, ok := bundle.Entry[0].Resource.(*model.Patient)
	require.True(t, ok)
	assert.Equal(t, "9999999999", patient.Identifier[0].Value)

	observation, ok := bundle.Entry[1].Resource.(*model.Observation)
	require.True(t, ok)
	require.NotNil(t, observation.EffectivePeriod)
	assert.Equal(t, "2020-08-05T10:20:00Z", observation.EffectivePeriod.Start)
}

func TestParseBundleRejections(t *testing.T) {
	t.Run("unknown entry type fails loudly", func(t *testing.T) {
		_, err := model.ParseBundle([]byte(`{
			"resourceType": "Bundle",
			"entry": [{"resource": {"resourceType": "MedicationRequest"}}]
		}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MedicationRequest")
	})

	t.Run("non bundle root", func(t *testing.T) {
		_, err := model.ParseBundle([]byte(`{"resourceType": "Patient"}`))
		assert.Error(t, err)
	})
}
