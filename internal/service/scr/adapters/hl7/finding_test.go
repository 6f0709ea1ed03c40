package hl7

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/fhir/model"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/exceptions"
)

// wrapFindings embeds finding fragments at the position the extract response
// carries them.
func wrapFindings(findings ...string) string {
	var components string
	for _, finding := range findings {
		components += "<component>" + finding + "</component>"
	}
	return fmt.Sprintf(`<QUPC_IN210000UK04>
		<ControlActEvent>
			<subject>
				<GPSummary>
					<pertinentInformation2>
						<pertinentCREType>%s</pertinentCREType>
					</pertinentInformation2>
				</GPSummary>
			</subject>
		</ControlActEvent>
	</QUPC_IN210000UK04>`, components)
}

func finding(statusCode, effectiveTime, participants string) string {
	return fmt.Sprintf(`<UKCT_MT144043UK02.Finding>
		<id root="0F582D91-8F89-11EA-8B2D-B741F13EFC47"/>
		<code code="1240601000000108" displayName="High priority for vaccination"/>
		<statusCode code="%s"/>
		<effectiveTime>%s</effectiveTime>
		%s</UKCT_MT144043UK02.Finding>`, statusCode, effectiveTime, participants)
}

const sdsAuthor = `<author>
	<time value="20200805102000"/>
	<UKCT_MT160018UK01.AgentPersonSDS>
		<id extension="100000000001"/>
		<agentPersonSDS><id extension="200000000001"/></agentPersonSDS>
	</UKCT_MT160018UK01.AgentPersonSDS>
</author>`

const relatedInformant = `<informant>
	<time value="20200805102000"/>
	<UKCT_MT144035UK01.RelatedPerson>
		<code code="125679009" displayName="Friend"/>
		<relatedPerson><name><family>Smith</family><given>Jane</given></name></relatedPerson>
	</UKCT_MT144035UK01.RelatedPerson>
</informant>`

const agentPerformer = `<performer>
	<time value="20200805102000"/>
	<modeCode code="ELECTRONIC"/>
	<UKCT_MT160018UK01.AgentPerson>
		<agentPerson><name><family>Jones</family><given>Mark</given></name></agentPerson>
		<representedOrganization><id extension="A1001"/><name>Test Practice</name></representedOrganization>
	</UKCT_MT160018UK01.AgentPerson>
</performer>`

func mapFindings(t *testing.T, document string) []model.Resource {
	t.Helper()
	parsed, err := Parse(document)
	require.NoError(t, err)
	resources, err := NewFindingMapper(NewParticipantMapper()).Map(parsed)
	require.NoError(t, err)
	return resources
}

func resourcesOfType(resources []model.Resource, resourceType string) []model.Resource {
	var matched []model.Resource
	for _, resource := range resources {
		if resource.GetResourceType() == resourceType {
			matched = append(matched, resource)
		}
	}
	return matched
}

func TestFindingMapperObservation(t *testing.T) {
	resources := mapFindings(t, wrapFindings(finding("completed", `<low value="20200805"/><high value="20200806"/>`, "")))
	require.Len(t, resources, 1)

	observation := resources[0].(*model.Observation)
	assert.NotEmpty(t, observation.ID)
	require.Len(t, observation.Identifier, 1)
	assert.Equal(t, "0F582D91-8F89-11EA-8B2D-B741F13EFC47", observation.Identifier[0].Value)
	assert.Equal(t, "final", observation.Status)
	require.NotNil(t, observation.Code)
	assert.Equal(t, SnomedSystem, observation.Code.Coding[0].System)
	assert.Equal(t, "1240601000000108", observation.Code.Coding[0].Code)
	assert.Equal(t, "High priority for vaccination", observation.Code.Coding[0].Display)

	require.NotNil(t, observation.EffectivePeriod)
	assert.Equal(t, "2020-08-05T00:00:00Z", observation.EffectivePeriod.Start)
	assert.Equal(t, "2020-08-06T00:00:00Z", observation.EffectivePeriod.End)
	assert.Empty(t, observation.EffectiveDateTime)
	assert.Nil(t, observation.Encounter, "no participants, no encounter")
}

func TestFindingMapperStatusTable(t *testing.T) {
	for statusCode, want := range map[string]string{
		"normal":    "final",
		"active":    "final",
		"completed": "final",
		"nullified": "entered-in-error",
	} {
		resources := mapFindings(t, wrapFindings(finding(statusCode, `<centre value="20200805"/>`, "")))
		require.Len(t, resources, 1, "status code %q", statusCode)
		assert.Equal(t, want, resources[0].(*model.Observation).Status, "status code %q", statusCode)
	}

	parsed, err := Parse(wrapFindings(finding("suspended", `<centre value="20200805"/>`, "")))
	require.NoError(t, err)
	_, err = NewFindingMapper(NewParticipantMapper()).Map(parsed)
	assert.ErrorAs(t, err, &exceptions.MappingError{})
}

func TestFindingMapperEffectiveTime(t *testing.T) {
	t.Run("a single bound still forms a period", func(t *testing.T) {
		resources := mapFindings(t, wrapFindings(finding("completed", `<low value="20200805102000"/>`, "")))
		observation := resources[0].(*model.Observation)
		require.NotNil(t, observation.EffectivePeriod)
		assert.Equal(t, "2020-08-05T10:20:00Z", observation.EffectivePeriod.Start)
		assert.Empty(t, observation.EffectivePeriod.End)
	})

	t.Run("centre maps to the instant", func(t *testing.T) {
		resources := mapFindings(t, wrapFindings(finding("completed", `<centre value="20200805102000"/>`, "")))
		observation := resources[0].(*model.Observation)
		assert.Nil(t, observation.EffectivePeriod)
		assert.Equal(t, "2020-08-05T10:20:00Z", observation.EffectiveDateTime)
	})

	t.Run("absent effective time maps to nothing", func(t *testing.T) {
		resources := mapFindings(t, wrapFindings(finding("completed", "", "")))
		observation := resources[0].(*model.Observation)
		assert.Nil(t, observation.EffectivePeriod)
		assert.Empty(t, observation.EffectiveDateTime)
	})

	t.Run("unparseable bound is an error", func(t *testing.T) {
		parsed, err := Parse(wrapFindings(finding("completed", `<low value="2020"/>`, "")))
		require.NoError(t, err)
		_, err = NewFindingMapper(NewParticipantMapper()).Map(parsed)
		assert.ErrorAs(t, err, &exceptions.UnsupportedDateError{})
	})
}

func TestFindingMapperEncounterSynthesis(t *testing.T) {
	resources := mapFindings(t, wrapFindings(finding("completed", `<centre value="20200805"/>`,
		sdsAuthor+relatedInformant+agentPerformer)))

	encounters := resourcesOfType(resources, model.TypeEncounter)
	require.Len(t, encounters, 1)
	encounter := encounters[0].(*model.Encounter)
	assert.Equal(t, "finished", encounter.Status)
	require.NotNil(t, encounter.Class)
	assert.Equal(t, "UNK", encounter.Class.Code)

	observation := resourcesOfType(resources, model.TypeObservation)[0].(*model.Observation)
	require.NotNil(t, observation.Encounter)
	assert.Equal(t, model.TypeEncounter+"/"+encounter.ID, observation.Encounter.Reference)

	// author SDS pair, informant related person, performer trio
	assert.Len(t, resourcesOfType(resources, model.TypePractitionerRole), 2)
	assert.Len(t, resourcesOfType(resources, model.TypePractitioner), 2)
	assert.Len(t, resourcesOfType(resources, model.TypeRelatedPerson), 1)
	assert.Len(t, resourcesOfType(resources, model.TypeOrganization), 1)

	require.Len(t, encounter.Participant, 3)
	byType := map[string]model.EncounterParticipant{}
	for _, participant := range encounter.Participant {
		require.Len(t, participant.Type, 1)
		byType[participant.Type[0].Coding[0].Code] = participant
	}

	author, ok := byType["AUT"]
	require.True(t, ok)
	assert.Contains(t, author.Individual.Reference, model.TypePractitionerRole+"/")
	assert.Equal(t, "2020-08-05T10:20:00Z", author.Period.Start)
	assert.Empty(t, author.Extension)

	informant, ok := byType["INF"]
	require.True(t, ok)
	assert.Contains(t, informant.Individual.Reference, model.TypeRelatedPerson+"/")

	performer, ok := byType["PRF"]
	require.True(t, ok)
	assert.Contains(t, performer.Individual.Reference, model.TypePractitionerRole+"/")
	require.Len(t, performer.Extension, 1)
	require.NotNil(t, performer.Extension[0].ValueCodeableConcept)
	assert.Equal(t, "ELECTRONIC", performer.Extension[0].ValueCodeableConcept.Coding[0].Code)
}

func TestFindingMapperParticipantFiltering(t *testing.T) {
	t.Run("a related person cannot author", func(t *testing.T) {
		relatedAuthor := `<author>
			<time value="20200805102000"/>
			<UKCT_MT144035UK01.RelatedPerson>
				<code code="125679009" displayName="Friend"/>
			</UKCT_MT144035UK01.RelatedPerson>
		</author>`
		resources := mapFindings(t, wrapFindings(finding("completed", `<centre value="20200805"/>`, relatedAuthor)))

		// the person is still produced, the participation entry is not
		assert.Len(t, resourcesOfType(resources, model.TypeRelatedPerson), 1)
		encounter := resourcesOfType(resources, model.TypeEncounter)[0].(*model.Encounter)
		assert.Empty(t, encounter.Participant)
	})

	t.Run("a practitioner role may inform", func(t *testing.T) {
		sdsInformant := `<informant>
			<time value="20200805102000"/>
			<UKCT_MT160018UK01.AgentPersonSDS>
				<id extension="100000000001"/>
				<agentPersonSDS><id extension="200000000001"/></agentPersonSDS>
			</UKCT_MT160018UK01.AgentPersonSDS>
		</informant>`
		resources := mapFindings(t, wrapFindings(finding("completed", `<centre value="20200805"/>`, sdsInformant)))

		encounter := resourcesOfType(resources, model.TypeEncounter)[0].(*model.Encounter)
		require.Len(t, encounter.Participant, 1)
		assert.Equal(t, "INF", encounter.Participant[0].Type[0].Coding[0].Code)
		assert.Contains(t, encounter.Participant[0].Individual.Reference, model.TypePractitionerRole+"/")
	})
}

func TestFindingMapperUnknownModeCode(t *testing.T) {
	badPerformer := `<performer>
		<time value="20200805102000"/>
		<modeCode code="TELEPATHY"/>
		<UKCT_MT160018UK01.AgentPerson>
			<agentPerson><name><family>Jones</family></name></agentPerson>
		</UKCT_MT160018UK01.AgentPerson>
	</performer>`
	parsed, err := Parse(wrapFindings(finding("completed", `<centre value="20200805"/>`, badPerformer)))
	require.NoError(t, err)
	_, err = NewFindingMapper(NewParticipantMapper()).Map(parsed)
	assert.ErrorAs(t, err, &exceptions.MappingError{})
}

func TestFindingMapperMultipleFindings(t *testing.T) {
	resources := mapFindings(t, wrapFindings(
		finding("completed", `<centre value="20200805"/>`, ""),
		finding("nullified", `<centre value="20200806"/>`, ""),
	))
	observations := resourcesOfType(resources, model.TypeObservation)
	require.Len(t, observations, 2)
	assert.Equal(t, "final", observations[0].(*model.Observation).Status)
	assert.Equal(t, "entered-in-error", observations[1].(*model.Observation).Status)
}
