package fhir

import (
	"github.com/Cleo-Systems/elevate-scr/internal/service/common"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/fhir/model"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/exceptions"
)

const nhsNumberSystem = "https://fhir.nhs.uk/Id/nhs-number"

// ParseGpSummary walks the submission bundle, locates exactly one instance of
// each required entity type and denormalizes them into the canonical record.
func ParseGpSummary(bundle *model.Bundle) (*common.GpSummary, error) {
	composition, err := DomainResource[*model.Composition](bundle, model.TypeComposition)
	if err != nil {
		return nil, err
	}
	role, err := DomainResource[*model.PractitionerRole](bundle, model.TypePractitionerRole)
	if err != nil {
		return nil, err
	}
	organization, err := DomainResource[*model.Organization](bundle, model.TypeOrganization)
	if err != nil {
		return nil, err
	}
	practitioner, err := DomainResource[*model.Practitioner](bundle, model.TypePractitioner)
	if err != nil {
		return nil, err
	}
	patient, err := DomainResource[*model.Patient](bundle, model.TypePatient)
	if err != nil {
		return nil, err
	}

	summary := &common.GpSummary{}
	if bundle.Identifier != nil {
		summary.HeaderID = bundle.Identifier.Value
	}
	summary.HeaderTimeStamp = bundle.Timestamp

	// Fields are disjoint across entity types; the fixed order only pins
	// which routine a diagnostic is attributed to.
	if err := mapComposition(summary, composition); err != nil {
		return nil, err
	}
	if err := mapPractitionerRole(summary, role); err != nil {
		return nil, err
	}
	if err := mapOrganization(summary, organization); err != nil {
		return nil, err
	}
	if err := mapPractitioner(summary, practitioner); err != nil {
		return nil, err
	}
	if err := mapPatient(summary, patient); err != nil {
		return nil, err
	}

	if err := mapSections(summary, bundle); err != nil {
		return nil, err
	}
	return summary, nil
}

func mapComposition(summary *common.GpSummary, c *model.Composition) error {
	summary.CompositionID = c.ID
	if c.Identifier != nil && c.Identifier.Value != "" {
		summary.CompositionID = c.Identifier.Value
	}
	date, err := FormatToHl7(c.Date)
	if err != nil {
		return err
	}
	summary.CompositionDate = date
	coding := c.Type.FirstCoding()
	summary.CategoryCode = coding.Code
	summary.CategoryDisplay = coding.Display
	summary.Title = c.Title
	return nil
}

func mapPractitionerRole(summary *common.GpSummary, r *model.PractitionerRole) error {
	if len(r.Identifier) > 0 {
		summary.RoleProfileID = r.Identifier[0].Value
	}
	if len(r.Code) > 0 {
		summary.SDSJobRoleCode = r.Code[0].FirstCoding().Code
	}
	return nil
}

func mapOrganization(summary *common.GpSummary, o *model.Organization) error {
	if len(o.Identifier) > 0 {
		summary.OrganizationODSCode = o.Identifier[0].Value
	}
	summary.OrganizationName = o.Name
	if len(o.Type) > 0 {
		summary.OrganizationTypeCode = o.Type[0].FirstCoding().Code
	}
	return nil
}

func mapPractitioner(summary *common.GpSummary, p *model.Practitioner) error {
	if len(p.Identifier) > 0 {
		summary.SDSUserID = p.Identifier[0].Value
	}
	if len(p.Name) > 0 {
		summary.PractitionerFamily = p.Name[0].Family
		if len(p.Name[0].Given) > 0 {
			summary.PractitionerGiven = p.Name[0].Given[0]
		}
	}
	return nil
}

func mapPatient(summary *common.GpSummary, p *model.Patient) error {
	for _, id := range p.Identifier {
		if id.System == nhsNumberSystem {
			summary.PatientNHSNumber = id.Value
			return nil
		}
	}
	return exceptions.NewMappingError("patient has no NHS number identifier")
}

// mapSections denormalizes every Observation into the findings or the social
// or personal circumstances section, depending on its category.
func mapSections(summary *common.GpSummary, bundle *model.Bundle) error {
	for _, res := range ResourcesOfType(bundle, model.TypeObservation) {
		obs := res.(*model.Observation)

		if obs.Encounter != nil && Resolve(bundle, *obs.Encounter) == nil {
			return exceptions.NewMappingError(
				"observation %s references an encounter that is not in the bundle", obs.ID)
		}

		entry, err := sectionEntry(obs)
		if err != nil {
			return err
		}
		if isSocialHistory(obs) {
			summary.Circumstances = append(summary.Circumstances, common.Circumstance(entry))
		} else {
			summary.Findings = append(summary.Findings, entry)
		}
	}
	return nil
}

func sectionEntry(obs *model.Observation) (common.Finding, error) {
	status, err := statusToWire(obs.Status)
	if err != nil {
		return common.Finding{}, err
	}

	entry := common.Finding{
		IDRoot:          obs.ID,
		StatusCodeCode:  status,
		CodeCode:        obs.Code.FirstCoding().Code,
		CodeDisplayName: obs.Code.FirstCoding().Display,
	}
	if len(obs.Identifier) > 0 {
		entry.IDRoot = obs.Identifier[0].Value
	}

	// A period wins over an instant whenever either bound is present.
	if obs.EffectivePeriod != nil && (obs.EffectivePeriod.Start != "" || obs.EffectivePeriod.End != "") {
		if entry.EffectiveTimeLow, err = FormatToHl7(obs.EffectivePeriod.Start); err != nil {
			return common.Finding{}, err
		}
		if entry.EffectiveTimeHigh, err = FormatToHl7(obs.EffectivePeriod.End); err != nil {
			return common.Finding{}, err
		}
	} else if entry.EffectiveTimeCentre, err = FormatToHl7(obs.EffectiveDateTime); err != nil {
		return common.Finding{}, err
	}
	return entry, nil
}

func statusToWire(status string) (string, error) {
	switch status {
	case "final":
		return "completed", nil
	case "entered-in-error":
		return "nullified", nil
	default:
		return "", exceptions.NewMappingError("unsupported observation status %q", status)
	}
}

func isSocialHistory(obs *model.Observation) bool {
	for _, category := range obs.Category {
		for _, coding := range category.Coding {
			if coding.Code == "social-history" {
				return true
			}
		}
	}
	return false
}
