package hl7

import (
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/fhir/model"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/exceptions"
)

const (
	participationTypeSystem = "http://terminology.hl7.org/CodeSystem/v3-ParticipationType"
	participationModeSystem = "http://terminology.hl7.org/CodeSystem/v3-ParticipationMode"
	encounterClassSystem    = "http://terminology.hl7.org/CodeSystem/v3-NullFlavor"

	modeCodeExtensionURL = "https://fhir.nhs.uk/StructureDefinition/Extension-SCR-ModeCode"
)

// The three participation roles an encounter participant can carry.
var (
	participationAuthor    = participationType("AUT", "author")
	participationInformant = participationType("INF", "informant")
	participationPerformer = participationType("PRF", "performer")
)

func participationType(code, display string) model.CodeableConcept {
	return model.CodeableConcept{
		Coding: []model.Coding{{
			System:  participationTypeSystem,
			Code:    code,
			Display: display,
		}},
	}
}

// participationModeDisplays is the side lookup table for performer mode
// codes, keyed by the raw wire value.
var participationModeDisplays = map[string]string{
	"ELECTRONIC": "electronic data",
	"PHYSICAL":   "physical presence",
	"REMOTE":     "remote presence",
	"VERBAL":     "verbal",
	"DICTATE":    "dictated",
	"FACE":       "face-to-face",
	"PHONE":      "telephone",
	"VIDEOCONF":  "videoconferencing",
	"WRITTEN":    "written",
}

func modeCodeExtension(modeCode string) (model.Extension, error) {
	display, ok := participationModeDisplays[modeCode]
	if !ok {
		return model.Extension{}, exceptions.NewMappingError("unsupported participation mode code %q", modeCode)
	}
	return model.Extension{
		URL: modeCodeExtensionURL,
		ValueCodeableConcept: &model.CodeableConcept{
			Coding: []model.Coding{{
				System:  participationModeSystem,
				Code:    modeCode,
				Display: display,
			}},
		},
	}, nil
}
