package commands

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cleo-Systems/elevate-scr/internal/service/config"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/fhir/model"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/spine"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/exceptions"
)

const ackSuccess = `<MCCI_IN010000UK13><acknowledgement typeCode="AA"/></MCCI_IN010000UK13>`

func submissionBundleJSON(t *testing.T) []byte {
	t.Helper()
	bundle := &model.Bundle{
		ResourceType: "Bundle",
		Identifier:   &model.Identifier{Value: "4d3a4242-8f89-11ea-8b2d-b741f13efc47"},
		Type:         "document",
		Timestamp:    "2020-08-05T10:20:00Z",
		Entry: []model.Entry{
			{Resource: &model.Composition{
				ResourceType: model.TypeComposition,
				ID:           "composition-1",
				Identifier:   &model.Identifier{Value: "0F5A9E75-8F89-11EA-8B2D-B741F13EFC47"},
				Status:       "final",
				Date:         "2020-08-05T10:20:00Z",
				Type: &model.CodeableConcept{Coding: []model.Coding{{
					Code: "196981000000101", Display: "General Practice Summary",
				}}},
			}},
			{Resource: &model.PractitionerRole{
				ResourceType: model.TypePractitionerRole,
				ID:           "role-1",
				Identifier:   []model.Identifier{{Value: "100000000001"}},
			}},
			{Resource: &model.Organization{
				ResourceType: model.TypeOrganization,
				ID:           "org-1",
				Identifier:   []model.Identifier{{Value: "A1001"}},
				Name:         "Test Practice",
			}},
			{Resource: &model.Practitioner{
				ResourceType: model.TypePractitioner,
				ID:           "practitioner-1",
				Identifier:   []model.Identifier{{Value: "200000000001"}},
			}},
			{Resource: &model.Patient{
				ResourceType: model.TypePatient,
				ID:           "patient-1",
				Identifier: []model.Identifier{{
					System: "https://fhir.nhs.uk/Id/nhs-number", Value: "9999999999",
				}}},
			},
		},
	}
	data, err := bundle.Marshal()
	require.NoError(t, err)
	return data
}

func uploadConfig(spineURL string, timeout time.Duration) config.Config {
	return config.Config{
		SpineURL:             spineURL,
		SpineClinicalPath:    "/clinical",
		SpineACSPath:         "/acs",
		NhsdAsidTo:           "655159266510",
		PartyIDFrom:          "party-from",
		PartyIDTo:            "party-to",
		ScrResultTimeout:     timeout,
		PollFallbackInterval: 5 * time.Millisecond,
	}
}

func identity() spine.Identity {
	return spine.Identity{
		NhsdAsid:        "200000000359",
		NhsdIdentity:    "c1f4b6a2-0000-4000-8000-000000000001",
		NhsdSessionURID: "555021935107",
		ClientIP:        "198.51.100.7",
	}
}

func TestUploadSummaryHandler(t *testing.T) {
	t.Run("translates, submits and polls to success", func(t *testing.T) {
		var submitted string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				body, _ := io.ReadAll(r.Body)
				submitted = string(body)
				w.Header().Set("Content-Location", "/clinical/REQ-1")
				w.Header().Set("Retry-After", "5")
				w.WriteHeader(http.StatusAccepted)
				return
			}
			_, _ = w.Write([]byte(ackSuccess))
		}))
		defer srv.Close()

		cfg := uploadConfig(srv.URL, 2*time.Second)
		handler := NewUploadSummaryHandler(spine.NewClient(cfg), cfg)

		result, err := handler.Handle(context.Background(), UploadSummaryCommand{
			Bundle:   submissionBundleJSON(t),
			Identity: identity(),
		})
		require.NoError(t, err)
		assert.Equal(t, spine.OutcomeSucceeded, result.Result.Outcome)

		// the envelope identifier reaches the wire uppercased, the
		// timestamp in its fixed-width form
		assert.Contains(t, submitted, `<id root="4D3A4242-8F89-11EA-8B2D-B741F13EFC47"/>`)
		assert.Contains(t, submitted, `<creationTime value="20200805102000"/>`)
		assert.Contains(t, submitted, `extension="9999999999"`)
		assert.Contains(t, submitted, `extension="200000000359"`, "sender asid comes from the caller")
		assert.Contains(t, submitted, `extension="party-to"`)
	})

	t.Run("caller is released when the result timeout wins", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				w.Header().Set("Content-Location", "/clinical/REQ-1")
				w.Header().Set("Retry-After", "5")
				w.WriteHeader(http.StatusAccepted)
				return
			}
			// never finishes
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		cfg := uploadConfig(srv.URL, 60*time.Millisecond)
		handler := NewUploadSummaryHandler(spine.NewClient(cfg), cfg)

		start := time.Now()
		result, err := handler.Handle(context.Background(), UploadSummaryCommand{
			Bundle:   submissionBundleJSON(t),
			Identity: identity(),
		})
		require.NoError(t, err)
		assert.Equal(t, spine.OutcomeTimedOut, result.Result.Outcome)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("submission rejection surfaces as an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no thanks", http.StatusForbidden)
		}))
		defer srv.Close()

		cfg := uploadConfig(srv.URL, time.Second)
		handler := NewUploadSummaryHandler(spine.NewClient(cfg), cfg)

		_, err := handler.Handle(context.Background(), UploadSummaryCommand{
			Bundle:   submissionBundleJSON(t),
			Identity: identity(),
		})
		assert.ErrorAs(t, err, &exceptions.SubmissionError{})
	})

	t.Run("translation failure never reaches the wire", func(t *testing.T) {
		var called bool
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer srv.Close()

		cfg := uploadConfig(srv.URL, time.Second)
		handler := NewUploadSummaryHandler(spine.NewClient(cfg), cfg)

		// a bundle without a patient cannot be translated
		broken := strings.Replace(string(submissionBundleJSON(t)), `"Patient"`, `"Practitioner"`, 1)
		_, err := handler.Handle(context.Background(), UploadSummaryCommand{
			Bundle:   []byte(broken),
			Identity: identity(),
		})
		require.Error(t, err)
		assert.False(t, called)
	})

	t.Run("invalid json is a mapping error", func(t *testing.T) {
		cfg := uploadConfig("http://unused", time.Second)
		handler := NewUploadSummaryHandler(spine.NewClient(cfg), cfg)

		_, err := handler.Handle(context.Background(), UploadSummaryCommand{Bundle: []byte("{")})
		assert.ErrorAs(t, err, &exceptions.MappingError{})
	})
}
