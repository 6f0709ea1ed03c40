package queries

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Cleo-Systems/elevate-scr/internal/service/correlation"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/fhir"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/fhir/model"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/hl7"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/hl7/templates"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/spine"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/exceptions"
)

// Queries with no explicit range cover the whole record history.
const searchFromDefault = "19000101"

type GetRecordQuery struct {
	PatientNHSNumber string
	SearchFrom       string
	SearchTo         string
	Identity         spine.Identity
}

type GetRecordResult struct {
	Bundle *model.Bundle
}

type GetRecordQueryHandler interface {
	Handle(ctx context.Context, query GetRecordQuery) (result GetRecordResult, err error)
}

func NewGetRecordQueryHandler(client *spine.Client, registry *hl7.Registry) GetRecordQueryHandler {
	return &getRecordQueryHandler{
		client:   client,
		registry: registry,
	}
}

type getRecordQueryHandler struct {
	client   *spine.Client
	registry *hl7.Registry
}

// Handle retrieves the patient's current record and translates it into a
// searchset bundle. Entries cross-reference each other through urn:uuid
// full URLs.
func (h *getRecordQueryHandler) Handle(ctx context.Context, query GetRecordQuery) (GetRecordResult, error) {
	searchFrom, searchTo, err := searchRange(query.SearchFrom, query.SearchTo)
	if err != nil {
		return GetRecordResult{}, err
	}
	message, err := templates.Render(templates.EventListQuery, map[string]any{
		"MessageID":        strings.ToUpper(uuid.NewString()),
		"CreationTime":     time.Now().UTC().Format("20060102150405"),
		"SenderAsid":       query.Identity.NhsdAsid,
		"SearchFrom":       searchFrom,
		"SearchTo":         searchTo,
		"PatientNHSNumber": query.PatientNHSNumber,
	})
	if err != nil {
		return GetRecordResult{}, err
	}

	body, err := h.client.SendEventListQuery(ctx, message, query.Identity)
	if err != nil {
		return GetRecordResult{}, err
	}
	document, err := hl7.Parse(body)
	if err != nil {
		return GetRecordResult{}, exceptions.NewMappingError("parsing record response: %s", err)
	}
	resources, err := h.registry.MapAll(document)
	if err != nil {
		return GetRecordResult{}, err
	}
	correlation.Logger(ctx).Info("record retrieved",
		zap.Int("resources", len(resources)))

	bundle := &model.Bundle{
		ResourceType: "Bundle",
		ID:           uuid.NewString(),
		Type:         "searchset",
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}
	for _, resource := range resources {
		bundle.Entry = append(bundle.Entry, model.Entry{
			FullURL:  "urn:uuid:" + resource.GetID(),
			Resource: resource,
		})
	}
	return GetRecordResult{Bundle: bundle}, nil
}

func searchRange(from, to string) (string, string, error) {
	searchFrom := searchFromDefault
	if from != "" {
		converted, err := fhir.FormatToHl7(from)
		if err != nil {
			return "", "", err
		}
		searchFrom = converted
	}
	searchTo := time.Now().UTC().Format("20060102")
	if to != "" {
		converted, err := fhir.FormatToHl7(to)
		if err != nil {
			return "", "", err
		}
		searchTo = converted
	}
	return searchFrom, searchTo, nil
}
