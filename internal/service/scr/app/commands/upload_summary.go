package commands

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Cleo-Systems/elevate-scr/internal/service/common"
	"github.com/Cleo-Systems/elevate-scr/internal/service/config"
	"github.com/Cleo-Systems/elevate-scr/internal/service/correlation"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/fhir"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/fhir/model"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/hl7/templates"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/spine"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/exceptions"
)

type UploadSummaryCommand struct {
	Bundle   []byte
	Identity spine.Identity
}

type UploadSummaryResult struct {
	Result spine.ProcessingResult
}

type UploadSummaryHandler interface {
	Handle(ctx context.Context, cmd UploadSummaryCommand) (result UploadSummaryResult, err error)
}

func NewUploadSummaryHandler(client *spine.Client, cfg config.Config) UploadSummaryHandler {
	return &uploadSummaryCmdHandler{
		client:        client,
		partyIDFrom:   cfg.PartyIDFrom,
		partyIDTo:     cfg.PartyIDTo,
		resultTimeout: cfg.ScrResultTimeout,
	}
}

type uploadSummaryCmdHandler struct {
	client        *spine.Client
	partyIDFrom   string
	partyIDTo     string
	resultTimeout time.Duration
}

// Handle translates the submission bundle into the clinical upload message,
// then races the submit-and-poll continuation against the configured result
// timeout. When the timeout wins, the continuation keeps running on a
// detached context so its eventual outcome is still logged under the same
// correlation token.
func (h *uploadSummaryCmdHandler) Handle(ctx context.Context, cmd UploadSummaryCommand) (UploadSummaryResult, error) {
	bundle, err := model.ParseBundle(cmd.Bundle)
	if err != nil {
		return UploadSummaryResult{}, exceptions.NewMappingError("parsing bundle: %s", err)
	}
	summary, err := fhir.ParseGpSummary(bundle)
	if err != nil {
		return UploadSummaryResult{}, err
	}
	message, err := h.renderMessage(summary, cmd.Identity)
	if err != nil {
		return UploadSummaryResult{}, err
	}

	resultCh := make(chan spine.ProcessingResult, 1)
	errCh := make(chan error, 1)
	detached := correlation.Detach(ctx)
	go func() {
		accepted, err := h.client.SendSummary(detached, message, cmd.Identity)
		if err != nil {
			errCh <- err
			return
		}
		deadline := time.Now().Add(h.resultTimeout)
		result, err := h.client.GetProcessingResult(detached, accepted, cmd.Identity, deadline)
		if errors.Is(err, exceptions.ErrTimeout) {
			resultCh <- spine.ProcessingResult{Outcome: spine.OutcomeTimedOut}
			return
		}
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- result
	}()

	timeout := time.NewTimer(h.resultTimeout)
	defer timeout.Stop()
	select {
	case result := <-resultCh:
		return UploadSummaryResult{Result: result}, nil
	case err := <-errCh:
		return UploadSummaryResult{}, err
	case <-timeout.C:
		// The continuation logs its own outcome whenever it concludes.
		correlation.Logger(ctx).Warn("summary result not available in time, continuing in background",
			zap.Duration("timeout", h.resultTimeout))
		return UploadSummaryResult{Result: spine.ProcessingResult{Outcome: spine.OutcomeTimedOut}}, nil
	case <-ctx.Done():
		return UploadSummaryResult{}, ctx.Err()
	}
}

// renderMessage prepares the substitution context from the canonical record.
// The envelope identifier and timestamp kept verbatim by the assembler are
// converted to their wire forms here.
func (h *uploadSummaryCmdHandler) renderMessage(summary *common.GpSummary, identity spine.Identity) (string, error) {
	messageID := strings.ToUpper(summary.HeaderID)
	if messageID == "" {
		messageID = strings.ToUpper(uuid.NewString())
	}
	creationTime, err := fhir.FormatToHl7(summary.HeaderTimeStamp)
	if err != nil {
		return "", err
	}
	if creationTime == "" {
		creationTime = time.Now().UTC().Format("20060102150405")
	}

	return templates.Render(templates.UploadSummary, map[string]any{
		"MessageID":    messageID,
		"CreationTime": creationTime,
		"PartyIDFrom":  h.partyIDFrom,
		"PartyIDTo":    h.partyIDTo,
		"SenderAsid":   identity.NhsdAsid,

		"CompositionID":   summary.CompositionID,
		"CompositionDate": summary.CompositionDate,
		"CategoryCode":    summary.CategoryCode,
		"CategoryDisplay": summary.CategoryDisplay,

		"RoleProfileID":        summary.RoleProfileID,
		"SDSUserID":            summary.SDSUserID,
		"OrganizationODSCode":  summary.OrganizationODSCode,
		"OrganizationTypeCode": summary.OrganizationTypeCode,
		"OrganizationName":     summary.OrganizationName,
		"PatientNHSNumber":     summary.PatientNHSNumber,

		"Findings":      summary.Findings,
		"Circumstances": summary.Circumstances,
	})
}
