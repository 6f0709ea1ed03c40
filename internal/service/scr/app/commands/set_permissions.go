package commands

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Cleo-Systems/elevate-scr/internal/service/common"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/hl7/templates"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/spine"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/exceptions"
)

type SetPermissionsCommand struct {
	PatientNHSNumber string
	Permissions      []common.Permission
	Identity         spine.Identity
}

type SetPermissionsResult struct {
}

type SetPermissionsHandler interface {
	Handle(ctx context.Context, cmd SetPermissionsCommand) (result SetPermissionsResult, err error)
}

func NewSetPermissionsHandler(client *spine.Client) SetPermissionsHandler {
	return &setPermissionsCmdHandler{client: client}
}

type setPermissionsCmdHandler struct {
	client *spine.Client
}

// Handle replaces the patient's consent rules through the access control
// service. The call is synchronous; a non-AA acknowledgement is a failure.
func (h *setPermissionsCmdHandler) Handle(ctx context.Context, cmd SetPermissionsCommand) (SetPermissionsResult, error) {
	message, err := templates.Render(templates.SetResourcePermissions, map[string]any{
		"MessageID":   strings.ToUpper(uuid.NewString()),
		"PatientID":   cmd.PatientNHSNumber,
		"Permissions": cmd.Permissions,
	})
	if err != nil {
		return SetPermissionsResult{}, err
	}

	body, err := h.client.SendACSMessage(ctx, message, cmd.Identity)
	if err != nil {
		return SetPermissionsResult{}, err
	}
	result, err := spine.ParseProcessingResult(body)
	if err != nil {
		return SetPermissionsResult{}, err
	}
	if result.Outcome != spine.OutcomeSucceeded {
		return SetPermissionsResult{}, exceptions.PollingFailedError{Reasons: result.FailureReasons}
	}
	return SetPermissionsResult{}, nil
}
