package queries

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Cleo-Systems/elevate-scr/internal/service/common"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/hl7"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/hl7/templates"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/spine"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/exceptions"
)

const permissionsPath = "//accessPermission"

type GetPermissionsQuery struct {
	PatientNHSNumber string
	Identity         spine.Identity
}

type GetPermissionsResult struct {
	Permissions []common.Permission
}

type GetPermissionsQueryHandler interface {
	Handle(ctx context.Context, query GetPermissionsQuery) (result GetPermissionsResult, err error)
}

func NewGetPermissionsQueryHandler(client *spine.Client) GetPermissionsQueryHandler {
	return &getPermissionsQueryHandler{client: client}
}

type getPermissionsQueryHandler struct {
	client *spine.Client
}

func (h *getPermissionsQueryHandler) Handle(ctx context.Context, query GetPermissionsQuery) (GetPermissionsResult, error) {
	message, err := templates.Render(templates.GetResourcePermissions, map[string]any{
		"MessageID": strings.ToUpper(uuid.NewString()),
		"PatientID": query.PatientNHSNumber,
	})
	if err != nil {
		return GetPermissionsResult{}, err
	}

	body, err := h.client.SendACSMessage(ctx, message, query.Identity)
	if err != nil {
		return GetPermissionsResult{}, err
	}
	document, err := hl7.Parse(body)
	if err != nil {
		return GetPermissionsResult{}, exceptions.NewMappingError("parsing permissions response: %s", err)
	}

	var permissions []common.Permission
	for _, node := range hl7.NodesAt(document, permissionsPath) {
		permissions = append(permissions, common.Permission{
			Code:     node.SelectAttr("code"),
			Resource: node.SelectAttr("resource"),
		})
	}
	return GetPermissionsResult{Permissions: permissions}, nil
}
