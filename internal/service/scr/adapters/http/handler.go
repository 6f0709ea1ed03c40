// Package http is the inbound adapter: it validates caller identity, binds
// the request into commands and queries, and maps error kinds onto response
// statuses. No translation logic lives here.
package http

import (
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/Cleo-Systems/elevate-scr/internal/service/common"
	"github.com/Cleo-Systems/elevate-scr/internal/service/correlation"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/adapters/spine"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/app"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/app/commands"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/app/queries"
	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/exceptions"
)

const (
	nhsdAsidHeader     = "Nhsd-Asid"
	nhsdIdentityHeader = "NHSD-Identity-UUID"
	nhsdSessionHeader  = "NHSD-Session-URID"
	clientIPHeader     = "client-ip"
)

type Server struct {
	cmdBus   app.CommandBus
	queryBus app.QueryBus
	validate *validator.Validate
}

func NewServer(cmdBus app.CommandBus, queryBus app.QueryBus) *Server {
	return &Server{
		cmdBus:   cmdBus,
		queryBus: queryBus,
		validate: validator.New(),
	}
}

type identityHeaders struct {
	NhsdAsid        string `validate:"required,numeric"`
	NhsdIdentity    string `validate:"required,uuid_rfc4122"`
	NhsdSessionURID string `validate:"required"`
	ClientIP        string `validate:"required,ip"`
}

func (s *Server) UploadSummary(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeOutcome(w, http.StatusBadRequest, "invalid", "reading request body: "+err.Error())
		return
	}

	result, err := s.cmdBus.UploadSummary(r.Context(), commands.UploadSummaryCommand{
		Bundle:   body,
		Identity: identity,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	switch result.Result.Outcome {
	case spine.OutcomeSucceeded:
		writeOutcome(w, http.StatusCreated, "informational", "record successfully updated")
	case spine.OutcomeTimedOut:
		writeOutcome(w, http.StatusGatewayTimeout, "timeout", "upload result not available in time")
	default:
		reasons := "record update failed"
		for _, reason := range result.Result.FailureReasons {
			reasons += "; " + reason
		}
		writeOutcome(w, http.StatusBadGateway, "processing", reasons)
	}
}

func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	nhsNumber := r.URL.Query().Get("patient")
	if nhsNumber == "" {
		writeOutcome(w, http.StatusBadRequest, "invalid", "missing patient query parameter")
		return
	}

	result, err := s.queryBus.GetRecord(r.Context(), queries.GetRecordQuery{
		PatientNHSNumber: nhsNumber,
		SearchFrom:       r.URL.Query().Get("from"),
		SearchTo:         r.URL.Query().Get("to"),
		Identity:         identity,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result.Bundle)
}

type setPermissionsRequest struct {
	PatientNHSNumber string              `json:"nhsNumber" validate:"required,len=10,numeric"`
	Permissions      []common.Permission `json:"permissions" validate:"required,dive"`
}

func (s *Server) SetPermissions(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	var in setPermissionsRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeOutcome(w, http.StatusBadRequest, "invalid", "invalid json: "+err.Error())
		return
	}
	if err := s.validate.Struct(in); err != nil {
		writeOutcome(w, http.StatusBadRequest, "invalid", err.Error())
		return
	}

	_, err := s.cmdBus.SetPermissions(r.Context(), commands.SetPermissionsCommand{
		PatientNHSNumber: in.PatientNHSNumber,
		Permissions:      in.Permissions,
		Identity:         identity,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOutcome(w, http.StatusOK, "informational", "permissions updated")
}

func (s *Server) GetPermissions(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	nhsNumber := r.URL.Query().Get("patient")
	if nhsNumber == "" {
		writeOutcome(w, http.StatusBadRequest, "invalid", "missing patient query parameter")
		return
	}

	result, err := s.queryBus.GetPermissions(r.Context(), queries.GetPermissionsQuery{
		PatientNHSNumber: nhsNumber,
		Identity:         identity,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"nhsNumber":   nhsNumber,
		"permissions": result.Permissions,
	})
}

func (s *Server) GetHealthStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// identity reads and validates the caller identity headers. On failure it
// writes the 400 itself and reports false.
func (s *Server) identity(w http.ResponseWriter, r *http.Request) (spine.Identity, bool) {
	headers := identityHeaders{
		NhsdAsid:        r.Header.Get(nhsdAsidHeader),
		NhsdIdentity:    r.Header.Get(nhsdIdentityHeader),
		NhsdSessionURID: r.Header.Get(nhsdSessionHeader),
		ClientIP:        r.Header.Get(clientIPHeader),
	}
	if err := s.validate.Struct(headers); err != nil {
		writeOutcome(w, http.StatusBadRequest, "invalid", "invalid identity headers: "+err.Error())
		return spine.Identity{}, false
	}
	return spine.Identity{
		NhsdAsid:        headers.NhsdAsid,
		NhsdIdentity:    headers.NhsdIdentity,
		NhsdSessionURID: headers.NhsdSessionURID,
		ClientIP:        headers.ClientIP,
	}, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := exceptions.StatusCode(err)
	correlation.Logger(r.Context()).Error("request failed",
		zap.Int("status", status),
		zap.Error(err))

	code := "processing"
	if status == http.StatusBadRequest {
		code = "invalid"
	}
	writeOutcome(w, status, code, err.Error())
}

// writeOutcome renders the operation outcome shape callers of the resource
// graph API expect.
func writeOutcome(w http.ResponseWriter, status int, code, diagnostics string) {
	severity := "information"
	if status >= http.StatusBadRequest {
		severity = "error"
	}
	writeJSON(w, status, map[string]any{
		"resourceType": "OperationOutcome",
		"issue": []map[string]any{{
			"severity":    severity,
			"code":        code,
			"diagnostics": diagnostics,
		}},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/fhir+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
