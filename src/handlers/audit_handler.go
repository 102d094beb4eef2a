// backend/src/handlers/audit_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/username/fiscasync/backend/src/logger"
	"github.com/username/fiscasync/backend/src/models"
	"github.com/username/fiscasync/backend/src/services"
	"github.com/username/fiscasync/backend/src/utils"
)

type AuditHandler struct {
	auditService services.AuditService
}

func NewAuditHandler(auditService services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// serviceError maps service sentinels to HTTP statuses.
func serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrArchiveNotFound),
		errors.Is(err, services.ErrReportNotFound):
		utils.SendJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrEmptyBalance),
		errors.Is(err, services.ErrMissingPeriod):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		logger.L.Error("Audit request failed", "error", err)
		utils.SendJSONError(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *AuditHandler) HandleIntake(w http.ResponseWriter, r *http.Request) {
	var req services.IntakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	session, err := h.auditService.StartIntakeAudit(r.Context(), req)
	if err != nil {
		serviceError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, session)
}

func (h *AuditHandler) HandleStatement(w http.ResponseWriter, r *http.Request) {
	var req services.StatementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	session, err := h.auditService.RunStatementAudit(r.Context(), req)
	if err != nil {
		serviceError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, session)
}

func (h *AuditHandler) HandleReimport(w http.ResponseWriter, r *http.Request) {
	var req services.ReimportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PriorSessionID == "" {
		utils.SendJSONError(w, "priorSessionId is required", http.StatusBadRequest)
		return
	}
	session, report, err := h.auditService.ReimportAndCompare(r.Context(), req)
	if err != nil {
		serviceError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, map[string]any{
		"session": session,
		"report":  report,
	})
}

func (h *AuditHandler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			utils.SendJSONError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	sessions, err := h.auditService.ListSessions(limit)
	if err != nil {
		serviceError(w, err)
		return
	}
	if sessions == nil {
		sessions = []models.AuditSession{}
	}
	utils.SendJSON(w, http.StatusOK, sessions)
}

func (h *AuditHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.auditService.GetSession(chi.URLParam(r, "id"))
	if err != nil {
		serviceError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, session)
}

func (h *AuditHandler) HandleArchiveSession(w http.ResponseWriter, r *http.Request) {
	rec, err := h.auditService.ArchiveSession(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			serviceError(w, err)
			return
		}
		utils.SendJSONError(w, fmt.Sprintf("archiving failed: %v", err), http.StatusConflict)
		return
	}
	utils.SendJSON(w, http.StatusCreated, rec)
}

func (h *AuditHandler) HandleListArchives(w http.ResponseWriter, r *http.Request) {
	archives, err := h.auditService.ListArchives()
	if err != nil {
		serviceError(w, err)
		return
	}
	if archives == nil {
		archives = []models.ArchiveRecord{}
	}
	utils.SendJSON(w, http.StatusOK, archives)
}

func (h *AuditHandler) HandleVerifyArchive(w http.ResponseWriter, r *http.Request) {
	result, err := h.auditService.VerifyArchive(chi.URLParam(r, "period"))
	if err != nil {
		serviceError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, result)
}

func (h *AuditHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.auditService.GetReport(chi.URLParam(r, "id"))
	if err != nil {
		serviceError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, report)
}

func (h *AuditHandler) HandleListControls(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, http.StatusOK, h.auditService.ControlCatalog())
}

func (h *AuditHandler) HandleToggleControl(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	var body struct {
		Active *bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Active == nil {
		utils.SendJSONError(w, "body must carry {\"active\": true|false}", http.StatusBadRequest)
		return
	}
	if !h.auditService.SetControlActive(ref, *body.Active) {
		utils.SendJSONError(w, fmt.Sprintf("unknown control %s", ref), http.StatusNotFound)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]any{"ref": ref, "active": *body.Active})
}
