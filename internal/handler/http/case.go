package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/absence-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/absence-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type CaseHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	ListActions(w http.ResponseWriter, r *http.Request)
	PDF(w http.ResponseWriter, r *http.Request)

	Report(w http.ResponseWriter, r *http.Request)
	Receive(w http.ResponseWriter, r *http.Request)
	RecordOutcome(w http.ResponseWriter, r *http.Request)
	ApproveSwap(w http.ResponseWriter, r *http.Request)
	MarkVacant(w http.ResponseWriter, r *http.Request)
}

type caseHandlerImpl struct {
	caseService absence.CaseService
}

func NewCaseHandler(caseService absence.CaseService) CaseHandler {
	return &caseHandlerImpl{caseService: caseService}
}

// List handles GET /cases
func (h *caseHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	filter := absence.CaseFilter{}
	query := r.URL.Query()

	if teamID := query.Get("team_id"); teamID != "" {
		filter.TeamID = &teamID
	}
	if districtID := query.Get("district_id"); districtID != "" {
		filter.DistrictID = &districtID
	}
	if finalStatus := query.Get("final_status"); finalStatus != "" {
		filter.FinalStatus = &finalStatus
	}
	if openOnly := query.Get("open_only"); openOnly != "" {
		v, err := strconv.ParseBool(openOnly)
		if err != nil {
			response.BadRequest(w, "open_only must be a boolean", nil)
			return
		}
		filter.OpenOnly = v
	}
	if page := query.Get("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil {
			filter.Page = p
		}
	}
	if limit := query.Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			filter.Limit = l
		}
	}

	result, err := h.caseService.ListCases(r.Context(), actor, filter)
	if err != nil {
		slog.Error("ListCases service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get handles GET /cases/{id}
func (h *caseHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	result, err := h.caseService.GetCase(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListActions handles GET /cases/{id}/actions
func (h *caseHandlerImpl) ListActions(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	result, err := h.caseService.ListActions(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// PDF handles GET /cases/{id}/pdf
func (h *caseHandlerImpl) PDF(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	caseID := chi.URLParam(r, "id")

	doc, err := h.caseService.RenderPDF(r.Context(), actor, caseID)
	if err != nil {
		slog.Error("RenderPDF service error", "case_id", caseID, "error", err)
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"case-%s.pdf\"", caseID))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		slog.Error("failed to write case document", "case_id", caseID, "error", err)
	}
}

// Report handles POST /cases
func (h *caseHandlerImpl) Report(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var req absence.ReportCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Report decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.caseService.Report(r.Context(), actor, req)
	if err != nil {
		slog.Error("Report service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Absence case reported", result)
}

// Receive handles POST /cases/{id}/receive
func (h *caseHandlerImpl) Receive(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var req absence.ReceiveCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Receive decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.CaseID = chi.URLParam(r, "id")

	result, err := h.caseService.Receive(r.Context(), actor, req)
	if err != nil {
		slog.Error("Receive service error", "case_id", req.CaseID, "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Case received", result)
}

// RecordOutcome handles POST /cases/{id}/outcome
func (h *caseHandlerImpl) RecordOutcome(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var req absence.RecordOutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("RecordOutcome decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.CaseID = chi.URLParam(r, "id")

	result, err := h.caseService.RecordOutcome(r.Context(), actor, req)
	if err != nil {
		slog.Error("RecordOutcome service error", "case_id", req.CaseID, "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Recruitment outcome recorded", result)
}

// ApproveSwap handles POST /cases/{id}/approve-swap
func (h *caseHandlerImpl) ApproveSwap(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	caseID := chi.URLParam(r, "id")

	result, err := h.caseService.ApproveSwap(r.Context(), actor, caseID)
	if err != nil {
		slog.Error("ApproveSwap service error", "case_id", caseID, "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Swap approved", result)
}

// MarkVacant handles POST /cases/{id}/mark-vacant
func (h *caseHandlerImpl) MarkVacant(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())
	caseID := chi.URLParam(r, "id")

	result, err := h.caseService.MarkVacant(r.Context(), actor, caseID)
	if err != nil {
		slog.Error("MarkVacant service error", "case_id", caseID, "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Case marked vacant", result)
}
