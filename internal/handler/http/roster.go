package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/roster"
	"github.com/cmlabs-hris/absence-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/absence-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type RosterHandler interface {
	ListTeams(w http.ResponseWriter, r *http.Request)
	ListMembers(w http.ResponseWriter, r *http.Request)
	AddWorker(w http.ResponseWriter, r *http.Request)
	RemoveMember(w http.ResponseWriter, r *http.Request)
	AssignDistrict(w http.ResponseWriter, r *http.Request)
	ListDistricts(w http.ResponseWriter, r *http.Request)
}

type rosterHandlerImpl struct {
	rosterService roster.RosterService
}

func NewRosterHandler(rosterService roster.RosterService) RosterHandler {
	return &rosterHandlerImpl{rosterService: rosterService}
}

// ListTeams handles GET /teams
func (h *rosterHandlerImpl) ListTeams(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	teams, err := h.rosterService.ListTeams(r.Context(), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, teams)
}

// ListMembers handles GET /teams/{id}/members. Only active members are listed
// unless active=false.
func (h *rosterHandlerImpl) ListMembers(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	activeOnly := true
	if active := r.URL.Query().Get("active"); active != "" {
		v, err := strconv.ParseBool(active)
		if err != nil {
			response.BadRequest(w, "active must be a boolean", nil)
			return
		}
		activeOnly = v
	}

	members, err := h.rosterService.ListMembers(r.Context(), actor, chi.URLParam(r, "id"), activeOnly)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, members)
}

// AddWorker handles POST /teams/my/workers
func (h *rosterHandlerImpl) AddWorker(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var req roster.AddWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("AddWorker decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	member, err := h.rosterService.AddWorker(r.Context(), actor, req)
	if err != nil {
		slog.Error("AddWorker service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Worker added to team", member)
}

// RemoveMember handles DELETE /teams/my/members/{id}
func (h *rosterHandlerImpl) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var req roster.RemoveMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("RemoveMember decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.MembershipID = chi.URLParam(r, "id")

	if err := h.rosterService.RemoveMember(r.Context(), actor, req); err != nil {
		slog.Error("RemoveMember service error", "membership_id", req.MembershipID, "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Membership ended", nil)
}

// AssignDistrict handles PUT /teams/{id}/district
func (h *rosterHandlerImpl) AssignDistrict(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var req roster.AssignDistrictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("AssignDistrict decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.TeamID = chi.URLParam(r, "id")

	team, err := h.rosterService.AssignDistrict(r.Context(), actor, req)
	if err != nil {
		slog.Error("AssignDistrict service error", "team_id", req.TeamID, "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "District assigned", team)
}

// ListDistricts handles GET /districts
func (h *rosterHandlerImpl) ListDistricts(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	districts, err := h.rosterService.ListDistricts(r.Context(), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, districts)
}
