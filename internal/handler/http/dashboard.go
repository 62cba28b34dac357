package http

import (
	"net/http"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/absence-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/absence-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type DashboardHandler interface {
	// GetDashboard returns the global, district and team summaries visible to the caller
	GetDashboard(w http.ResponseWriter, r *http.Request)
	// GetTeamDashboard returns a single team's summary
	GetTeamDashboard(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService dashboard.DashboardService
}

func NewDashboardHandler(dashboardService dashboard.DashboardService) DashboardHandler {
	return &dashboardHandlerImpl{dashboardService: dashboardService}
}

// GetDashboard handles GET /dashboard
func (h *dashboardHandlerImpl) GetDashboard(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	result, err := h.dashboardService.GetDashboard(r.Context(), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetTeamDashboard handles GET /dashboard/teams/{id}
func (h *dashboardHandlerImpl) GetTeamDashboard(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	result, err := h.dashboardService.GetTeamDashboard(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
