package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/absence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/absence-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterConfig carries the surface settings read from the environment.
type RouterConfig struct {
	Env            string
	AllowedOrigins []string
	LogLevel       slog.Level
}

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Auth      AuthHandler
	Case      CaseHandler
	Dashboard DashboardHandler
	Roster    RosterHandler
	Event     EventHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "absence-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.Env),
	)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
		})

		// The stream authenticates with its own query token
		r.Get("/events", h.Event.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Get("/me", h.Auth.Me)
			r.Get("/events/token", h.Event.GetSSEToken)

			r.Route("/cases", func(r chi.Router) {
				r.Use(middleware.RequireAnyPermission(user.PermissionCaseViewAll, user.PermissionCaseViewOwnTeam))

				r.Get("/", h.Case.List)
				r.With(middleware.RequirePermission(user.PermissionCaseReport)).Post("/", h.Case.Report)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Case.Get)
					r.Get("/actions", h.Case.ListActions)
					r.Get("/pdf", h.Case.PDF)

					r.With(middleware.RequirePermission(user.PermissionCaseReceive)).Post("/receive", h.Case.Receive)
					r.With(middleware.RequirePermission(user.PermissionCaseRecordOutcome)).Post("/outcome", h.Case.RecordOutcome)
					r.With(middleware.RequirePermission(user.PermissionCaseApproveSwap)).Post("/approve-swap", h.Case.ApproveSwap)
					r.With(middleware.RequirePermission(user.PermissionCaseMarkVacant)).Post("/mark-vacant", h.Case.MarkVacant)
				})
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Use(middleware.RequireAnyPermission(user.PermissionDashboardViewAll, user.PermissionDashboardViewOwnTeam))

				r.Get("/", h.Dashboard.GetDashboard)
				r.Get("/teams/{id}", h.Dashboard.GetTeamDashboard)
			})

			r.Route("/teams", func(r chi.Router) {
				r.Get("/", h.Roster.ListTeams)
				r.Get("/{id}/members", h.Roster.ListMembers)

				r.Route("/my", func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionRosterManageOwnTeam))
					r.Post("/workers", h.Roster.AddWorker)
					r.Delete("/members/{id}", h.Roster.RemoveMember)
				})

				r.With(middleware.RequirePermission(user.PermissionTeamAssignDistrict)).Put("/{id}/district", h.Roster.AssignDistrict)
			})

			r.Get("/districts", h.Roster.ListDistricts)
		})
	})
	return r
}
