package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/absence-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/absence-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/linebot"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/storage"
	"github.com/cmlabs-hris/absence-backend-go/internal/repository/postgresql"
	absenceService "github.com/cmlabs-hris/absence-backend-go/internal/service/absence"
	"github.com/cmlabs-hris/absence-backend-go/internal/service/archive"
	serviceAuth "github.com/cmlabs-hris/absence-backend-go/internal/service/auth"
	dashboardService "github.com/cmlabs-hris/absence-backend-go/internal/service/dashboard"
	"github.com/cmlabs-hris/absence-backend-go/internal/service/notification"
	rosterService "github.com/cmlabs-hris/absence-backend-go/internal/service/roster"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	transactor := postgresql.NewTransactor(db)
	userRepo := postgresql.NewUserRepository(db)
	JWTRepository := postgresql.NewJWTRepository(db)
	caseRepo := postgresql.NewAbsenceCaseRepository(db)
	actionRepo := postgresql.NewHrCaseActionRepository(db)
	vacancyRepo := postgresql.NewVacancyPeriodRepository(db)
	workerRepo := postgresql.NewWorkerRepository(db)
	teamRepo := postgresql.NewTeamRepository(db)
	districtRepo := postgresql.NewDistrictRepository(db)
	membershipRepo := postgresql.NewTeamMembershipRepository(db)
	dashboardRepo := postgresql.NewDashboardRepository(db)

	clk := clock.Real()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)

	var fileStorage storage.FileStorage
	switch cfg.Storage.Type {
	case "local":
		fileStorage, err = storage.NewLocalStorage(cfg.Storage.BasePath)
		if err != nil {
			slog.Error("Failed to initialize local storage", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Unsupported storage type", "type", cfg.Storage.Type)
		os.Exit(1)
	}

	var pusher linebot.Pusher
	if cfg.LINEEnabled() {
		pusher = linebot.NewClient(cfg.LINE.Endpoint, cfg.LINE.ChannelAccessToken, cfg.LINE.Timeout)
	} else {
		slog.Warn("LINE push disabled, LINE_CHANNEL_ACCESS_TOKEN or LINE_TARGET_ID is empty")
	}
	hub := sse.NewHub()
	notifier := notification.NewService(pusher, hub, notification.Config{
		TargetID:    cfg.LINE.TargetID,
		WorkerCount: cfg.LINE.WorkerCount,
		QueueSize:   cfg.LINE.QueueSize,
		PushTimeout: cfg.LINE.Timeout,
	})

	authService := serviceAuth.NewAuthService(transactor, userRepo, JWTService, JWTRepository)
	caseService := absenceService.NewCaseService(absenceService.Dependencies{
		Transactor:  transactor,
		Cases:       caseRepo,
		Actions:     actionRepo,
		Vacancies:   vacancyRepo,
		Workers:     workerRepo,
		Memberships: membershipRepo,
		Publisher:   notifier,
		Archiver:    archive.NewArchiver(fileStorage, vacancyRepo),
		Clock:       clk,
		SLADays:     cfg.SLA.BusinessDays,
	})
	dashboardSvc := dashboardService.NewDashboardService(dashboardRepo, clk)
	rosterSvc := rosterService.NewRosterService(transactor, workerRepo, teamRepo, districtRepo, membershipRepo, clk)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Env:            cfg.App.Env,
			AllowedOrigins: cfg.App.AllowedOrigins,
			LogLevel:       cfg.SlogLevel(),
		},
		JWTService,
		appHTTP.Handlers{
			Auth:      appHTTP.NewAuthHandler(JWTService, authService),
			Case:      appHTTP.NewCaseHandler(caseService),
			Dashboard: appHTTP.NewDashboardHandler(dashboardSvc),
			Roster:    appHTTP.NewRosterHandler(rosterSvc),
			Event:     appHTTP.NewEventHandler(JWTService, userRepo, notifier),
		},
	)

	scheduler := cron.NewScheduler(time.UTC)
	if cfg.Cron.Enabled {
		digest := cron.NewSLADigestJobs(caseRepo, notifier, clk)
		if err := digest.RegisterJobs(scheduler, cfg.Cron.SLADigestSpec); err != nil {
			slog.Error("Failed to register cron jobs", "error", err)
			os.Exit(1)
		}
		scheduler.Start()
	}

	server := appHTTP.NewServer(fmt.Sprintf(":%d", cfg.App.Port), router)

	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	// Shutdown cancels request contexts, which ends open SSE streams.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	if cfg.Cron.Enabled {
		scheduler.Stop()
	}
	notifier.Stop()
	slog.Info("Server exited")
}
