package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/securevote/securevote-be/internal/api"
	"github.com/securevote/securevote-be/internal/api/handlers"
	"github.com/securevote/securevote-be/internal/auth"
	"github.com/securevote/securevote-be/internal/config"
	"github.com/securevote/securevote-be/internal/database"
	"github.com/securevote/securevote-be/internal/logger"
	"github.com/securevote/securevote-be/internal/mail"
	"github.com/securevote/securevote-be/internal/monitoring"
	"github.com/securevote/securevote-be/internal/services"
	"github.com/securevote/securevote-be/internal/telemetry"
	"github.com/securevote/securevote-be/internal/web"
	"github.com/securevote/securevote-be/internal/websocket"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	shutdownTracing := telemetry.Setup("securevote-be")

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}
	if err := database.Seed(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed demo data")
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	emails, err := mail.NewRenderer(cfg.PublicURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse email templates")
	}
	mailer := mail.NewLogMailer(100)

	pages, err := web.NewRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse page templates")
	}

	// Set up services
	auditService := services.NewAuditService(0, hub)
	securityService := services.NewSecurityService(services.SecurityConfig{
		Threshold:  cfg.BruteForceThreshold,
		Window:     cfg.BruteForceWindow,
		AlertEmail: cfg.AdminAlertEmail,
	}, auditService, emails, mailer, hub)

	// Set up and run the background stats updater
	statUpdater := monitoring.NewStatUpdater(cfg.StatsInterval, hub)
	go statUpdater.Run()

	statsService := services.NewStatsService(statUpdater, securityService)
	candidateService := services.NewCandidateService(db)
	ballotService := services.NewBallotService(db, services.BallotConfig{
		ProofDelay:  cfg.ProofDelay,
		CommitDelay: cfg.CommitDelay,
	}, candidateService, statsService, auditService, emails, mailer, hub)

	// Set up and run the background scheduler
	scheduler, err := monitoring.NewScheduler(monitoring.SchedulerConfig{
		SecurityScanSpec:    cfg.SecurityScanSpec,
		SubmissionSweepSpec: cfg.SubmissionSweepSpec,
		SubmissionRetention: cfg.SubmissionRetention,
	}, securityService, ballotService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure scheduler")
	}
	scheduler.Run()

	// Set up router
	svc := handlers.Services{
		Accounts:   services.NewAccountService(db),
		Candidates: candidateService,
		Ballots:    ballotService,
		Directory:  services.NewDirectoryService(db),
		Audit:      auditService,
		Security:   securityService,
		Stats:      statsService,
	}
	tokens := auth.NewManager(cfg.JWTSecret, cfg.SessionTTL)
	router := api.NewRouter(api.Options{
		CORSOrigins:   cfg.CORSOrigins,
		SecureCookies: cfg.IsProduction(),
	}, svc, tokens, pages, emails, hub)

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           otelhttp.NewHandler(router, "securevote"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("env", cfg.AppEnv).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	statUpdater.Stop() // Stop the monitoring service
	scheduler.Stop()   // Stop the scheduler

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	ballotService.Close()
	hub.Stop()

	if err := shutdownTracing(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to flush traces")
	}

	log.Info().Msg("Server exiting")
}
