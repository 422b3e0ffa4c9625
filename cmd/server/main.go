package main

import (
	"context"
	"expvar"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"draftforge/internal/auth"
	"draftforge/internal/capabilities"
	"draftforge/internal/config"
	"draftforge/internal/handler"
	"draftforge/internal/middleware"
	"draftforge/internal/repository/memory"
	serviceLLM "draftforge/internal/service/llm"
	serviceProposal "draftforge/internal/service/proposal"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
	)

	// Token verification is optional; without a JWKS URL every request
	// passes through, which is how local development runs.
	var verifier auth.TokenVerifier
	if cfg.JWKSURL != "" {
		v, err := auth.NewJWKSVerifier(cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer v.Close()
		verifier = v
	} else {
		logger.Warn("JWKS_URL not set, authentication disabled")
	}

	// Initialize capability registry
	capabilityRegistry, err := capabilities.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize capability registry: %v", err)
	}
	logger.Info("capability registry initialized")

	// Create in-memory stores
	archiveStore := memory.NewArchiveStore(logger)
	runStore := memory.NewRunStore(archiveStore, logger)
	draftStore := memory.NewDraftStore(cfg.EnforceUniqueDraftNames, logger)

	// Setup LLM orchestrator
	orchestrator, err := serviceLLM.SetupOrchestrator(cfg, capabilityRegistry, logger)
	if err != nil {
		log.Fatalf("Failed to setup LLM orchestrator: %v", err)
	}

	// Create services
	runService := serviceProposal.NewRunService(runStore, orchestrator, logger)
	draftService := serviceProposal.NewDraftService(draftStore, logger)

	// Create handlers
	runHandler := handler.NewRunHandler(runService, logger)
	draftHandler := handler.NewDraftHandler(draftService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check and telemetry
	mux.HandleFunc("GET /health", handler.Health)
	mux.Handle("GET /debug/vars", expvar.Handler())

	// Run routes
	mux.HandleFunc("POST /runs", runHandler.CreateRun)
	mux.HandleFunc("GET /runs", runHandler.ListRuns)
	mux.HandleFunc("GET /runs/{id}", runHandler.GetRun)
	mux.HandleFunc("PATCH /runs/{id}", runHandler.UpdateRun)

	// Deliverable routes
	mux.HandleFunc("POST /runs/{id}/deliverables", runHandler.ReplaceDeliverables)
	mux.HandleFunc("PATCH /deliverables/{id}", runHandler.UpdateDeliverable)

	// LLM collaboration routes
	mux.HandleFunc("POST /runs/{id}/llm/plan", runHandler.GeneratePlan)
	mux.HandleFunc("POST /runs/{id}/llm/suggest", runHandler.RequestSuggestions)
	mux.HandleFunc("POST /runs/{id}/llm/commit-change", runHandler.CommitChange)
	mux.HandleFunc("PATCH /runs/{id}/llm/suggestions/{messageId}", runHandler.SetSuggestionStatus)

	// Export and run archives
	mux.HandleFunc("POST /runs/{id}/export", runHandler.ExportRun)
	mux.HandleFunc("GET /archives", runHandler.ListArchives)
	mux.HandleFunc("GET /archives/{id}", runHandler.GetArchive)

	// Draft routes
	mux.HandleFunc("POST /drafts", draftHandler.CreateDraft)
	mux.HandleFunc("GET /drafts/{id}", draftHandler.GetDraft)
	mux.HandleFunc("PATCH /drafts/{id}", draftHandler.UpdateDraft)
	mux.HandleFunc("GET /projects/{projectId}/drafts", draftHandler.ListDrafts)

	// Draft archive routes
	mux.HandleFunc("POST /archive", draftHandler.ArchiveDraft)
	mux.HandleFunc("GET /archive/{id}", draftHandler.GetArchivedDraft)

	// Build middleware chain
	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	var root http.Handler = mux
	root = middleware.Auth(verifier)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	// All state is in memory; clearing it makes teardown explicit.
	runStore.Reset(context.Background())
	draftStore.Reset(context.Background())

	logger.Info("server stopped")
}
