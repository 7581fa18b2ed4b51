package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/zenith/internal/ai"
	"github.com/dvloznov/zenith/internal/api/handlers"
	"github.com/dvloznov/zenith/internal/api/middleware"
	"github.com/dvloznov/zenith/internal/config"
	"github.com/dvloznov/zenith/internal/gcsuploader"
	"github.com/dvloznov/zenith/internal/logger"
	"github.com/dvloznov/zenith/internal/session"
	"github.com/dvloznov/zenith/internal/store/sqlite"
)

func main() {
	var (
		configPath = flag.String("config", os.Getenv("ZENITH_CONFIG"), "Path to a YAML or TOML config file (or set ZENITH_CONFIG env)")
		port       = flag.String("port", "", "HTTP server port (overrides config)")
		dbPath     = flag.String("db", "", "SQLite session file (overrides config)")
		memory     = flag.Bool("memory", false, "Keep the session in memory only")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		l := logger.New()
		l.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}
	if *memory {
		cfg.Store.Path = ""
	}

	log, err := logger.Setup(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: "zenith-api"})
	if err != nil {
		l := logger.New()
		l.Fatal().Err(err).Msg("Failed to configure logger")
	}

	ctx := context.Background()

	var gateway ai.Gateway
	if cfg.GeminiEnabled() {
		gw, err := ai.NewGeminiGateway(ctx, cfg.GatewayConfig(), log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Gemini gateway")
		}
		gateway = gw
	} else {
		log.Warn().Msg("No GEMINI_API_KEY or project configured - AI features will fail")
	}

	var receipts gcsuploader.ReceiptStore
	if cfg.GCS.Bucket != "" {
		store, err := gcsuploader.NewGCSReceiptStore(ctx, cfg.GCS.Bucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create receipt store")
		}
		defer store.Close()
		receipts = store
	} else {
		log.Warn().Msg("No GCS bucket configured - scanning by gs:// URI is disabled")
	}

	sess := session.New(session.Options{
		Gateway:   gateway,
		Planner:   cfg.PlannerOptions(),
		Workers:   cfg.Planner.Workers,
		QueueSize: cfg.Planner.QueueSize,
		Logger:    log,
	})

	var repo *sqlite.Store
	if cfg.Store.Path != "" {
		repo, err = sqlite.Open(cfg.Store.Path)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("Failed to open session store")
		}
		defer repo.Close()

		if err := sess.Load(ctx, repo); err != nil {
			log.Fatal().Err(err).Msg("Failed to load session")
		}
		log.Info().
			Str("path", cfg.Store.Path).
			Int("goals", len(sess.Goals())).
			Int64("points", sess.Points()).
			Msg("Session loaded")
	}

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()
	if err := sess.Start(workerCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start plan workers")
	}

	mux := http.NewServeMux()
	handlers.New(sess, receipts, log).Register(mux)

	handler := middleware.Chain(mux,
		middleware.Recovery(log),
		middleware.RequestID,
		middleware.Logger(log),
		middleware.CORS,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute, // plan requests with ?wait=true
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	shutdown(sess, server, repo, log)
	log.Info().Msg("Server exited")
}

// shutdown stops accepting requests, lets in-flight plans commit and then
// persists the session.
func shutdown(sess *session.Session, server *http.Server, repo *sqlite.Store, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if err := sess.Stop(ctx); err != nil {
		log.Error().Err(err).Msg("Error stopping plan workers")
	}

	if repo == nil {
		return
	}
	if err := sess.Save(ctx, repo); err != nil {
		log.Error().Err(err).Msg("Failed to save session")
		return
	}
	log.Info().Int64("points", sess.Points()).Msg("Session saved")
}
