package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"deckcast/internal/api"
	"deckcast/pkg/config"
	"deckcast/pkg/db"
	"deckcast/pkg/imagesearch"
	"deckcast/pkg/logging"
	"deckcast/pkg/pipeline"
	"deckcast/pkg/render"
	"deckcast/pkg/request"
	"deckcast/pkg/script"
	"deckcast/pkg/storage"
	"deckcast/pkg/store"
	"deckcast/pkg/tracker"
	"deckcast/pkg/tts"
	"deckcast/pkg/tts/edgetts"
	"deckcast/pkg/tts/elevenlabs"
	"deckcast/pkg/version"
	"deckcast/pkg/video"
)

const configPath = "configs/deckcast.yaml"

var initConfig = flag.Bool("init-config", false, "Generate default config file and exit")

func main() {
	flag.Parse()

	// Handle --init-config flag
	if *initConfig {
		if err := config.GenerateDefault(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config file generated: " + configPath)
		return
	}

	// Secrets may come from a local .env during development
	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded environment from .env")
	}

	if err := run(context.Background(), configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	appCfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&appCfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("Deckcast Started", "version", version.Version)

	dbConn, err := db.Init(appCfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbConn.Close()
	st := store.NewSQLiteStore(dbConn)

	tr := tracker.New()
	reqClient := request.New(appCfg.Request, st, tr)

	// Collaborators
	searcher := imagesearch.New(appCfg.ImageSearch, reqClient)
	uploader := storage.New(appCfg.Storage, reqClient)
	ttsProvider, err := initTTS(appCfg, reqClient, tr)
	if err != nil {
		return err
	}

	// Rendering & assembly
	renderer := render.NewRenderer(render.LoadFonts(appCfg.Video.FontDir))
	backgrounds := render.NewBackgroundResolver(searcher)
	runner := video.NewExecRunner(appCfg.Video.FFmpeg, appCfg.Video.FFprobe)
	assembler := video.NewAssembler(runner, appCfg.Video.FrameRate)

	orch := pipeline.New(backgrounds, renderer, assembler, uploader, st, reqClient, tr, appCfg.Video.WorkDir)

	// Script generation is optional; without an LLM key the endpoint is off.
	var scripts api.ScriptGenerator
	if gemini, err := script.NewGeminiClient(appCfg.LLM, "logs/gemini.log", tr); err != nil {
		slog.Warn("Script generation disabled", "error", err)
	} else {
		scripts = script.NewGenerator(gemini)
		defer gemini.Close()
	}

	return runServer(ctx, appCfg, orch, ttsProvider, uploader, scripts, st, tr)
}

func initTTS(cfg *config.Config, rc *request.Client, tr *tracker.Tracker) (tts.Provider, error) {
	switch cfg.TTS.Engine {
	case "", "elevenlabs":
		return elevenlabs.NewProvider(cfg.TTS.ElevenLabs, rc), nil
	case "edge-tts":
		return edgetts.NewProvider(cfg.TTS.EdgeTTS, tr), nil
	default:
		return nil, fmt.Errorf("unknown tts engine: %q", cfg.TTS.Engine)
	}
}

func runServer(ctx context.Context, cfg *config.Config, orch *pipeline.Orchestrator, ttsProvider tts.Provider, uploader *storage.Client, scripts api.ScriptGenerator, st store.Store, tr *tracker.Tracker) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	podcastH := api.NewPodcastHandler(orch, ttsProvider, uploader, scripts, st)
	statsH := api.NewStatsHandler(tr)

	srv := api.NewServer(cfg.Server.Address, podcastH, statsH, shutdownFunc)
	srv.Handler = loggingMiddleware(srv.Handler)

	return runServerLifecycle(ctx, srv, quit)
}

func runServerLifecycle(ctx context.Context, srv *http.Server, quit chan os.Signal) error {
	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.RequestLogger.Info("Request Processed", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
