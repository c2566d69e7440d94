package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/itsaahsan/Vipi-AI-Assistant/internal/assistant"
	"github.com/itsaahsan/Vipi-AI-Assistant/internal/chat"
	"github.com/itsaahsan/Vipi-AI-Assistant/internal/config"
	"github.com/itsaahsan/Vipi-AI-Assistant/internal/metrics"
	"github.com/itsaahsan/Vipi-AI-Assistant/internal/server"
	"github.com/itsaahsan/Vipi-AI-Assistant/internal/session"
	"github.com/itsaahsan/Vipi-AI-Assistant/internal/transcription"
	"github.com/itsaahsan/Vipi-AI-Assistant/internal/tts"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "vipi-ai-assistant"
	serviceVersion    = "1.0.0"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load .env if present; environment variables override file config
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Failed to load .env file: %v\n", err)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger based on configuration
	logger := initLogger(cfg.Logging)

	// Log service startup
	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("config_path", *configPath),
	)

	// Log configuration summary (without sensitive data)
	logger.Info("Configuration loaded",
		slog.Int("http_port", cfg.HTTP.Port),
		slog.String("bind_address", cfg.HTTP.Address),
		slog.String("chat_model", cfg.Chat.Model),
		slog.String("chat_endpoint", cfg.Chat.Endpoint),
		slog.String("transcription_endpoint", cfg.Transcription.Endpoint),
		slog.String("tts_endpoint", cfg.TTS.Endpoint),
		slog.Int("max_exchanges", cfg.Session.MaxExchanges),
		slog.Int64("max_upload_bytes", cfg.Upload.MaxSizeBytes),
		slog.String("log_level", cfg.Logging.Level),
	)

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Prometheus metrics
	appMetrics := metrics.NewMetrics()
	logger.Info("Prometheus metrics initialized")

	// Initialize the chat completion client and its classifying adapter
	chatClient, err := chat.NewClient(chat.Config{
		Endpoint:    cfg.Chat.Endpoint,
		APIKey:      cfg.Chat.APIKey,
		Model:       cfg.Chat.Model,
		MaxTokens:   cfg.Chat.MaxTokens,
		Temperature: cfg.Chat.Temperature,
		Timeout:     cfg.Chat.GetTimeoutDuration(),
	})
	if err != nil {
		logger.Error("Failed to create chat client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	inference := chat.NewAdapter(chatClient, logger)

	// Initialize the transcription client and validating transcriber
	transcriptionClient, err := transcription.NewClient(transcription.Config{
		Endpoint:      cfg.Transcription.Endpoint,
		APIKey:        cfg.Transcription.APIKey,
		Timeout:       cfg.Transcription.GetTimeoutDuration(),
		MaxRetries:    cfg.Transcription.MaxRetries,
		MaxConcurrent: cfg.Transcription.MaxConcurrent,
	})
	if err != nil {
		logger.Error("Failed to create transcription client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	transcriber := transcription.NewTranscriber(transcriptionClient, logger)

	// Initialize the speech synthesizer
	synthesizer, err := tts.NewSynthesizer(tts.Config{
		Endpoint: cfg.TTS.Endpoint,
		Language: cfg.TTS.Language,
		Timeout:  cfg.TTS.GetTimeoutDuration(),
	}, logger)
	if err != nil {
		logger.Error("Failed to create TTS synthesizer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize session store and exchange pipeline
	store := session.NewStore(cfg.Session.MaxExchanges, logger)
	pipeline := assistant.NewPipeline(store, inference, transcriber, synthesizer,
		cfg.Upload.TempDir, logger, appMetrics)
	logger.Info("Exchange pipeline initialized",
		slog.Int("max_exchanges", cfg.Session.MaxExchanges),
	)

	// Probe chat API connectivity; degraded service still starts
	probeCtx, probeCancel := context.WithTimeout(ctx, 10*time.Second)
	if err := chatClient.Ping(probeCtx); err != nil {
		logger.Warn("Chat API connectivity probe failed, starting anyway",
			slog.String("error", err.Error()),
		)
	} else {
		logger.Info("Chat API connectivity verified",
			slog.String("model", cfg.Chat.Model),
		)
	}
	probeCancel()

	// Initialize and start HTTP API server
	httpServer := server.NewHTTPServer(cfg.HTTP, logger, cfg, pipeline, chatClient, appMetrics)
	if err := httpServer.Start(); err != nil {
		logger.Error("Failed to start HTTP server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Service started successfully, waiting for signals...",
		slog.String("http_address", fmt.Sprintf("%s:%d", cfg.HTTP.Address, cfg.HTTP.Port)),
	)

	// Wait for shutdown signal
	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context cancelled, shutting down")
	}

	logger.Info("Starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("Error stopping HTTP server", slog.String("error", err.Error()))
	}

	// Final statistics
	transcriptionStats := transcriptionClient.GetStats()
	logger.Info("Final service statistics",
		slog.Int("active_sessions", store.ActiveSessions()),
		slog.Uint64("transcription_requests", transcriptionStats.TotalRequests),
		slog.Uint64("transcription_failures", transcriptionStats.FailedRequests),
	)

	logger.Info("Service stopped")
}

// initLogger creates and configures the structured logger based on configuration
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	// Parse log level
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo // default fallback
	}

	// Configure handler options
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug, // Add source info for debug level
	}

	// Determine output destination
	var output *os.File
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		// Assume it's a file path
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stdout\n", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}

	// Create handler based on format
	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	case "text", "":
		handler = slog.NewTextHandler(output, opts)
	default:
		// Default to text format
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
