package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/itsaahsan/Vipi-AI-Assistant/internal/assistant"
	"github.com/itsaahsan/Vipi-AI-Assistant/internal/config"
	"github.com/itsaahsan/Vipi-AI-Assistant/internal/metrics"
	"github.com/itsaahsan/Vipi-AI-Assistant/internal/session"
)

const serviceVersion = "1.0.0"

// Pinger probes the chat completion API for connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HTTPServer provides the HTTP API for conversation turns and monitoring
type HTTPServer struct {
	server   *http.Server
	logger   *slog.Logger
	config   *config.Config
	pipeline *assistant.Pipeline
	pinger   Pinger
	metrics  *metrics.Metrics

	startTime time.Time
}

// NewHTTPServer creates a new HTTP API server
func NewHTTPServer(cfg config.HTTPConfig, logger *slog.Logger,
	appConfig *config.Config, pipeline *assistant.Pipeline, pinger Pinger, m *metrics.Metrics) *HTTPServer {

	h := &HTTPServer{
		logger:    logger,
		config:    appConfig,
		pipeline:  pipeline,
		pinger:    pinger,
		metrics:   m,
		startTime: time.Now(),
	}

	// Create HTTP server with routes
	mux := http.NewServeMux()
	h.setupRoutes(mux)

	h.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		Handler:      cors.AllowAll().Handler(mux),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return h
}

// Handler exposes the configured handler chain for tests.
func (h *HTTPServer) Handler() http.Handler {
	return h.server.Handler
}

// setupRoutes configures HTTP API routes
func (h *HTTPServer) setupRoutes(mux *http.ServeMux) {
	// Conversation endpoints
	mux.HandleFunc("/api/chat", h.withMetrics("/api/chat", h.handleChat))
	mux.HandleFunc("/api/voice", h.withMetrics("/api/voice", h.handleVoice))
	mux.HandleFunc("/api/tts", h.withMetrics("/api/tts", h.handleTTS))
	mux.HandleFunc("/api/conversation/", h.withMetrics("/api/conversation/{id}", h.handleConversation))
	mux.HandleFunc("/api/settings", h.withMetrics("/api/settings", h.handleSettings))

	// Health check endpoint
	mux.HandleFunc("/api/health", h.withMetrics("/api/health", h.handleHealth))

	// Prometheus metrics endpoint (no metrics needed for metrics endpoint)
	mux.Handle("/metrics", promhttp.Handler())

	// Root endpoint with service info
	mux.HandleFunc("/", h.withMetrics("/", h.handleRoot))
}

// withMetrics wraps an HTTP handler with metrics collection
func (h *HTTPServer) withMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		// Create a response writer wrapper to capture status code
		ww := &responseWriter{ResponseWriter: w, statusCode: 200}

		// Call the original handler, surfacing any fault as a generic 500
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					h.logger.Error("Handler panic",
						slog.String("endpoint", endpoint),
						slog.Any("panic", rec),
					)
					h.writeError(ww, http.StatusInternalServerError, "Internal server error")
				}
			}()
			handler(ww, r)
		}()

		// Record metrics
		duration := time.Since(startTime).Seconds()
		statusCode := fmt.Sprintf("%d", ww.statusCode)

		h.metrics.RecordHTTPRequest(r.Method, endpoint, statusCode, duration)

		// Record error if status code indicates an error
		if ww.statusCode >= 400 {
			errorType := "client_error"
			if ww.statusCode >= 500 {
				errorType = "server_error"
			}
			h.metrics.RecordHTTPError(r.Method, endpoint, errorType)
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start starts the HTTP server
func (h *HTTPServer) Start() error {
	h.logger.Info("Starting HTTP API server",
		slog.String("address", h.server.Addr),
	)

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (h *HTTPServer) Stop(ctx context.Context) error {
	h.logger.Info("Stopping HTTP API server...")

	return h.server.Shutdown(ctx)
}

// writeJSON encodes v as the JSON response body
func (h *HTTPServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError sends the JSON error envelope
func (h *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// writeTurnError maps a pipeline error to the HTTP response: validation
// failures are the caller's fault, everything else is a generic 500.
func (h *HTTPServer) writeTurnError(w http.ResponseWriter, err error) {
	if errors.Is(err, assistant.ErrValidation) {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Error("Turn failed", slog.String("error", err.Error()))

	if errors.Is(err, assistant.ErrNoResponse) {
		h.writeError(w, http.StatusInternalServerError, "Failed to get AI response")
		return
	}

	h.writeError(w, http.StatusInternalServerError, "Internal server error")
}

// sessionOrDefault resolves an omitted session ID to the shared default
func sessionOrDefault(sessionID string) string {
	if sessionID == "" {
		return session.DefaultSessionID
	}
	return sessionID
}

// chatRequest is the POST /api/chat request body
type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// handleChat implements the POST /api/chat endpoint
func (h *HTTPServer) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	sessionID := sessionOrDefault(req.SessionID)

	exchange, err := h.pipeline.TextTurn(r.Context(), sessionID, req.Message)
	if err != nil {
		h.writeTurnError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"exchange":   exchange,
		"session_id": sessionID,
	})
}

// handleVoice implements the POST /api/voice endpoint. The upload is a
// multipart form with an "audio" file part and an optional session_id field.
func (h *HTTPServer) handleVoice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	maxSize := h.config.Upload.MaxSizeBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "Audio file too large")
			return
		}
		h.writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "No audio file provided")
		return
	}
	defer file.Close()

	sessionID := sessionOrDefault(r.FormValue("session_id"))

	exchange, hasAudio, err := h.pipeline.VoiceTurn(r.Context(), sessionID, header.Filename, file)
	if err != nil {
		h.writeTurnError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"exchange":   exchange,
		"session_id": sessionID,
		"has_audio":  hasAudio,
	})
}

// ttsRequest is the POST /api/tts request body
type ttsRequest struct {
	Text string `json:"text"`
}

// handleTTS implements the POST /api/tts endpoint, returning raw MP3 bytes
func (h *HTTPServer) handleTTS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req ttsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	audio, err := h.pipeline.Speak(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, assistant.ErrValidation) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Speech synthesis failed", slog.String("error", err.Error()))
		h.writeError(w, http.StatusInternalServerError, "Failed to generate audio")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}

// handleConversation implements GET and DELETE on /api/conversation/{id}
func (h *HTTPServer) handleConversation(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimPrefix(r.URL.Path, "/api/conversation/")
	if sessionID == "" || strings.Contains(sessionID, "/") {
		h.writeError(w, http.StatusBadRequest, "Session ID required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		conversation := h.pipeline.Store().Get(sessionID)
		h.writeJSON(w, http.StatusOK, map[string]any{
			"success":      true,
			"session_id":   sessionID,
			"conversation": conversation,
			"count":        len(conversation),
		})

	case http.MethodDelete:
		h.pipeline.Store().Clear(sessionID)
		h.metrics.RecordSessionCleared()
		h.metrics.SetActiveSessions(h.pipeline.Store().ActiveSessions())
		h.writeJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"message":    "Conversation history cleared",
			"session_id": sessionID,
		})

	default:
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleSettings implements the POST /api/settings endpoint. Settings are
// not persisted yet; the payload is acknowledged and echoed back so the
// client keeps its local state authoritative.
func (h *HTTPServer) handleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var settings map[string]any
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"settings": settings,
		"message":  "Settings updated successfully",
	})
}

// handleHealth implements the GET /api/health endpoint
func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	chatStatus := "connected"
	if err := h.pinger.Ping(ctx); err != nil {
		chatStatus = "unavailable"
		h.logger.Warn("Chat API health probe failed", slog.String("error", err.Error()))
	}

	health := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startTime).String(),
		"service": map[string]any{
			"name":    "vipi-ai-assistant",
			"version": serviceVersion,
		},
		"components": map[string]any{
			"chat_api": map[string]any{
				"status": chatStatus,
				"model":  h.config.Chat.Model,
			},
			"sessions": map[string]any{
				"status":       "running",
				"active_count": h.pipeline.Store().ActiveSessions(),
			},
		},
	}

	h.writeJSON(w, http.StatusOK, health)
}

// handleRoot implements the / endpoint with service info
func (h *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if r.URL.Path != "/" {
		h.writeError(w, http.StatusNotFound, "Not found")
		return
	}

	info := map[string]any{
		"message": "Vipi AI Assistant API",
		"status":  "running",
		"version": serviceVersion,
		"endpoints": map[string]string{
			"POST /api/chat":                     "Run a text conversation turn",
			"POST /api/voice":                    "Run a voice conversation turn",
			"POST /api/tts":                      "Convert text to speech",
			"POST /api/settings":                 "Update user settings",
			"GET /api/conversation/{session}":    "Get conversation history",
			"DELETE /api/conversation/{session}": "Clear conversation history",
			"GET /api/health":                    "Service health check",
			"GET /metrics":                       "Prometheus metrics",
		},
	}

	h.writeJSON(w, http.StatusOK, info)
}
