// Command stubserver is a local development stand-in for the external
// speech APIs: it accepts transcription uploads and returns a canned
// transcript, and serves a tiny MP3 payload in place of real TTS audio.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

type transcriptionResponse struct {
	Text        string    `json:"text"`
	Confidence  float32   `json:"confidence"`
	Language    string    `json:"language"`
	Duration    float64   `json:"duration"`
	ProcessedAt time.Time `json:"processed_at"`
}

func transcribeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse multipart form
	err := r.ParseMultipartForm(20 << 20) // 20 MB
	if err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	requestID := r.FormValue("request_id")
	sampleRate := r.FormValue("sample_rate")
	format := r.FormValue("format")

	// Get audio file
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Error getting audio file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	audioData, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Error reading audio file", http.StatusInternalServerError)
		return
	}

	log.Printf("TRANSCRIPTION REQUEST: request_id=%s filename=%s size=%d sample_rate=%s format=%s",
		requestID, header.Filename, len(audioData), sampleRate, format)

	// Simulate processing time
	time.Sleep(200 * time.Millisecond)

	response := transcriptionResponse{
		Text:        "This is a stub transcription of the uploaded audio",
		Confidence:  0.95,
		Language:    "en",
		Duration:    float64(len(audioData)) / (16000 * 2),
		ProcessedAt: time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// ttsHandler mimics the translate_tts query interface, returning a minimal
// MP3 frame so clients treat the response as playable audio.
func ttsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	text := r.URL.Query().Get("q")
	if text == "" {
		http.Error(w, "Missing q parameter", http.StatusBadRequest)
		return
	}

	log.Printf("TTS REQUEST: lang=%s chars=%d", r.URL.Query().Get("tl"), len(text))

	// MPEG-1 Layer III frame header followed by silence
	frame := []byte{0xFF, 0xFB, 0x90, 0x00}
	payload := append(frame, make([]byte, 104)...)

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

func main() {
	port := flag.Int("port", 8081, "Port to listen on")
	flag.Parse()

	http.HandleFunc("/transcribe", transcribeHandler)
	http.HandleFunc("/translate_tts", ttsHandler)
	http.HandleFunc("/health", healthHandler)

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("Stub speech server listening on %s", addr)
	log.Printf("  POST /transcribe     - canned transcription response")
	log.Printf("  GET  /translate_tts  - stub MP3 audio")
	log.Printf("  GET  /health         - health check")

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
