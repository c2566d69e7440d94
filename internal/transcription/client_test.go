package transcription

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestClientTranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}

		if _, _, err := r.FormFile("file"); err != nil {
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}

		if r.FormValue("sample_rate") != "16000" {
			http.Error(w, "missing sample_rate", http.StatusBadRequest)
			return
		}

		json.NewEncoder(w).Encode(Response{Text: "transcribed text"})
	}))
	defer server.Close()

	client, err := NewClient(Config{
		Endpoint: server.URL,
		Timeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	text, err := client.Transcribe(context.Background(), []byte("fake wav bytes"), 16000)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	if text != "transcribed text" {
		t.Errorf("Expected 'transcribed text', got '%s'", text)
	}

	stats := client.GetStats()
	if stats.SuccessRequests != 1 {
		t.Errorf("Expected 1 successful request, got %d", stats.SuccessRequests)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			http.Error(w, "transient failure", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(Response{Text: "second try"})
	}))
	defer server.Close()

	client, err := NewClient(Config{
		Endpoint:   server.URL,
		Timeout:    5 * time.Second,
		MaxRetries: 2,
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	text, err := client.Transcribe(context.Background(), []byte("audio"), 16000)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	if text != "second try" {
		t.Errorf("Expected 'second try', got '%s'", text)
	}

	if got := attempts.Load(); got != 2 {
		t.Errorf("Expected 2 attempts, got %d", got)
	}

	if stats := client.GetStats(); stats.TotalRetries != 1 {
		t.Errorf("Expected 1 retry, got %d", stats.TotalRetries)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := NewClient(Config{
		Endpoint:   server.URL,
		Timeout:    5 * time.Second,
		MaxRetries: 3,
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	if _, err := client.Transcribe(context.Background(), []byte("audio"), 16000); err == nil {
		t.Fatal("Expected error for 400 response")
	}

	if got := attempts.Load(); got != 1 {
		t.Errorf("Expected 1 attempt for non-retryable error, got %d", got)
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Error("Expected error for empty endpoint")
	}
}
