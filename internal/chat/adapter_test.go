package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/itsaahsan/Vipi-AI-Assistant/internal/session"
)

// fakeCompleter returns a canned completion or error.
type fakeCompleter struct {
	text     string
	err      error
	received []Message
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	f.received = messages
	return f.text, f.err
}

func (f *fakeCompleter) Model() string { return "llama-3.1-8b-instant" }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAdapterCompleteSuccess(t *testing.T) {
	completer := &fakeCompleter{text: "Hi! How can I help?"}
	adapter := NewAdapter(completer, testLogger())

	result, err := adapter.Complete(context.Background(), "Hello", nil)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if result.Failed() {
		t.Errorf("Expected success, got error kind %s", result.ErrKind)
	}

	if result.Text != "Hi! How can I help?" {
		t.Errorf("Unexpected result text: %s", result.Text)
	}
}

func TestAdapterCompleteEmptyResponseIsFatal(t *testing.T) {
	completer := &fakeCompleter{text: "   "}
	adapter := NewAdapter(completer, testLogger())

	if _, err := adapter.Complete(context.Background(), "Hello", nil); err == nil {
		t.Fatal("Expected error for empty completion")
	}
}

func TestAdapterErrorClassification(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedKind ErrorKind
		msgContains  string
	}{
		{
			name:         "invalid api key",
			err:          errors.New("HTTP error 401: Invalid API Key provided"),
			expectedKind: KindAuth,
			msgContains:  "GROQ_API_KEY",
		},
		{
			name:         "authentication failure",
			err:          errors.New("authentication failed for request"),
			expectedKind: KindAuth,
			msgContains:  "API key",
		},
		{
			name:         "rate limited",
			err:          errors.New("HTTP error 429: Rate limit reached for requests"),
			expectedKind: KindRateLimit,
			msgContains:  "Rate limit exceeded",
		},
		{
			name:         "quota exhausted",
			err:          errors.New("quota exhausted for organization"),
			expectedKind: KindRateLimit,
			msgContains:  "usage limits",
		},
		{
			name:         "unknown model",
			err:          errors.New("HTTP error 404: The model `nope` does not exist"),
			expectedKind: KindModelUnavailable,
			msgContains:  "llama-3.1-8b-instant",
		},
		{
			name:         "network unreachable",
			err:          errors.New("dial tcp: connection refused"),
			expectedKind: KindConnectivity,
			msgContains:  "internet connection",
		},
		{
			name:         "request timeout",
			err:          errors.New("context deadline exceeded (Client.Timeout)"),
			expectedKind: KindRateLimit, // "exceeded" matches the quota branch first
			msgContains:  "Rate limit",
		},
		{
			name:         "unclassified",
			err:          errors.New("something strange happened"),
			expectedKind: KindUnknown,
			msgContains:  "verify your API key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &fakeCompleter{err: tt.err}
			adapter := NewAdapter(completer, testLogger())

			result, err := adapter.Complete(context.Background(), "Hello", nil)
			if err != nil {
				t.Fatalf("Classified failures must not return an error, got: %v", err)
			}

			if result.ErrKind != tt.expectedKind {
				t.Errorf("Expected kind %s, got %s", tt.expectedKind, result.ErrKind)
			}

			if !result.Failed() {
				t.Error("Expected Failed() to be true")
			}

			if !strings.Contains(result.Text, tt.msgContains) {
				t.Errorf("Expected message containing %q, got %q", tt.msgContains, result.Text)
			}
		})
	}
}

func TestProjectHistoryEmpty(t *testing.T) {
	messages := ProjectHistory("Hello", nil)

	if len(messages) != 1 {
		t.Fatalf("Expected 1 message for empty history, got %d", len(messages))
	}

	if messages[0].Role != RoleUser || messages[0].Content != "Hello" {
		t.Errorf("Unexpected final message: %+v", messages[0])
	}
}

func TestProjectHistoryPairs(t *testing.T) {
	history := []session.Exchange{
		{UserMessage: "first question", AIResponse: "first answer"},
		{UserMessage: "second question", AIResponse: "second answer"},
	}

	messages := ProjectHistory("third question", history)

	if len(messages) != 5 {
		t.Fatalf("Expected 5 messages, got %d", len(messages))
	}

	expected := []Message{
		{Role: RoleUser, Content: "first question"},
		{Role: RoleAssistant, Content: "first answer"},
		{Role: RoleUser, Content: "second question"},
		{Role: RoleAssistant, Content: "second answer"},
		{Role: RoleUser, Content: "third question"},
	}

	for i, msg := range expected {
		if messages[i] != msg {
			t.Errorf("Message %d: expected %+v, got %+v", i, msg, messages[i])
		}
	}
}

func TestProjectHistoryBounded(t *testing.T) {
	history := make([]session.Exchange, 15)
	for i := range history {
		history[i] = session.Exchange{
			UserMessage: fmt.Sprintf("q%d", i),
			AIResponse:  fmt.Sprintf("a%d", i),
		}
	}

	messages := ProjectHistory("latest", history)

	// 10 exchanges * 2 messages + the new prompt.
	if len(messages) != 21 {
		t.Fatalf("Expected 21 messages, got %d", len(messages))
	}

	// The oldest five exchanges must be dropped.
	if messages[0].Content != "q5" {
		t.Errorf("Expected history to start at q5, got %s", messages[0].Content)
	}

	if messages[len(messages)-1].Content != "latest" {
		t.Errorf("Expected prompt as final message, got %s", messages[len(messages)-1].Content)
	}
}

func TestAdapterSendsProjectedHistory(t *testing.T) {
	completer := &fakeCompleter{text: "ok"}
	adapter := NewAdapter(completer, testLogger())

	history := []session.Exchange{{UserMessage: "hi", AIResponse: "hello"}}
	if _, err := adapter.Complete(context.Background(), "again", history); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if len(completer.received) != 3 {
		t.Fatalf("Expected 3 messages sent to client, got %d", len(completer.received))
	}
}
