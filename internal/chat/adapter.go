package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/itsaahsan/Vipi-AI-Assistant/internal/session"
)

// ErrorKind classifies a chat completion failure. The vendor does not
// expose a structured error enum, so kinds are derived heuristically from
// the error text.
type ErrorKind string

const (
	KindNone             ErrorKind = ""
	KindAuth             ErrorKind = "auth"
	KindRateLimit        ErrorKind = "rate_limit"
	KindModelUnavailable ErrorKind = "model_unavailable"
	KindConnectivity     ErrorKind = "connectivity"
	KindUnknown          ErrorKind = "unknown"
)

// maxHistoryExchanges bounds the context fed to the model. It matches the
// session retention bound so the model sees exactly what the store keeps.
const maxHistoryExchanges = session.DefaultMaxExchanges

// Completer is the subset of the chat client the adapter depends on.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	Model() string
}

// Result is the adapter's outcome: generated text on success, or a
// classified human-readable error message with its kind. Either way Text is
// what the assistant says back.
type Result struct {
	Text    string
	ErrKind ErrorKind
}

// Failed reports whether the result carries a classified error message
// rather than generated text.
func (r Result) Failed() bool {
	return r.ErrKind != KindNone
}

// Adapter wraps the chat client behind the conversation pipeline's
// contract: it never returns an error for a failed completion, only for a
// missing one.
type Adapter struct {
	client Completer
	logger *slog.Logger
}

// NewAdapter creates an inference adapter around the given client.
func NewAdapter(client Completer, logger *slog.Logger) *Adapter {
	return &Adapter{
		client: client,
		logger: logger,
	}
}

// Complete obtains a model response for prompt, conditioned on the bounded
// conversation history. A failed completion is classified and embedded as
// the result text; the returned error is non-nil only when the model
// produced no response at all.
func (a *Adapter) Complete(ctx context.Context, prompt string, history []session.Exchange) (Result, error) {
	messages := ProjectHistory(prompt, history)

	text, err := a.client.Complete(ctx, messages)
	if err != nil {
		kind, message := a.classify(err)

		a.logger.Warn("Chat completion failed",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)

		return Result{Text: message, ErrKind: kind}, nil
	}

	if strings.TrimSpace(text) == "" {
		return Result{}, fmt.Errorf("chat completion returned no response")
	}

	return Result{Text: text}, nil
}

// ProjectHistory emits the bounded history as alternating user/assistant
// message pairs in chronological order, with prompt as the final user turn.
func ProjectHistory(prompt string, history []session.Exchange) []Message {
	if len(history) > maxHistoryExchanges {
		history = history[len(history)-maxHistoryExchanges:]
	}

	messages := make([]Message, 0, len(history)*2+1)
	for _, exchange := range history {
		messages = append(messages,
			Message{Role: RoleUser, Content: exchange.UserMessage},
			Message{Role: RoleAssistant, Content: exchange.AIResponse},
		)
	}

	return append(messages, Message{Role: RoleUser, Content: prompt})
}

// classify maps a vendor error onto an ErrorKind and a human-readable
// message. Substring matching on known phrases is best-effort; anything
// unrecognized becomes KindUnknown.
func (a *Adapter) classify(err error) (ErrorKind, string) {
	errMsg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errMsg, "api key") ||
		strings.Contains(errMsg, "authentication") ||
		strings.Contains(errMsg, "unauthorized"):
		return KindAuth, "Error: Invalid or missing Groq API key. Please check your GROQ_API_KEY in the .env file."

	case strings.Contains(errMsg, "rate limit") ||
		strings.Contains(errMsg, "quota") ||
		strings.Contains(errMsg, "exceeded"):
		return KindRateLimit, "Error: Rate limit exceeded. Please try again later or check your Groq API usage limits."

	case strings.Contains(errMsg, "model") ||
		strings.Contains(errMsg, "not found") ||
		strings.Contains(errMsg, "does not exist"):
		return KindModelUnavailable, fmt.Sprintf("Error: AI model not available. Please check if '%s' model is available in your account.", a.client.Model())

	case strings.Contains(errMsg, "connection") ||
		strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "connect"):
		return KindConnectivity, "Error: Cannot connect to Groq API. Please check your internet connection."

	default:
		return KindUnknown, fmt.Sprintf("Error: %s. Please verify your API key and connection.", err.Error())
	}
}
