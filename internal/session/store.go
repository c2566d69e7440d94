package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Exchange kinds recorded in conversation history.
const (
	KindText  = "text"
	KindVoice = "voice"
)

// DefaultSessionID is used when the caller does not supply a session key.
const DefaultSessionID = "default"

// DefaultMaxExchanges is the retention bound applied per session. The same
// bound is used when projecting history into inference context, so what the
// user sees and what the model was conditioned on stay consistent.
const DefaultMaxExchanges = 10

// Exchange represents one conversational turn: the user's utterance
// (post-transcription for voice turns) and the assistant's reply.
// Exchanges are immutable once appended.
type Exchange struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	UserMessage string    `json:"user_message"`
	AIResponse  string    `json:"ai_response"`
	Type        string    `json:"type"`
}

// NewExchange creates an exchange with a generated ID and current timestamp.
func NewExchange(userMessage, aiResponse, kind string) Exchange {
	return Exchange{
		ID:          uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		UserMessage: userMessage,
		AIResponse:  aiResponse,
		Type:        kind,
	}
}

// Store keeps per-session conversation history in memory. Sessions are
// created implicitly on first append, removed on Clear, and never expire.
// History does not survive a process restart.
type Store struct {
	sessions     map[string][]Exchange
	maxExchanges int
	logger       *slog.Logger
	mu           sync.RWMutex
}

// NewStore creates a session store with the given retention bound.
// A bound of zero or less falls back to DefaultMaxExchanges.
func NewStore(maxExchanges int, logger *slog.Logger) *Store {
	if maxExchanges <= 0 {
		maxExchanges = DefaultMaxExchanges
	}

	return &Store{
		sessions:     make(map[string][]Exchange),
		maxExchanges: maxExchanges,
		logger:       logger,
	}
}

// Get returns a copy of the session's exchange history in chronological
// order. Unknown sessions yield an empty slice, never an error.
func (s *Store) Get(sessionID string) []Exchange {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, exists := s.sessions[sessionID]
	if !exists {
		return []Exchange{}
	}

	// Copy so callers cannot mutate stored history.
	out := make([]Exchange, len(history))
	copy(out, history)
	return out
}

// Append adds an exchange to the session, creating the session if absent,
// then truncates the history to the most recent maxExchanges entries,
// discarding the oldest first.
func (s *Store) Append(sessionID string, exchange Exchange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.sessions[sessionID], exchange)
	if len(history) > s.maxExchanges {
		trimmed := make([]Exchange, s.maxExchanges)
		copy(trimmed, history[len(history)-s.maxExchanges:])
		history = trimmed
	}
	s.sessions[sessionID] = history

	s.logger.Debug("Exchange appended",
		slog.String("session_id", sessionID),
		slog.String("exchange_id", exchange.ID),
		slog.String("type", exchange.Type),
		slog.Int("history_len", len(history)),
	)
}

// Clear removes the session entirely. Clearing an unknown session is a no-op.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sessionID]; !exists {
		return
	}

	delete(s.sessions, sessionID)

	s.logger.Info("Conversation cleared",
		slog.String("session_id", sessionID),
	)
}

// Count returns the number of exchanges stored for the session.
func (s *Store) Count(sessionID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions[sessionID])
}

// ActiveSessions returns the number of sessions currently held.
func (s *Store) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
