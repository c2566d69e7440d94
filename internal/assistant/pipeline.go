package assistant

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/itsaahsan/Vipi-AI-Assistant/internal/audio"
	"github.com/itsaahsan/Vipi-AI-Assistant/internal/chat"
	"github.com/itsaahsan/Vipi-AI-Assistant/internal/metrics"
	"github.com/itsaahsan/Vipi-AI-Assistant/internal/session"
)

// FallbackUtterance replaces the user message when transcription fails
// outright, so a voice turn can still complete during development.
const FallbackUtterance = "I said something but the transcription isn't working yet."

// Inference obtains a model response conditioned on conversation history.
type Inference interface {
	Complete(ctx context.Context, prompt string, history []session.Exchange) (chat.Result, error)
}

// Transcriber resolves an audio file to text.
type Transcriber interface {
	TranscribeFile(ctx context.Context, path string) (string, error)
}

// Synthesizer renders text to audio bytes, nil when no audio is available.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) []byte
}

// Pipeline composes the three collaborator adapters and the session store
// into the end-to-end exchange pipeline for a single conversation turn.
type Pipeline struct {
	store       *session.Store
	inference   Inference
	transcriber Transcriber
	synthesizer Synthesizer
	tempDir     string
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// NewPipeline creates the exchange pipeline. tempDir is where uploaded
// audio is staged; it falls back to the OS temp directory when empty.
func NewPipeline(store *session.Store, inference Inference, transcriber Transcriber,
	synthesizer Synthesizer, tempDir string, logger *slog.Logger, m *metrics.Metrics) *Pipeline {

	if tempDir == "" {
		tempDir = os.TempDir()
	}

	return &Pipeline{
		store:       store,
		inference:   inference,
		transcriber: transcriber,
		synthesizer: synthesizer,
		tempDir:     tempDir,
		logger:      logger,
		metrics:     m,
	}
}

// Store exposes the session store for history endpoints.
func (p *Pipeline) Store() *session.Store {
	return p.store
}

// TextTurn runs a text-only conversation turn: validate, infer against
// bounded history, record the exchange.
func (p *Pipeline) TextTurn(ctx context.Context, sessionID, message string) (session.Exchange, error) {
	startTime := time.Now()
	p.metrics.RecordTurnStarted(session.KindText)

	message = strings.TrimSpace(message)
	if message == "" {
		p.metrics.RecordTurnFailed(session.KindText)
		return session.Exchange{}, fmt.Errorf("%w: message cannot be empty", ErrValidation)
	}

	reply, err := p.infer(ctx, sessionID, message)
	if err != nil {
		p.metrics.RecordTurnFailed(session.KindText)
		return session.Exchange{}, err
	}

	exchange := p.commit(sessionID, message, reply, session.KindText)
	p.metrics.RecordTurnCompleted(session.KindText, time.Since(startTime).Seconds())

	return exchange, nil
}

// VoiceTurn runs a voice conversation turn: stage the upload, transcribe
// (with a degraded fallback), infer, synthesize best-effort, record the
// exchange. The returned flag reports whether reply audio is available.
func (p *Pipeline) VoiceTurn(ctx context.Context, sessionID, filename string, audioData io.Reader) (session.Exchange, bool, error) {
	startTime := time.Now()
	p.metrics.RecordTurnStarted(session.KindVoice)

	if filename == "" {
		p.metrics.RecordTurnFailed(session.KindVoice)
		return session.Exchange{}, false, fmt.Errorf("%w: no audio file selected", ErrValidation)
	}

	if !audio.AllowedExtension(filename) {
		p.metrics.RecordTurnFailed(session.KindVoice)
		return session.Exchange{}, false, fmt.Errorf("%w: invalid file type", ErrValidation)
	}

	tempPath, err := p.stageUpload(filename, audioData)
	if err != nil {
		p.metrics.RecordTurnFailed(session.KindVoice)
		return session.Exchange{}, false, fmt.Errorf("failed to store uploaded audio: %w", err)
	}
	// The staged file is scoped to this turn; remove it on every exit path.
	defer func() {
		if err := os.Remove(tempPath); err != nil {
			p.logger.Warn("Failed to remove temp audio file",
				slog.String("path", tempPath),
				slog.String("error", err.Error()),
			)
		}
	}()

	userMessage := p.transcribe(ctx, tempPath)

	reply, err := p.infer(ctx, sessionID, userMessage)
	if err != nil {
		p.metrics.RecordTurnFailed(session.KindVoice)
		return session.Exchange{}, false, err
	}

	// Best-effort: a nil result means the turn completes without audio.
	speechStart := time.Now()
	speech := p.synthesizer.Synthesize(ctx, reply)
	p.metrics.RecordSynthesis(time.Since(speechStart).Seconds(), speech == nil)

	exchange := p.commit(sessionID, userMessage, reply, session.KindVoice)
	p.metrics.RecordTurnCompleted(session.KindVoice, time.Since(startTime).Seconds())

	return exchange, speech != nil, nil
}

// Speak renders text to speech for the standalone TTS endpoint. Unlike the
// voice turn, missing audio is an error here.
func (p *Pipeline) Speak(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrValidation)
	}

	startTime := time.Now()
	speech := p.synthesizer.Synthesize(ctx, text)
	p.metrics.RecordSynthesis(time.Since(startTime).Seconds(), speech == nil)

	if speech == nil {
		return nil, fmt.Errorf("failed to generate audio")
	}

	return speech, nil
}

// stageUpload persists uploaded audio to a uniquely named temp file.
func (p *Pipeline) stageUpload(filename string, audioData io.Reader) (string, error) {
	name := fmt.Sprintf("upload_%s_%s", uuid.NewString(), filepath.Base(filename))
	tempPath := filepath.Join(p.tempDir, name)

	f, err := os.Create(tempPath)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(f, audioData); err != nil {
		f.Close()
		os.Remove(tempPath)
		return "", err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return "", err
	}

	return tempPath, nil
}

// transcribe resolves staged audio to text, substituting the fallback
// utterance when transcription fails so the turn continues degraded.
func (p *Pipeline) transcribe(ctx context.Context, path string) string {
	startTime := time.Now()
	text, err := p.transcriber.TranscribeFile(ctx, path)
	p.metrics.RecordTranscription(time.Since(startTime).Seconds(), err != nil)

	if err != nil {
		p.logger.Warn("Transcription failed, using fallback utterance",
			slog.String("error", err.Error()),
		)
		p.metrics.RecordTranscriptionFallback()
		return FallbackUtterance
	}

	return text
}

// infer obtains the assistant's reply conditioned on the session's bounded
// history. A classified failure message is a valid reply; only a missing
// response aborts the turn.
func (p *Pipeline) infer(ctx context.Context, sessionID, prompt string) (string, error) {
	history := p.store.Get(sessionID)

	startTime := time.Now()
	result, err := p.inference.Complete(ctx, prompt, history)
	p.metrics.RecordInference(time.Since(startTime).Seconds())

	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoResponse, err)
	}

	if result.Failed() {
		p.metrics.RecordInferenceError(string(result.ErrKind))
	}

	return result.Text, nil
}

// commit builds the exchange and appends it under the retention bound.
func (p *Pipeline) commit(sessionID, userMessage, reply, kind string) session.Exchange {
	exchange := session.NewExchange(userMessage, reply, kind)
	p.store.Append(sessionID, exchange)

	p.metrics.RecordExchangeAppended()
	p.metrics.SetActiveSessions(p.store.ActiveSessions())

	p.logger.Info("Exchange recorded",
		slog.String("session_id", sessionID),
		slog.String("exchange_id", exchange.ID),
		slog.String("type", kind),
	)

	return exchange
}
