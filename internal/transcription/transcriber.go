package transcription

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/itsaahsan/Vipi-AI-Assistant/internal/audio"
)

// ClarificationPhrase is returned in place of an empty transcript so the
// assistant always has something to respond to.
const ClarificationPhrase = "I couldn't understand the audio clearly. Could you please repeat that?"

// Engine transcribes validated mono 16-bit PCM audio. The engine only
// promises to handle audio that already satisfies those preconditions.
type Engine interface {
	Transcribe(ctx context.Context, wavData []byte, sampleRate int) (string, error)
}

// Transcriber validates audio input and normalizes engine results. A failed
// transcription is reported as an error value, never a panic, so the caller
// can apply its degraded fallback and keep the turn alive.
type Transcriber struct {
	engine Engine
	logger *slog.Logger
}

// NewTranscriber creates a transcriber around the given engine.
func NewTranscriber(engine Engine, logger *slog.Logger) *Transcriber {
	return &Transcriber{
		engine: engine,
		logger: logger,
	}
}

// TranscribeFile transcribes the audio file at path. The file must decode to
// uncompressed mono 16-bit PCM WAV; any other container or codec is rejected
// before the engine is invoked. An empty engine transcript is substituted
// with ClarificationPhrase, so a successful result is never empty.
func (t *Transcriber) TranscribeFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("audio file does not exist or cannot be read: %w", err)
	}

	return t.Transcribe(ctx, data)
}

// Transcribe transcribes in-memory audio data under the same preconditions
// as TranscribeFile.
func (t *Transcriber) Transcribe(ctx context.Context, data []byte) (string, error) {
	// The engine only handles uncompressed mono 16-bit PCM. Reject anything
	// else here instead of letting the engine fail on undecodable input.
	samples, sampleRate, err := audio.DecodeWAV(data)
	if err != nil {
		return "", fmt.Errorf("unsupported audio format: %w", err)
	}

	t.logger.Debug("Audio validated for transcription",
		slog.Int("sample_rate", sampleRate),
		slog.Float64("duration_seconds", float64(len(samples))/float64(sampleRate)),
	)

	text, err := t.engine.Transcribe(ctx, data, sampleRate)
	if err != nil {
		t.logger.Warn("Transcription engine failed",
			slog.Int("sample_rate", sampleRate),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("could not transcribe audio: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		t.logger.Info("Transcription returned empty result, substituting clarification phrase")
		return ClarificationPhrase, nil
	}

	return text, nil
}
