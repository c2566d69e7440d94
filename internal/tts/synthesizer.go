package tts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// maxChunkChars is the per-request character limit of the translate TTS
// endpoint. Longer text is split on whitespace and synthesized in segments.
const maxChunkChars = 200

// Synthesizer converts text to MP3 audio via an HTTP TTS endpoint.
type Synthesizer struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

// Config contains TTS client configuration
type Config struct {
	Endpoint string // e.g. https://translate.google.com/translate_tts
	Language string
	Timeout  time.Duration
}

// NewSynthesizer creates a new TTS client
func NewSynthesizer(config Config, logger *slog.Logger) (*Synthesizer, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint cannot be empty")
	}

	if config.Language == "" {
		config.Language = "en"
	}

	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	return &Synthesizer{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}, nil
}

// Synthesize converts text to MP3 bytes. Empty or whitespace-only text
// yields nil without an engine call; any engine fault also yields nil.
// Callers must treat nil as "no audio available" and continue without it.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) []byte {
	text = strings.TrimSpace(text)
	if text == "" {
		s.logger.Debug("Skipping synthesis of empty text")
		return nil
	}

	var audio []byte
	for _, chunk := range splitText(text, maxChunkChars) {
		segment, err := s.fetchSegment(ctx, chunk)
		if err != nil {
			s.logger.Warn("Speech synthesis failed",
				slog.Int("text_len", len(text)),
				slog.String("error", err.Error()),
			)
			return nil
		}
		audio = append(audio, segment...)
	}

	if len(audio) == 0 {
		s.logger.Warn("Speech synthesis returned no audio data")
		return nil
	}

	return audio
}

// fetchSegment requests MP3 audio for a single text chunk.
func (s *Synthesizer) fetchSegment(ctx context.Context, text string) ([]byte, error) {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("tl", s.config.Language)
	params.Set("q", text)

	requestURL := s.config.Endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP error %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	return data, nil
}

// splitText breaks text into chunks of at most limit characters, preferring
// whitespace boundaries so words stay intact. The engine's limit is in
// characters, not bytes, so sizes are counted in runes.
func splitText(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	words := strings.Fields(text)
	var current strings.Builder
	currentRunes := 0

	for _, word := range words {
		wordRunes := utf8.RuneCountInString(word)

		// A single oversized word is emitted as its own chunk.
		if currentRunes == 0 {
			current.WriteString(word)
			currentRunes = wordRunes
			continue
		}

		if currentRunes+1+wordRunes > limit {
			chunks = append(chunks, current.String())
			current.Reset()
			current.WriteString(word)
			currentRunes = wordRunes
			continue
		}

		current.WriteByte(' ')
		current.WriteString(word)
		currentRunes += 1 + wordRunes
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}
