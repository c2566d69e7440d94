package transcription

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/itsaahsan/Vipi-AI-Assistant/internal/audio"
)

// fakeEngine counts invocations and returns a canned result.
type fakeEngine struct {
	text  string
	err   error
	calls int
}

func (f *fakeEngine) Transcribe(ctx context.Context, wavData []byte, sampleRate int) (string, error) {
	f.calls++
	return f.text, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validWAV(t *testing.T) []byte {
	t.Helper()
	data, err := audio.EncodeWAV([]int16{10, 20, 30, 40, 50, 60, 70, 80}, 16000)
	if err != nil {
		t.Fatalf("Failed to build test WAV: %v", err)
	}
	return data
}

func TestTranscribeSuccess(t *testing.T) {
	engine := &fakeEngine{text: "hello world"}
	transcriber := NewTranscriber(engine, testLogger())

	text, err := transcriber.Transcribe(context.Background(), validWAV(t))
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	if text != "hello world" {
		t.Errorf("Expected 'hello world', got '%s'", text)
	}

	if engine.calls != 1 {
		t.Errorf("Expected 1 engine call, got %d", engine.calls)
	}
}

func TestTranscribeEmptyResultSubstitution(t *testing.T) {
	tests := []struct {
		name   string
		result string
	}{
		{"empty string", ""},
		{"whitespace only", "   \n\t "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{text: tt.result}
			transcriber := NewTranscriber(engine, testLogger())

			text, err := transcriber.Transcribe(context.Background(), validWAV(t))
			if err != nil {
				t.Fatalf("Transcribe failed: %v", err)
			}

			if text != ClarificationPhrase {
				t.Errorf("Expected clarification phrase, got '%s'", text)
			}
		})
	}
}

func TestTranscribeRejectsInvalidAudioBeforeEngine(t *testing.T) {
	engine := &fakeEngine{text: "should never run"}
	transcriber := NewTranscriber(engine, testLogger())

	tests := []struct {
		name string
		data []byte
	}{
		{"not a wav container", []byte("this is an mp3, honest")},
		{"truncated wav", validWAV(t)[:20]},
		{"stereo wav", stereoWAV(t)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := transcriber.Transcribe(context.Background(), tt.data)
			if err == nil {
				t.Fatal("Expected error for invalid audio")
			}

			if engine.calls != 0 {
				t.Errorf("Engine must not be invoked for invalid audio, got %d calls", engine.calls)
			}
		})
	}
}

// stereoWAV corrupts the channel count of a valid file.
func stereoWAV(t *testing.T) []byte {
	t.Helper()
	data := validWAV(t)
	data[22] = 2
	return data
}

func TestTranscribeEngineFailure(t *testing.T) {
	engine := &fakeEngine{err: errors.New("model crashed")}
	transcriber := NewTranscriber(engine, testLogger())

	_, err := transcriber.Transcribe(context.Background(), validWAV(t))
	if err == nil {
		t.Fatal("Expected error when engine fails")
	}
}

func TestTranscribeFileMissing(t *testing.T) {
	engine := &fakeEngine{}
	transcriber := NewTranscriber(engine, testLogger())

	_, err := transcriber.TranscribeFile(context.Background(), "/no/such/file.wav")
	if err == nil {
		t.Fatal("Expected error for missing file")
	}

	if engine.calls != 0 {
		t.Error("Engine must not be invoked for a missing file")
	}
}

func TestTranscribeFileSuccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.wav")
	if err := os.WriteFile(path, validWAV(t), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	engine := &fakeEngine{text: "from file"}
	transcriber := NewTranscriber(engine, testLogger())

	text, err := transcriber.TranscribeFile(context.Background(), path)
	if err != nil {
		t.Fatalf("TranscribeFile failed: %v", err)
	}

	if text != "from file" {
		t.Errorf("Expected 'from file', got '%s'", text)
	}
}
