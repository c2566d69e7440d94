package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// validConfig returns a configuration that passes validation, for tests to
// mutate into invalid variants.
func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Port:    5000,
			Address: "0.0.0.0",
		},
		Chat: ChatConfig{
			Endpoint:    "https://api.groq.com/openai/v1",
			APIKey:      "test-key",
			Model:       "llama-3.1-8b-instant",
			MaxTokens:   1024,
			Temperature: 0.7,
			Timeout:     30,
		},
		Transcription: TranscriptionConfig{
			Endpoint:      "http://localhost:9000/transcribe",
			Timeout:       30,
			MaxRetries:    3,
			MaxConcurrent: 10,
		},
		TTS: TTSConfig{
			Endpoint: "https://translate.google.com/translate_tts",
			Language: "en",
			Timeout:  15,
		},
		Session: SessionConfig{
			MaxExchanges: 10,
		},
		Upload: UploadConfig{
			MaxSizeBytes: 16 << 20,
			TempDir:      os.TempDir(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid configuration",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name:        "invalid http port",
			mutate:      func(c *Config) { c.HTTP.Port = 70000 },
			expectError: true,
			errorMsg:    "port must be between 1 and 65535",
		},
		{
			name:        "empty http address",
			mutate:      func(c *Config) { c.HTTP.Address = "" },
			expectError: true,
			errorMsg:    "address cannot be empty",
		},
		{
			name:        "empty chat endpoint",
			mutate:      func(c *Config) { c.Chat.Endpoint = "" },
			expectError: true,
			errorMsg:    "endpoint cannot be empty",
		},
		{
			name:        "missing chat api key",
			mutate:      func(c *Config) { c.Chat.APIKey = "" },
			expectError: true,
			errorMsg:    "api_key cannot be empty",
		},
		{
			name:        "temperature out of range",
			mutate:      func(c *Config) { c.Chat.Temperature = 3.5 },
			expectError: true,
			errorMsg:    "temperature must be between 0 and 2",
		},
		{
			name:        "zero max tokens",
			mutate:      func(c *Config) { c.Chat.MaxTokens = 0 },
			expectError: true,
			errorMsg:    "max_tokens must be at least 1",
		},
		{
			name:        "empty transcription endpoint",
			mutate:      func(c *Config) { c.Transcription.Endpoint = "" },
			expectError: true,
			errorMsg:    "endpoint cannot be empty",
		},
		{
			name:        "negative transcription retries",
			mutate:      func(c *Config) { c.Transcription.MaxRetries = -1 },
			expectError: true,
			errorMsg:    "max_retries cannot be negative",
		},
		{
			name:        "empty tts language",
			mutate:      func(c *Config) { c.TTS.Language = "" },
			expectError: true,
			errorMsg:    "language cannot be empty",
		},
		{
			name:        "zero session retention",
			mutate:      func(c *Config) { c.Session.MaxExchanges = 0 },
			expectError: true,
			errorMsg:    "max_exchanges must be at least 1",
		},
		{
			name:        "upload limit too small",
			mutate:      func(c *Config) { c.Upload.MaxSizeBytes = 100 },
			expectError: true,
			errorMsg:    "max_size_bytes must be at least 1024",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.Logging.Level = "verbose" },
			expectError: true,
			errorMsg:    "level must be one of",
		},
		{
			name:        "invalid log format",
			mutate:      func(c *Config) { c.Logging.Format = "xml" },
			expectError: true,
			errorMsg:    "format must be 'json' or 'text'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(&config)

			err := config.Validate()
			if tt.expectError {
				if err == nil {
					t.Fatal("Expected validation error, got nil")
				}
				if tt.errorMsg != "" && !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("Expected error containing %q, got %q", tt.errorMsg, err.Error())
				}
			} else if err != nil {
				t.Fatalf("Expected valid configuration, got error: %v", err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	yaml := `
http:
  port: 5000
  address: "0.0.0.0"
chat:
  endpoint: "https://api.groq.com/openai/v1"
  api_key: "file-key"
  timeout: 30
transcription:
  endpoint: "http://localhost:9000/transcribe"
  timeout: 30
  max_retries: 3
  max_concurrent: 10
tts:
  endpoint: "https://translate.google.com/translate_tts"
  timeout: 15
logging:
  level: "info"
  format: "json"
  output: "stdout"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Omitted fields fall back to defaults.
	if config.Chat.Model != DefaultModel {
		t.Errorf("Expected default model %s, got %s", DefaultModel, config.Chat.Model)
	}

	if config.Chat.MaxTokens != DefaultMaxTokens {
		t.Errorf("Expected default max_tokens %d, got %d", DefaultMaxTokens, config.Chat.MaxTokens)
	}

	if config.Chat.Temperature != DefaultTemperature {
		t.Errorf("Expected default temperature %f, got %f", DefaultTemperature, config.Chat.Temperature)
	}

	if config.Session.MaxExchanges != DefaultMaxExchanges {
		t.Errorf("Expected default max_exchanges %d, got %d", DefaultMaxExchanges, config.Session.MaxExchanges)
	}

	if config.Upload.MaxSizeBytes != DefaultMaxUpload {
		t.Errorf("Expected default upload limit %d, got %d", int64(DefaultMaxUpload), config.Upload.MaxSizeBytes)
	}

	if config.TTS.Language != DefaultTTSLanguage {
		t.Errorf("Expected default language %s, got %s", DefaultTTSLanguage, config.TTS.Language)
	}
}

func TestLoadEnvOverridesAPIKey(t *testing.T) {
	yaml := `
http:
  port: 5000
  address: "0.0.0.0"
chat:
  endpoint: "https://api.groq.com/openai/v1"
  api_key: "file-key"
  timeout: 30
transcription:
  endpoint: "http://localhost:9000/transcribe"
  timeout: 30
  max_concurrent: 10
tts:
  endpoint: "https://translate.google.com/translate_tts"
  timeout: 15
logging:
  level: "info"
  format: "json"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	t.Setenv("GROQ_API_KEY", "env-key")

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if config.Chat.APIKey != "env-key" {
		t.Errorf("Expected GROQ_API_KEY to override file value, got %s", config.Chat.APIKey)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/no/such/config.yaml"); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{not: [valid"), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestTimeoutDurations(t *testing.T) {
	config := validConfig()

	if got := config.Chat.GetTimeoutDuration(); got != 30*time.Second {
		t.Errorf("Expected chat timeout 30s, got %v", got)
	}

	if got := config.Transcription.GetTimeoutDuration(); got != 30*time.Second {
		t.Errorf("Expected transcription timeout 30s, got %v", got)
	}

	if got := config.TTS.GetTimeoutDuration(); got != 15*time.Second {
		t.Errorf("Expected tts timeout 15s, got %v", got)
	}
}
