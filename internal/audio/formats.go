package audio

import (
	"path/filepath"
	"strings"
)

// allowedExtensions lists the audio container extensions accepted for upload.
// Acceptance here does not imply the pipeline can decode the format; non-WAV
// containers are rejected later, at the transcription boundary.
var allowedExtensions = map[string]bool{
	"wav":  true,
	"mp3":  true,
	"ogg":  true,
	"webm": true,
	"m4a":  true,
	"mp4":  true,
	"aac":  true,
	"flac": true,
	"opus": true,
}

// AllowedExtension reports whether the filename carries an accepted audio
// extension. Filenames without an extension are rejected.
func AllowedExtension(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return false
	}
	return allowedExtensions[ext]
}
