// Package transcription implements the speech-to-text boundary.
// The Client talks to the transcription HTTP API with retries, backoff, and
// a concurrency cap; the Transcriber validates audio preconditions and
// normalizes the engine's result for the conversation pipeline.
package transcription
