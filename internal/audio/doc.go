// Package audio handles WAV encoding, decoding, and format validation.
// The speech-to-text engine only accepts uncompressed mono 16-bit PCM, so
// decode enforces those preconditions before any audio reaches the engine.
package audio
