// Package tts implements the text-to-speech boundary. Synthesis is
// best-effort: every failure degrades to "no audio" so a conversation turn
// can complete without it.
package tts
