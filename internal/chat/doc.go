// Package chat implements the language-model boundary. The Client speaks
// the Groq OpenAI-compatible chat completions API; the Adapter projects
// conversation history into the message format, applies fixed generation
// parameters, and classifies vendor failures into stable error kinds.
package chat
