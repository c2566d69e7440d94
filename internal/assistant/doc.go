// Package assistant implements the conversation exchange pipeline: it
// resolves an utterance to text, obtains a model response conditioned on
// bounded session history, optionally renders the reply to speech, and
// commits the exchange to session state.
package assistant
