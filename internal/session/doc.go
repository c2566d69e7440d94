// Package session provides in-memory conversation session management.
// It stores a bounded rolling history of exchanges per session key, with
// mutex-guarded access for concurrent turns targeting the same session.
package session
