// Package server implements the HTTP API: conversation turn endpoints,
// history access, health checks and Prometheus metrics exposure.
package server
