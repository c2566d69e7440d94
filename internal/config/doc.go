// Package config provides configuration loading and validation for the
// voice assistant backend. It handles YAML-based configuration with
// per-section struct validation and environment variable overrides for
// secrets.
package config
