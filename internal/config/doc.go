// Package config loads server configuration.
//
// Settings come from three layers, later layers winning: built-in defaults,
// an optional TOML file, and environment variables prefixed SUPERDOC_.
package config
