package config

import "errors"

var (
	// ErrNotFound indicates the named configuration file does not exist.
	ErrNotFound = errors.New("config file not found")

	// ErrInvalid indicates the configuration failed validation.
	ErrInvalid = errors.New("invalid configuration")
)
