package config

import "errors"

// Errors returned by Load, LoadFile and Validate. Both are wrapped with the
// offending field or source.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
