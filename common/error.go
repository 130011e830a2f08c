package common

import "errors"

var (
	// ErrInvalidLevel .
	ErrInvalidLevel = errors.New("unknown log level letter")
	// ErrInvalidWidth .
	ErrInvalidWidth = errors.New("column width must be positive")
	// ErrBadPattern means a filter pattern failed to compile as a regex
	ErrBadPattern = errors.New("invalid filter pattern")
	// ErrNoAdb .
	ErrNoAdb = errors.New("adb binary not found in PATH")
)
