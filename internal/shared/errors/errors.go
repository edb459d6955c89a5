package errors

import "errors"

// Input errors
var (
	ErrNoTargetSource     = errors.New("either --url or --list is required")
	ErrListUnreadable     = errors.New("target list cannot be read")
	ErrInvalidConcurrency = errors.New("concurrency must be at least 1")
	ErrInvalidTimeout     = errors.New("timeout must be at least 1 second")
	ErrInvalidRate        = errors.New("rate must not be negative")
	ErrUnknownFormat      = errors.New("unknown output format")
)

// Resolver errors
var (
	ErrNoNameservers = errors.New("no DNS nameservers available")
)
