package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted        = errors.New("service not started")
	ErrNoUpstream        = errors.New("no upstream client configured")
	ErrInvalidDisplay    = errors.New("unknown display mode")
	ErrInvalidFilterMode = errors.New("unknown filter mode")
	ErrInvalidLimit      = errors.New("invalid result limit")
)
