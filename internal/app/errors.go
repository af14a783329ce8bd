package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrRosterTooLarge = errors.New("roster too large")
	ErrNotStarted     = errors.New("service not started")
)
