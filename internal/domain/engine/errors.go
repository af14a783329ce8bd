package engine

import "errors"

// Sentinel error kinds for this package.
var (
	ErrUnknownMode = errors.New("unknown assignment mode")
)
