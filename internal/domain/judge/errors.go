package judge

import "errors"

// Sentinel kinds for judge errors.
var (
	ErrUnavailable = errors.New("judge unavailable")
	ErrBadVerdict  = errors.New("malformed judge verdict")
)
