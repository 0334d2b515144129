package service

import "errors"

// Sentinel kinds for submission errors.
var (
	ErrInvalidName = errors.New("invalid name")
)
