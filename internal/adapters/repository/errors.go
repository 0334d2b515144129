package repository

import "errors"

// Sentinel kinds for leaderboard store errors.
var (
	// ErrStorageUnavailable means the local medium could not be read or
	// written. Non-fatal: the session continues without persistence.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNetwork is a transient remote failure. Callers may retry the whole
	// submission; a retry can create a duplicate entry, which is accepted.
	ErrNetwork = errors.New("network error")

	// ErrRejectedWrite means the backing service refused the write. Not
	// retried.
	ErrRejectedWrite = errors.New("write rejected")
)
