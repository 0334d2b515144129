package tier

import "errors"

// Sentinel kinds for classification errors.
var (
	ErrInvalidScore = errors.New("invalid score")
)
