package loadgen

import "time"

// HTTP status code constants.
const (
	StatusOK      = 200
	StatusCreated = 201
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
	positionSampleSize   = 25
)

// progressInterval paces progress reporting during dispatch.
const progressInterval = 1 * time.Second
