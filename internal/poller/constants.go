package poller

import "time"

// HTTP status code constants.
const (
	StatusOK         = 200
	StatusBadRequest = 400
)

// Polling defaults. The interval matches the dashboard refresh rate.
const (
	DefaultInterval = 3 * time.Second
	DefaultTimeout  = 10 * time.Second
)
