package poller

import "errors"

// ErrMissingTarget is returned when no event or distance is configured.
var ErrMissingTarget = errors.New("poller: event and distance are required")
