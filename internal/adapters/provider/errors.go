package provider

import (
	"errors"
	"fmt"
)

// Sentinel kinds for provider errors.
var (
	ErrNoCompetition = errors.New("no matching competition")
	ErrEmptyResults  = errors.New("empty result list")
)

// StatusError reports a non-success upstream HTTP status. It is never
// retried: the upstream answered, it just had nothing good to say.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}
