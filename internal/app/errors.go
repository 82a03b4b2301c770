package service

import "errors"

// Sentinel errors surfaced through the HTTP layer.
var (
	// ErrUnknownEvent marks a lookup for an event id the catalog does
	// not know.
	ErrUnknownEvent = errors.New("unknown event")

	// ErrUnknownSource marks an event whose source has no adapter.
	ErrUnknownSource = errors.New("no adapter for source")

	// ErrNotMeerkamp marks an all-around request against a distances
	// championship.
	ErrNotMeerkamp = errors.New("not an all-around event")

	// ErrNoMeerkampDistances marks an event/gender pair without an
	// all-around distance sequence.
	ErrNoMeerkampDistances = errors.New("no all-around distances")

	// ErrUnknownCache marks a cache refresh request of an unknown kind.
	ErrUnknownCache = errors.New("unknown cache kind")
)
