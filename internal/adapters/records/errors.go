package records

import "errors"

// ErrSkaterNotFound marks a lookup that returned no skater match.
var ErrSkaterNotFound = errors.New("skater not found")
