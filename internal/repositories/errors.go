package repositories

import "errors"

// ErrNotFound is returned when a referenced record does not exist.
// The handler layer maps it to a client-facing 404.
var ErrNotFound = errors.New("record not found")
