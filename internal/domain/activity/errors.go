package activity

import "errors"

// ErrNotFound indicates no live activity is registered under the id, most
// often because it already ended.
var ErrNotFound = errors.New("activity not found")
