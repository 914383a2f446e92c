package journal

import "errors"

// ErrInvalidInput indicates a malformed journal event.
var ErrInvalidInput = errors.New("invalid journal input")
