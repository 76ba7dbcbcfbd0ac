package usecases

import "errors"

// ErrInvalidRequest marks errors caused by bad caller input, so transports
// can map them to a client error instead of a server error.
var ErrInvalidRequest = errors.New("invalid request")
