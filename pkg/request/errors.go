package request

import "errors"

// ErrInternalServer is returned to the client when a handler panics or fails
// for a reason the client cannot act on.
var ErrInternalServer = errors.New("internal server error")
