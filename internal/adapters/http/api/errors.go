package api

import "errors"

// ErrBadRequest marks a request that could not be decoded or was missing a
// required field.
var ErrBadRequest = errors.New("bad request")
