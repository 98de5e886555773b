package network

import "errors"

// ErrOutOfRange is returned for any reference to a neuron or connection
// outside the allocated set, or outside the block an operation requires.
var ErrOutOfRange = errors.New("out of range")
