package channel

import "errors"

// ErrChannelNotFound is returned for operations on unknown channel handles
var ErrChannelNotFound = errors.New("channel not found")
