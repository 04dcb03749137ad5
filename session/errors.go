package session

import "errors"

// ErrSessionClosed is returned when input or resize is attempted after Close.
var ErrSessionClosed = errors.New("session is closed")
