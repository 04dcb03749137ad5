package config

import "errors"

// ErrInvalidValue is returned when a configuration value is out of range or
// cannot be parsed.
var ErrInvalidValue = errors.New("invalid config value")
