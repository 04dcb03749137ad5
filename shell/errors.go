package shell

import "errors"

// ErrShellNotFound is returned when the shell executable cannot be found.
var ErrShellNotFound = errors.New("shell not found")
