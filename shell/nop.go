package shell

import (
	"io"
	"sync"
)

// Nop is a Console with no child process behind it. Writes and resizes are
// recorded, reads return io.EOF. It is meant for tests and for hosts that
// only feed output into a session by hand.
type Nop struct {
	mu      sync.Mutex
	written []byte
	cols    uint16
	rows    uint16
	closed  bool
}

// Read always reports end of stream
func (n *Nop) Read([]byte) (int, error) {
	return 0, io.EOF
}

// Write records data
func (n *Nop) Write(data []byte) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return 0, io.ErrClosedPipe
	}
	n.written = append(n.written, data...)
	return len(data), nil
}

// Resize records the size
func (n *Nop) Resize(cols, rows uint16) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cols, n.rows = cols, rows
	return nil
}

// Close marks the console closed
func (n *Nop) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	return nil
}

// Written returns a copy of everything written so far
func (n *Nop) Written() []byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]byte(nil), n.written...)
}

// Size returns the last size passed to Resize
func (n *Nop) Size() (cols, rows uint16) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cols, n.rows
}
