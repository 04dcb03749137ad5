package session

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/javanhut/ravenvt/grid"
	"github.com/javanhut/ravenvt/keybindings"
	"github.com/javanhut/ravenvt/parser"
	"github.com/javanhut/ravenvt/shell"
)

const readBufferSize = 4096

// Session is one embedded terminal: a screen buffer, the parser feeding it
// and the console the child process runs behind.
//
// Output is read on a background goroutine; keyboard, resize and scroll
// calls come from the host. Both take mu, which guards the grid and parser
// and is never held across console I/O.
type Session struct {
	id      string
	mu      sync.Mutex
	grid    *grid.Grid
	parser  *parser.Parser
	console shell.Console
	palette grid.Palette
	logger  *slog.Logger

	startOnce sync.Once
	closeOnce sync.Once
	closed    atomic.Bool
	closeErr  error
	done      chan struct{}
	err       error
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the logger for the session and its parser
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithScrollback bounds the history kept above the live screen
func WithScrollback(lines int) Option {
	return func(s *Session) {
		s.grid.SetScrollbackLimit(lines)
	}
}

// WithPalette sets the palette renderers use to resolve colors
func WithPalette(p grid.Palette) Option {
	return func(s *Session) {
		s.palette = p
	}
}

// New creates a session around an existing console. The reader goroutine
// is not running until Start is called.
func New(console shell.Console, cols, rows int, opts ...Option) *Session {
	s := &Session{
		id:      uuid.NewString(),
		grid:    grid.NewGrid(cols, rows),
		parser:  parser.NewParser(),
		console: console,
		palette: grid.DefaultPalette(),
		logger:  slog.Default(),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session", s.id)
	s.parser.SetLogger(s.logger)
	return s
}

// Spawn starts commandLine behind a new pseudo-terminal and returns a
// running session for it.
func Spawn(commandLine string, cols, rows int, shellOpts shell.Options, opts ...Option) (*Session, error) {
	pty, err := shell.Spawn(commandLine, clampSize(cols), clampSize(rows), shellOpts)
	if err != nil {
		return nil, fmt.Errorf("spawn %q: %w", commandLine, err)
	}
	s := New(pty, cols, rows, opts...)
	s.logger.Debug("spawned child", "pid", pty.Pid(), "command", commandLine)
	s.Start()
	return s, nil
}

// Start launches the reader goroutine. Calls after the first do nothing.
func (s *Session) Start() {
	s.startOnce.Do(func() {
		go s.readLoop(s.console)
	})
}

// readLoop continuously reads from the console and processes output. The
// first EOF or error ends it.
func (s *Session) readLoop(r io.Reader) {
	defer close(s.done)

	// The decoder holds back a multi-byte rune split across reads
	decoded := transform.NewReader(emptyReadEOF{r}, unicode.UTF8.NewDecoder())
	buf := make([]byte, readBufferSize)
	for {
		n, err := decoded.Read(buf)
		if n > 0 {
			s.ProcessOutput(string(buf[:n]))
		}
		if err != nil {
			if !shell.IsExitError(err) && !s.closed.Load() {
				s.setErr(fmt.Errorf("read console: %w", err))
				s.logger.Error("console read failed", "err", err)
			} else {
				s.logger.Debug("console reached end of output")
			}
			return
		}
	}
}

// emptyReadEOF reports a zero-byte read as the end of the stream. The
// decoder would otherwise keep reading forever.
type emptyReadEOF struct {
	r io.Reader
}

func (e emptyReadEOF) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if n == 0 && err == nil {
		return 0, io.EOF
	}
	return n, err
}

// ProcessOutput feeds decoded child output through the parser into the
// screen buffer. Replies the parser generates (device status reports) are
// written back to the console after the lock is released.
func (s *Session) ProcessOutput(text string) {
	s.mu.Lock()
	s.parser.Parse(text, s.grid)
	replies := s.parser.TakeResponses()
	s.mu.Unlock()

	if len(replies) > 0 && !s.closed.Load() {
		if _, err := s.console.Write(replies); err != nil {
			s.logger.Warn("failed to write reply", "err", err)
		}
	}
}

// SendInput writes raw bytes to the child and snaps the view to the bottom.
func (s *Session) SendInput(data []byte) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	s.mu.Lock()
	s.grid.ResetViewport()
	s.mu.Unlock()

	if len(data) == 0 {
		return nil
	}
	if _, err := s.console.Write(data); err != nil {
		return fmt.Errorf("write console: %w", err)
	}
	return nil
}

// SendKey translates a key press and sends it, following the child's
// cursor key mode. It returns false when the key is not one the terminal
// handles.
func (s *Session) SendKey(key keybindings.Key, mods keybindings.Modifier) (bool, error) {
	s.mu.Lock()
	appCursor := s.parser.AppCursorKeys()
	s.mu.Unlock()

	data, ok := keybindings.TranslateKey(key, mods, appCursor)
	if !ok {
		return false, nil
	}
	return true, s.SendInput(data)
}

// SendChar sends a typed character
func (s *Session) SendChar(char rune, mods keybindings.Modifier) error {
	return s.SendInput(keybindings.TranslateChar(char, mods))
}

// Resize resizes the screen buffer and then the console. Calling it again
// with the same size changes nothing.
func (s *Session) Resize(cols, rows int) error {
	s.mu.Lock()
	s.grid.Resize(cols, rows)
	s.mu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}
	if err := s.console.Resize(clampSize(cols), clampSize(rows)); err != nil {
		return fmt.Errorf("resize console: %w", err)
	}
	return nil
}

// ScrollLines moves the view delta lines back into history (negative =
// towards the live screen).
func (s *Session) ScrollLines(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid.ScrollLines(delta)
}

// ScrollTo sets the view to an absolute offset from the live screen
func (s *Session) ScrollTo(offset int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid.ScrollTo(offset)
}

// ViewportOffset returns how far the view is scrolled back
func (s *Session) ViewportOffset() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.ViewportOffset()
}

// Snapshot returns a consistent copy of the current view for rendering
func (s *Session) Snapshot() grid.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Snapshot()
}

// Lines returns the rows of the current view
func (s *Session) Lines() [][]grid.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Lines()
}

// CursorPos returns the cursor as (character index, row)
func (s *Session) CursorPos() (x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.CursorPos()
}

// CursorVisible returns whether the cursor should be drawn
func (s *Session) CursorVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.CursorVisible()
}

// DisplayWidthUpTo returns the display column where a character starts
func (s *Session) DisplayWidthUpTo(row, charIndex int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.DisplayWidthUpTo(row, charIndex)
}

// Text returns the current view as plain text
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Text()
}

// Title returns the window title last set by the child
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parser.Title()
}

// WorkingDir returns the child's working directory as last reported by OSC 7
func (s *Session) WorkingDir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parser.WorkingDir()
}

// Palette returns the palette for resolving cell colors
func (s *Session) Palette() grid.Palette {
	return s.palette
}

// ID returns the session ID
func (s *Session) ID() string {
	return s.id
}

// Done returns a channel closed when the reader goroutine has exited
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns the read error that stopped the session, if any. End of
// output is not an error.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// Close releases the console. Closing unblocks the reader goroutine, which
// then exits. Safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if err := s.console.Close(); err != nil {
			s.closeErr = fmt.Errorf("close console: %w", err)
		}
		s.logger.Debug("session closed")
	})
	return s.closeErr
}

// clampSize converts a dimension to the console's range
func clampSize(n int) uint16 {
	if n < 0 {
		return 0
	}
	if n > 0xffff {
		return 0xffff
	}
	return uint16(n)
}
