package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/user"
	"strings"
	"sync"
	"syscall"

	"github.com/creack/pty"
)

// Console is the pseudo-console seam the terminal session drives: a byte
// stream to and from the child plus a way to change its window size.
type Console interface {
	io.ReadWriteCloser
	Resize(cols, rows uint16) error
}

// Options configures how the child process is started
type Options struct {
	// Shell used when no command line is given; empty = system default
	Shell string
	// Env is appended to the base environment
	Env map[string]string
	// Dir is the working directory; empty = home directory
	Dir string
}

// PtySession manages a pseudo-terminal connection to a child process
type PtySession struct {
	cmd       *exec.Cmd
	pty       *os.File
	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
	closeErr  error
	exited    chan struct{}
}

// Spawn starts commandLine on a new pseudo-terminal of the given size. An
// empty command line starts the user's shell.
func Spawn(commandLine string, cols, rows uint16, opts Options) (*PtySession, error) {
	sh := opts.Shell
	if sh == "" {
		sh = findShell()
	}
	if _, err := exec.LookPath(sh); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrShellNotFound, sh)
	}

	var cmd *exec.Cmd
	if strings.TrimSpace(commandLine) == "" {
		cmd = exec.Command(sh)
	} else {
		cmd = exec.Command(sh, "-c", commandLine)
	}

	// Create new session - critical for independence from parent terminal
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}
	cmd.Env = buildEnv(sh, opts.Env)
	cmd.Dir = opts.Dir
	if cmd.Dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cmd.Dir = home
		}
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Cols: cols,
		Rows: rows,
	})
	if err != nil {
		return nil, fmt.Errorf("start pty: %w", err)
	}

	session := &PtySession{
		cmd:    cmd,
		pty:    ptmx,
		exited: make(chan struct{}),
	}

	// Monitor for process exit
	go func() {
		_ = cmd.Wait()
		close(session.exited)
	}()

	return session, nil
}

// buildEnv returns the child environment: the parent's, with terminal
// variables forced and extra entries appended.
func buildEnv(sh string, extra map[string]string) []string {
	env := make([]string, 0, len(os.Environ())+len(extra)+4)
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		switch name {
		case "TERM", "COLORTERM", "SHELL", "RAVENVT":
			continue
		}
		env = append(env, kv)
	}
	env = append(env,
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
		"RAVENVT=1",
		"SHELL="+sh,
	)
	for name, value := range extra {
		env = append(env, name+"="+value)
	}
	return env
}

// fallbackShells are tried in order when the user database names no
// installed shell
var fallbackShells = []string{"/bin/bash", "/usr/bin/bash", "/bin/zsh", "/usr/bin/zsh"}

// findShell returns the current user's login shell from /etc/passwd, not
// $SHELL, falling back to the first installed common shell and finally
// /bin/sh.
func findShell() string {
	candidates := fallbackShells
	if u, err := user.Current(); err == nil {
		if f, err := os.Open("/etc/passwd"); err == nil {
			login := loginShell(f, u.Username)
			f.Close()
			if login != "" {
				candidates = append([]string{login}, candidates...)
			}
		}
	}
	for _, sh := range candidates {
		if info, err := os.Stat(sh); err == nil && !info.IsDir() {
			return sh
		}
	}
	return "/bin/sh"
}

// loginShell returns the shell field of username's entry in a passwd file
func loginShell(passwd io.Reader, username string) string {
	scanner := bufio.NewScanner(passwd)
	for scanner.Scan() {
		name, rest, ok := strings.Cut(scanner.Text(), ":")
		if !ok || name != username {
			continue
		}
		// password:uid:gid:gecos:home:shell
		if fields := strings.Split(rest, ":"); len(fields) == 6 {
			return fields[5]
		}
	}
	return ""
}

// Read returns child output. Once the child has exited or the session is
// closed it fails with an error IsExitError accepts.
func (p *PtySession) Read(buf []byte) (int, error) {
	return p.pty.Read(buf)
}

// Write sends input to the child. Writes and resizes are serialized with
// Close.
func (p *PtySession) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, os.ErrClosed
	}
	return p.pty.Write(data)
}

// Resize changes the window size the child sees
func (p *PtySession) Resize(cols, rows uint16) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return os.ErrClosed
	}
	if err := pty.Setsize(p.pty, &pty.Winsize{Cols: cols, Rows: rows}); err != nil {
		return fmt.Errorf("set pty size: %w", err)
	}
	return nil
}

// Exited returns a channel closed when the child process exits
func (p *PtySession) Exited() <-chan struct{} {
	return p.exited
}

// Pid returns the child's process id
func (p *PtySession) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Close kills the child and closes the PTY. Only the first call does any
// work; later calls return the same result.
func (p *PtySession) Close() error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.closed = true
		if p.cmd.Process != nil {
			if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
				p.closeErr = fmt.Errorf("kill child: %w", err)
			}
		}
		if err := p.pty.Close(); err != nil && p.closeErr == nil {
			p.closeErr = fmt.Errorf("close pty: %w", err)
		}
	})
	return p.closeErr
}

// IsExitError reports whether err is what a PTY read returns once the child
// has gone away or the PTY was closed, as opposed to a real failure.
func IsExitError(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, syscall.EIO)
}
