package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsExitError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"eof", io.EOF, true},
		{"wrapped eof", fmt.Errorf("read: %w", io.EOF), true},
		{"closed file", os.ErrClosed, true},
		{"pty hangup", &os.PathError{Op: "read", Path: "/dev/ptmx", Err: syscall.EIO}, true},
		{"other", errors.New("boom"), false},
		{"permission", syscall.EPERM, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExitError(tt.err))
		})
	}
}

func TestBuildEnv(t *testing.T) {
	t.Setenv("TERM", "dumb")

	env := buildEnv("/bin/sh", map[string]string{"EXTRA": "1"})

	var terms []string
	for _, kv := range env {
		if strings.HasPrefix(kv, "TERM=") {
			terms = append(terms, kv)
		}
	}
	assert.Equal(t, []string{"TERM=xterm-256color"}, terms)
	assert.Contains(t, env, "COLORTERM=truecolor")
	assert.Contains(t, env, "RAVENVT=1")
	assert.Contains(t, env, "SHELL=/bin/sh")
	assert.Contains(t, env, "EXTRA=1")
}

func TestLoginShell(t *testing.T) {
	passwd := strings.Join([]string{
		"root:x:0:0:root:/root:/bin/bash",
		"# comment",
		"broken line",
		"dev:x:1000:1000:Dev User,,,:/home/dev:/usr/bin/zsh",
		"short:x:1001:1001",
	}, "\n")

	tests := []struct {
		user string
		want string
	}{
		{"root", "/bin/bash"},
		{"dev", "/usr/bin/zsh"},
		{"short", ""},
		{"missing", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			assert.Equal(t, tt.want, loginShell(strings.NewReader(passwd), tt.user))
		})
	}
}

func TestFindShell(t *testing.T) {
	sh := findShell()

	assert.True(t, filepath.IsAbs(sh), "got %q", sh)
}

func TestSpawnMissingShell(t *testing.T) {
	_, err := Spawn("", 80, 24, Options{Shell: "/nonexistent/shell"})
	assert.ErrorIs(t, err, ErrShellNotFound)
}

func TestSpawnCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a child process")
	}
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("no sh available")
	}
	dir := t.TempDir()

	p, err := Spawn(`printf '%s %s' "$GREETING" "$(pwd)"`, 80, 24, Options{
		Shell: sh,
		Env:   map[string]string{"GREETING": "hello"},
		Dir:   dir,
	})
	require.NoError(t, err)
	defer p.Close()
	assert.NotZero(t, p.Pid())
	require.NoError(t, p.Resize(100, 30))

	out, err := io.ReadAll(readerUntilExit{p})
	require.NoError(t, err)
	assert.Contains(t, string(out), "hello ")
	assert.Contains(t, string(out), filepath.Base(dir))

	select {
	case <-p.Exited():
	case <-time.After(5 * time.Second):
		t.Fatal("child did not exit")
	}

	require.NoError(t, p.Close())
	assert.NoError(t, p.Close())

	_, err = p.Write([]byte("x"))
	assert.ErrorIs(t, err, os.ErrClosed)
	assert.ErrorIs(t, p.Resize(80, 24), os.ErrClosed)
}

// readerUntilExit turns the error a PTY read returns after the child exits
// into io.EOF.
type readerUntilExit struct {
	r io.Reader
}

func (r readerUntilExit) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && IsExitError(err) {
		return n, io.EOF
	}
	return n, err
}
