package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/term"

	"github.com/javanhut/ravenvt/config"
	"github.com/javanhut/ravenvt/session"
	"github.com/javanhut/ravenvt/shell"
)

// lastWordConsole blocks reads until closed, then returns one final chunk
type lastWordConsole struct {
	shell.Nop
	closed chan struct{}
	once   sync.Once
}

func (c *lastWordConsole) Read(p []byte) (int, error) {
	<-c.closed
	return copy(p, "bye"), io.EOF
}

func (c *lastWordConsole) Close() error {
	c.once.Do(func() { close(c.closed) })
	return c.Nop.Close()
}

func TestShutdownKeepsFinalOutput(t *testing.T) {
	c := &lastWordConsole{closed: make(chan struct{})}
	sess := session.New(c, 20, 3)
	sess.Start()

	screen, err := shutdown(slog.New(slog.NewTextHandler(io.Discard, nil)), sess)

	require.NoError(t, err)
	assert.Equal(t, "bye", screen)
}

func TestScreenSizeFlagsWin(t *testing.T) {
	cfg := config.DefaultConfig()

	cols, rows := screenSize(100, 40, cfg)

	assert.Equal(t, 100, cols)
	assert.Equal(t, 40, rows)
}

func TestScreenSizeFallsBackToConfig(t *testing.T) {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		t.Skip("stdout is a terminal")
	}
	cfg := config.DefaultConfig()
	cfg.Terminal.Cols, cfg.Terminal.Rows = 132, 50

	cols, rows := screenSize(0, 0, cfg)
	assert.Equal(t, 132, cols)
	assert.Equal(t, 50, rows)

	cols, rows = screenSize(90, 0, cfg)
	assert.Equal(t, 90, cols)
	assert.Equal(t, 50, rows)
}

func TestLoadConfigCreatesDefaultFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
	assert.FileExists(t, filepath.Join(home, ".config", "ravenvt", "config.toml"))
}

func TestLoadConfigExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[terminal]\ncols = 120\n"), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.Terminal.Cols)
}
