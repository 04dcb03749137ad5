package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/javanhut/ravenvt/config"
	"github.com/javanhut/ravenvt/session"
)

// closeGrace bounds the wait for the reader after the session is closed
const closeGrace = 2 * time.Second

func main() {
	var (
		command    = flag.String("c", "", "command line to run (default: config command, else an interactive shell)")
		cols       = flag.Int("cols", 0, "screen width (default: the current terminal, else config)")
		rows       = flag.Int("rows", 0, "screen height (default: the current terminal, else config)")
		configPath = flag.String("config", "", "config file (default: ~/.config/ravenvt/config.toml)")
		timeout    = flag.Duration("timeout", 10*time.Second, "stop the child after this long (0 = wait forever)")
		debug      = flag.Bool("debug", false, "log parser and session events to stderr")
		listThemes = flag.Bool("themes", false, "list built-in themes and exit")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *listThemes {
		for _, opt := range config.ThemeOptions() {
			fmt.Printf("%-26s %s\n", opt.Name, opt.Label)
		}
		return
	}

	if err := run(logger, *configPath, *command, *cols, *rows, *timeout); err != nil {
		logger.Error("ravenvt failed", "err", err)
		os.Exit(1)
	}
}

// run executes the child in a headless session and prints the final screen
func run(logger *slog.Logger, configPath, command string, cols, rows int, timeout time.Duration) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	palette, err := cfg.Palette()
	if err != nil {
		return err
	}

	if command == "" {
		command = cfg.Shell.Command
	}
	cols, rows = screenSize(cols, rows, cfg)

	sess, err := session.Spawn(command, cols, rows, cfg.ShellOptions(),
		session.WithLogger(logger),
		session.WithScrollback(cfg.Terminal.Scrollback),
		session.WithPalette(palette),
	)
	if err != nil {
		return err
	}
	defer sess.Close()
	logger.Debug("session started", "id", sess.ID(), "cols", cols, "rows", rows, "theme", config.ThemeLabel(cfg.Theme))

	// Piped stdin is forwarded to the child as typed input
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		go forwardInput(logger, sess, os.Stdin)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case <-sess.Done():
	case <-expired:
		logger.Warn("timeout reached, stopping child", "timeout", timeout)
	case sig := <-signals:
		logger.Info("stopping child", "signal", sig)
	}

	screen, err := shutdown(logger, sess)
	fmt.Println(screen)
	return err
}

// shutdown closes the session and waits for the reader to finish the output
// it already has before taking the final screen.
func shutdown(logger *slog.Logger, sess *session.Session) (string, error) {
	if err := sess.Close(); err != nil {
		logger.Debug("close", "err", err)
	}
	select {
	case <-sess.Done():
	case <-time.After(closeGrace):
		logger.Warn("reader still running after close", "grace", closeGrace)
	}
	return sess.Text(), sess.Err()
}

// loadConfig reads the given config file, or the default one, which is
// created with default values when missing.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// screenSize picks the screen dimensions: flags first, then the size of the
// terminal we are running in, then the config.
func screenSize(cols, rows int, cfg *config.Config) (int, int) {
	if cols > 0 && rows > 0 {
		return cols, rows
	}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
		if cols <= 0 {
			cols = w
		}
		if rows <= 0 {
			rows = h
		}
		return cols, rows
	}
	if cols <= 0 {
		cols = cfg.Terminal.Cols
	}
	if rows <= 0 {
		rows = cfg.Terminal.Rows
	}
	return cols, rows
}

func forwardInput(logger *slog.Logger, sess *session.Session, r io.Reader) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if werr := sess.SendInput(buf[:n]); werr != nil {
				logger.Debug("stop forwarding input", "err", werr)
				return
			}
		}
		if err != nil {
			return
		}
	}
}
