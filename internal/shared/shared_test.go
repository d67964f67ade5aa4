package shared

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestKind(t *testing.T) {
	tc := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "nil", err: nil, want: KindUnknown},
		{name: "wrapped input", err: fmt.Errorf("%w: abc", ErrInvalidInput), want: KindInput},
		{name: "out of range", err: fmt.Errorf("index=9: %w", ErrOutOfRange), want: KindInput},
		{name: "traversal", err: ErrTraversalActive, want: KindState},
		{name: "source error", err: NewSourceError("search", errors.New("timeout")), want: KindSource},
		{name: "storage error", err: &StorageError{Op: "save", Err: errors.New("disk full")}, want: KindStorage},
		{name: "other", err: errors.New("boom"), want: KindUnknown},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSourceError(t *testing.T) {
	cause := errors.New("page load timed out")
	err := NewSourceError("play", cause)

	if !errors.Is(err, ErrSource) {
		t.Error("expected SourceError to match ErrSource")
	}
	if !errors.Is(err, cause) {
		t.Error("expected SourceError to unwrap to its cause")
	}

	var se *SourceError
	if !errors.As(err, &se) || se.Op != "play" {
		t.Errorf("expected SourceError with op play, got %v", err)
	}

	if NewSourceError("play", nil) != nil {
		t.Error("expected nil for nil cause")
	}
}

func TestParseLogLevel(t *testing.T) {
	tc := map[string]log.Level{
		"debug":   log.DebugLevel,
		" WARN ":  log.WarnLevel,
		"error":   log.ErrorLevel,
		"":        log.InfoLevel,
		"verbose": log.InfoLevel,
	}
	for in, want := range tc {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestOpenBrowser(t *testing.T) {
	origRuntime, origStart := getRuntime, startCommand
	t.Cleanup(func() { getRuntime, startCommand = origRuntime, origStart })

	var started []string
	startCommand = func(cmd *exec.Cmd) error {
		started = cmd.Args
		return nil
	}

	t.Run("linux", func(t *testing.T) {
		getRuntime = func() string { return "linux" }
		if err := OpenBrowser("https://music.163.com/"); err != nil {
			t.Fatalf("OpenBrowser() error = %v", err)
		}
		if len(started) != 2 || started[0] != "xdg-open" || started[1] != "https://music.163.com/" {
			t.Errorf("unexpected command %v", started)
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		getRuntime = func() string { return "plan9" }
		if err := OpenBrowser("https://music.163.com/"); err == nil {
			t.Error("expected error for unsupported platform")
		}
	})

	t.Run("start failure", func(t *testing.T) {
		getRuntime = func() string { return "darwin" }
		startCommand = func(*exec.Cmd) error { return errors.New("no display") }
		if err := OpenBrowser("https://music.163.com/"); err == nil {
			t.Error("expected start failure to be returned")
		}
	})
}

func TestStartDetached(t *testing.T) {
	t.Run("process is reaped", func(t *testing.T) {
		// Re-running the test binary with no matching tests exits immediately on every platform.
		done, err := startDetached(exec.Command(os.Args[0], "-test.run=^$"))
		if err != nil {
			t.Fatalf("startDetached() error = %v", err)
		}

		select {
		case err := <-done:
			if err != nil {
				t.Errorf("expected clean exit, got %v", err)
			}
		case <-time.After(10 * time.Second):
			t.Fatal("process was not reaped")
		}
	})

	t.Run("start failure", func(t *testing.T) {
		if _, err := startDetached(exec.Command(filepath.Join(t.TempDir(), "missing"))); err == nil {
			t.Error("expected error for a missing executable")
		}
	})
}
