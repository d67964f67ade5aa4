package ui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/desertthunder/fishstation/internal/shared"
)

func TestRender(t *testing.T) {
	for name, fn := range map[string]func(string) string{
		"Header": Header, "Ok": Ok, "Warn": Warn, "Err": Err, "Help": Help,
	} {
		if got := fn("fish"); !strings.Contains(got, "fish") {
			t.Errorf("%s(%q) = %q, text lost", name, "fish", got)
		}
	}
}

func TestError(t *testing.T) {
	tests := []error{
		fmt.Errorf("%w: 9", shared.ErrOutOfRange),
		shared.ErrNoPlaylistSelected,
		shared.NewSourceError("search", errors.New("timeout")),
		&shared.StorageError{Op: "save", Err: errors.New("disk full")},
	}
	for _, err := range tests {
		if got := Error(err); !strings.Contains(got, err.Error()) {
			t.Errorf("Error(%v) = %q, message lost", err, got)
		}
	}
}
