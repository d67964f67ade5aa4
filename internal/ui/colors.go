package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/fishstation/internal/shared"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// Header renders a menu group or listing title.
func Header(s string) string { return styles.title.Render(s) }

// Ok renders a success line.
func Ok(s string) string { return styles.ok.Render(s) }

// Warn renders a recoverable problem, usually bad input.
func Warn(s string) string { return styles.warn.Render(s) }

// Err renders a failure.
func Err(s string) string { return styles.err.Render(s) }

// Help renders a hint.
func Help(s string) string { return styles.help.Render(s) }

// Error renders err by kind: input and state problems as warnings, collaborator failures as errors.
func Error(err error) string {
	switch shared.Kind(err) {
	case shared.KindInput, shared.KindState:
		return Warn(err.Error())
	default:
		return Err(err.Error())
	}
}
