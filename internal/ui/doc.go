// Package ui styles console output with [lipgloss].
//
// The menu is line based, so styling is limited to single strings: group headers, success
// lines, warnings and errors. When the output is not a terminal lipgloss renders plain text.
package ui
