// package console implements the numbered command menu and line-based user input.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/desertthunder/fishstation/internal/shared"
	"github.com/desertthunder/fishstation/internal/ui"
)

// Handler runs one menu command. Handlers report their own failures to the user.
type Handler func(ctx context.Context)

// Entry is one menu command.
type Entry struct {
	Label string
	Run   Handler
}

// Group is a display section of the menu.
type Group struct {
	Label   string
	Entries []Entry
}

// Router holds a fixed, ordered catalogue of commands addressed by a dense index
// computed by flattening the groups in declaration order.
type Router struct {
	groups  []Group
	entries []Entry
	out     io.Writer
}

// NewRouter creates a Router writing the menu and input errors to out.
func NewRouter(out io.Writer, groups ...Group) *Router {
	r := &Router{groups: groups, out: out}
	for _, g := range groups {
		r.entries = append(r.entries, g.Entries...)
	}
	return r
}

// Len returns the number of addressable commands.
func (r *Router) Len() int {
	return len(r.entries)
}

// Label returns the label of command i.
func (r *Router) Label(i int) string {
	if i < 0 || i >= len(r.entries) {
		return ""
	}
	return r.entries[i].Label
}

// Render prints each group header followed by its commands and their indices.
func (r *Router) Render() {
	i := 0
	for _, g := range r.groups {
		fmt.Fprintln(r.out, ui.Header(g.Label))
		for _, e := range g.Entries {
			fmt.Fprintf(r.out, "  %2d  %s\n", i, e.Label)
			i++
		}
	}
	fmt.Fprintln(r.out, ui.Help("enter a command number, ctrl-c to quit"))
}

// Dispatch parses raw as a command index and runs it.
//
// Input that is not an index in [0, Len) is reported to the user and returned as an error.
func (r *Router) Dispatch(ctx context.Context, raw string) error {
	i, err := ParseIndex(raw)
	if err != nil {
		fmt.Fprintln(r.out, ui.Warn(fmt.Sprintf("%q is not a command number", strings.TrimSpace(raw))))
		return err
	}
	if i < 0 || i >= len(r.entries) {
		fmt.Fprintln(r.out, ui.Warn(fmt.Sprintf("please choose a command between 0 and %d", len(r.entries)-1)))
		return fmt.Errorf("%w: command %d", shared.ErrOutOfRange, i)
	}

	r.entries[i].Run(ctx)
	return nil
}

// Run renders the menu and dispatches one command per line while running reports true.
//
// The loop also ends when input is exhausted or ctx is done. stop is called once in every case.
func (r *Router) Run(ctx context.Context, in Prompter, running func() bool, stop func()) error {
	defer stop()

	in = WithContext(ctx, in)
	for running() && ctx.Err() == nil {
		r.Render()
		line, err := in.ReadLine("please input your choice: ")
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to read command: %w", err)
		}
		_ = r.Dispatch(ctx, line)
	}

	return nil
}

// ParseIndex parses a trimmed decimal integer.
func ParseIndex(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", shared.ErrInvalidInput, raw)
	}
	return i, nil
}
