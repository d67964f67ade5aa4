package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/desertthunder/fishstation/internal/ui"
)

// Prompter asks the user for one line of input at a time.
type Prompter interface {
	ReadLine(prompt string) (string, error)
	Confirm(prompt string) bool
}

// LinePrompter reads lines from an [io.Reader] and writes prompts to an [io.Writer].
type LinePrompter struct {
	mu      sync.Mutex
	scanner *bufio.Scanner
	out     io.Writer
}

var _ Prompter = (*LinePrompter)(nil)

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{scanner: bufio.NewScanner(in), out: out}
}

// ReadLine prints prompt and returns the next line without surrounding whitespace.
// It returns [io.EOF] when the input is closed.
func (p *LinePrompter) ReadLine(prompt string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if prompt != "" {
		fmt.Fprint(p.out, prompt)
	}
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

// Confirm reports whether the user answered "y" or "Y".
func (p *LinePrompter) Confirm(prompt string) bool {
	answer, err := p.ReadLine(prompt)
	if err != nil {
		return false
	}
	return answer == "y" || answer == "Y"
}

// ErrCancelled is returned by [ReadIndex] when the user enters an empty line.
var ErrCancelled = errors.New("cancelled")

// ReadIndex prompts until the user enters an integer and warns about anything else.
// An empty line cancels with [ErrCancelled]; [io.EOF] is returned if input ends first.
func ReadIndex(p Prompter, prompt string) (int, error) {
	ask := prompt
	for {
		line, err := p.ReadLine(ask)
		if err != nil {
			return 0, err
		}
		if line == "" {
			return 0, ErrCancelled
		}
		if i, err := ParseIndex(line); err == nil {
			return i, nil
		}
		ask = ui.Warn(fmt.Sprintf("%q is not a number, enter an index or nothing to cancel", line)) + "\n" + prompt
	}
}

// contextPrompter ends pending reads when its context is done.
type contextPrompter struct {
	ctx context.Context
	in  Prompter
}

type readResult struct {
	line string
	err  error
}

// WithContext returns a Prompter whose reads return ctx.Err() once ctx is done, even while
// in is still blocked waiting for a line. Confirm answers false after that.
func WithContext(ctx context.Context, in Prompter) Prompter {
	if p, ok := in.(*contextPrompter); ok && p.ctx == ctx {
		return p
	}
	return &contextPrompter{ctx: ctx, in: in}
}

func (p *contextPrompter) ReadLine(prompt string) (string, error) {
	if err := p.ctx.Err(); err != nil {
		return "", err
	}

	ch := make(chan readResult, 1)
	go func() {
		line, err := p.in.ReadLine(prompt)
		ch <- readResult{line: line, err: err}
	}()

	select {
	case <-p.ctx.Done():
		return "", p.ctx.Err()
	case res := <-ch:
		return res.line, res.err
	}
}

func (p *contextPrompter) Confirm(prompt string) bool {
	answer, err := p.ReadLine(prompt)
	return err == nil && (answer == "y" || answer == "Y")
}
