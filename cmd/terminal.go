package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Kestrer/revise/session"
)

// terminal is the interactive line-oriented session.IO used by learn.
type terminal struct {
	in  *bufio.Reader
	out io.Writer
}

func newTerminal(in io.Reader, out io.Writer) *terminal {
	return &terminal{in: bufio.NewReader(in), out: out}
}

func (t *terminal) Ask(ctx context.Context, q session.Question) (string, error) {
	d := q.Distribution
	fmt.Fprintf(t.out, "\n%s  [new %d | seen %d | known %d | mastered %d]\n",
		q.Title, d[0], d[1], d[2], d[3])
	fmt.Fprintf(t.out, "%s\n> ", q.Prompt)
	return t.readLine(ctx)
}

func (t *terminal) Report(ctx context.Context, o session.Outcome) (bool, error) {
	if o.Correct {
		fmt.Fprintln(t.out, "Correct!")
		return false, nil
	}
	fmt.Fprintf(t.out, "Incorrect. Expected: %s\n", strings.Join(o.Expected, ", "))
	fmt.Fprint(t.out, "Mark as correct anyway? [y/N] ")
	line, err := t.readLine(ctx)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(line), "y"), nil
}

func (t *terminal) Retype(ctx context.Context) (string, error) {
	fmt.Fprint(t.out, "Type it out: ")
	return t.readLine(ctx)
}

type readResult struct {
	line string
	err  error
}

// readLine reads one answer line, turning end of input or a done context
// into a clean cancellation. The read runs in its own goroutine so an
// interrupt is observed even while blocked on the terminal; on cancellation
// the in-flight read is abandoned.
func (t *terminal) readLine(ctx context.Context) (string, error) {
	ch := make(chan readResult, 1)
	go func() {
		line, err := t.in.ReadString('\n')
		ch <- readResult{line, err}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(t.out)
		return "", session.ErrCancelled
	case res := <-ch:
		if errors.Is(res.err, io.EOF) {
			if res.line != "" {
				return strings.TrimRight(res.line, "\r\n"), nil
			}
			fmt.Fprintln(t.out)
			return "", session.ErrCancelled
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimRight(res.line, "\r\n"), nil
	}
}
