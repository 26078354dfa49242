package input

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/dshills/backstep/internal/render"
	"github.com/dshills/backstep/internal/session"
)

type readResult struct {
	line string
	err  error
}

// Plain reads lines from a stream and writes the prompt before each one.
type Plain struct {
	in     io.Reader
	out    io.Writer
	echo   bool
	prompt func(session.Status) string

	start      sync.Once
	lines      chan readResult
	interrupts chan os.Signal
	stop       func()

	closeOnce sync.Once
	done      chan struct{}
}

// PlainOption configures a Plain reader.
type PlainOption func(*Plain)

// WithPrompt replaces the prompt text function.
func WithPrompt(fn func(session.Status) string) PlainOption {
	return func(p *Plain) {
		if fn != nil {
			p.prompt = fn
		}
	}
}

// WithEcho controls whether lines read are written back after the prompt.
// It defaults to on when in is not a terminal, so piped sessions produce a
// readable transcript.
func WithEcho(on bool) PlainOption {
	return func(p *Plain) {
		p.echo = on
	}
}

// NewPlain creates a reader. It relays SIGINT until Close is called.
func NewPlain(in io.Reader, out io.Writer, opts ...PlainOption) *Plain {
	p := &Plain{
		in:         in,
		out:        out,
		echo:       !isTerminalReader(in),
		prompt:     render.PromptLine,
		lines:      make(chan readResult),
		interrupts: make(chan os.Signal, 1),
		done:       make(chan struct{}),
	}
	signal.Notify(p.interrupts, os.Interrupt)
	p.stop = func() { signal.Stop(p.interrupts) }

	for _, opt := range opts {
		opt(p)
	}
	return p
}

func isTerminalReader(r io.Reader) bool {
	w, ok := r.(io.Writer)
	return ok && render.IsTerminal(w)
}

// ReadLine implements session.LineReader.
func (p *Plain) ReadLine(ctx context.Context, st session.Status) (string, error) {
	p.start.Do(func() { go p.scan() })

	// interrupts that arrived while the program ran belong to no line
	select {
	case <-p.interrupts:
	default:
	}

	fmt.Fprint(p.out, p.prompt(st))

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return "", ctx.Err()
	case <-p.done:
		return "", io.EOF
	case <-p.interrupts:
		fmt.Fprintln(p.out, "^C")
		return "", session.ErrInterrupted
	case r, ok := <-p.lines:
		if !ok {
			fmt.Fprintln(p.out)
			return "", io.EOF
		}
		if r.err != nil {
			return "", r.err
		}
		if p.echo {
			fmt.Fprintln(p.out, r.line)
		}
		return r.line, nil
	}
}

// scan feeds lines to ReadLine until the input ends or the reader is closed.
func (p *Plain) scan() {
	defer close(p.lines)
	sc := bufio.NewScanner(p.in)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		if !p.send(readResult{line: sc.Text()}) {
			return
		}
	}
	if err := sc.Err(); err != nil {
		p.send(readResult{err: fmt.Errorf("input: %w", err)})
	}
}

func (p *Plain) send(r readResult) bool {
	select {
	case p.lines <- r:
		return true
	case <-p.done:
		return false
	}
}

// Close stops relaying SIGINT and releases the line scanner. A blocked
// read of the underlying stream is abandoned, not interrupted.
func (p *Plain) Close() error {
	p.closeOnce.Do(func() {
		p.stop()
		close(p.done)
	})
	return nil
}
