package dap

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// MaxContentLength bounds a single message body.
const MaxContentLength = 16 << 20

// Transport moves framed messages.
type Transport interface {
	Send(content json.RawMessage) error
	Receive() (json.RawMessage, error)
	Close() error
}

// streamTransport frames messages over a reader and a writer.
type streamTransport struct {
	r     *bufio.Reader
	mu    sync.Mutex
	w     io.Writer
	close func() error
}

// NewStreamTransport frames messages over rwc.
func NewStreamTransport(rwc io.ReadWriteCloser) Transport {
	return &streamTransport{r: bufio.NewReader(rwc), w: rwc, close: rwc.Close}
}

// Dial connects to a debug adapter listening on addr.
func Dial(ctx context.Context, addr string) (Transport, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dap: dial %s: %w", addr, err)
	}
	return NewStreamTransport(conn), nil
}

// Start runs a debug adapter and talks to it over its stdin and stdout.
// Closing the transport kills the process.
func Start(cmd *exec.Cmd) (Transport, error) {
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("dap: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("dap: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("dap: start %s: %w", cmd.Path, err)
	}

	return &streamTransport{
		r: bufio.NewReader(stdout),
		w: stdin,
		close: func() error {
			_ = stdin.Close()
			if cmd.Process != nil {
				_ = cmd.Process.Kill()
			}
			// a killed adapter exits with an error; that is the expected end
			_ = cmd.Wait()
			return nil
		},
	}, nil
}

func (t *streamTransport) Send(content json.RawMessage) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return writeMessage(t.w, content)
}

func (t *streamTransport) Receive() (json.RawMessage, error) {
	return readMessage(t.r)
}

func (t *streamTransport) Close() error {
	return t.close()
}

func writeMessage(w io.Writer, content []byte) error {
	header := "Content-Length: " + strconv.Itoa(len(content)) + "\r\n\r\n"
	if _, err := io.WriteString(w, header); err != nil {
		return fmt.Errorf("dap: write header: %w", err)
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("dap: write body: %w", err)
	}
	return nil
}

func readMessage(r *bufio.Reader) (json.RawMessage, error) {
	length := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if err == io.EOF && line == "" {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("dap: read header: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("dap: malformed header %q", line)
		}
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n < 0 {
				return nil, fmt.Errorf("dap: bad Content-Length %q", value)
			}
			length = n
		}
	}

	switch {
	case length < 0:
		return nil, ErrMissingLength
	case length > MaxContentLength:
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("dap: read body: %w", err)
	}
	return body, nil
}
