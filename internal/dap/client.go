package dap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// Client sends requests to a debug adapter and receives its events.
type Client struct {
	transport Transport
	seq       atomic.Int64

	mu      sync.Mutex
	pending map[int]chan *Response
	err     error

	// queue holds events the consumer has not taken yet. It is unbounded so
	// responses are never stuck behind events nobody is reading.
	queueMu  sync.Mutex
	queue    []Event
	received bool // receive loop ended
	wake     chan struct{}

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient starts receiving from transport.
func NewClient(transport Transport) *Client {
	c := &Client{
		transport: transport,
		pending:   make(map[int]chan *Response),
		wake:      make(chan struct{}, 1),
		events:    make(chan Event),
		done:      make(chan struct{}),
	}
	go c.receive()
	go c.deliver()
	return c
}

// Events delivers adapter events in arrival order. The channel is closed
// when the connection ends.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Err returns the error that ended the connection, if any.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close closes the transport. Pending requests fail with ErrClosed.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.transport.Close()
	})
	return err
}

func (c *Client) receive() {
	defer c.finish()

	for {
		content, err := c.transport.Receive()
		if err != nil {
			c.fail(err)
			return
		}

		var env envelope
		if err := json.Unmarshal(content, &env); err != nil {
			continue
		}

		switch env.Type {
		case TypeResponse:
			var resp Response
			if err := json.Unmarshal(content, &resp); err != nil {
				continue
			}
			c.mu.Lock()
			ch, ok := c.pending[resp.RequestSeq]
			delete(c.pending, resp.RequestSeq)
			c.mu.Unlock()
			if ok {
				ch <- &resp
			}

		case TypeEvent:
			var ev Event
			if err := json.Unmarshal(content, &ev); err != nil {
				continue
			}
			c.enqueue(ev)

		case TypeRequest:
			// reverse requests such as runInTerminal are not supported
			var req Request
			if err := json.Unmarshal(content, &req); err == nil {
				c.refuse(env.Seq, req.Command)
			}
		}
	}
}

func (c *Client) enqueue(ev Event) {
	c.queueMu.Lock()
	c.queue = append(c.queue, ev)
	c.queueMu.Unlock()
	c.signal()
}

// finish lets deliver close the events channel once the queue drains.
func (c *Client) finish() {
	c.queueMu.Lock()
	c.received = true
	c.queueMu.Unlock()
	c.signal()
}

func (c *Client) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// deliver moves queued events to the events channel in arrival order.
func (c *Client) deliver() {
	defer close(c.events)
	for {
		c.queueMu.Lock()
		if len(c.queue) == 0 {
			ended := c.received
			c.queueMu.Unlock()
			if ended {
				return
			}
			select {
			case <-c.wake:
			case <-c.done:
				return
			}
			continue
		}
		ev := c.queue[0]
		c.queue[0] = Event{}
		c.queue = c.queue[1:]
		c.queueMu.Unlock()

		select {
		case c.events <- ev:
		case <-c.done:
			return
		}
	}
}

// fail records why the connection ended and releases waiting requests.
func (c *Client) fail(err error) {
	select {
	case <-c.done:
		err = ErrClosed
	default:
		if errors.Is(err, io.EOF) {
			err = ErrClosed
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = err
	}
	for seq, ch := range c.pending {
		close(ch)
		delete(c.pending, seq)
	}
}

func (c *Client) refuse(seq int, command string) {
	resp := Response{
		Seq:        int(c.seq.Add(1)),
		Type:       TypeResponse,
		RequestSeq: seq,
		Command:    command,
		Message:    "not supported",
	}
	if data, err := json.Marshal(resp); err == nil {
		_ = c.transport.Send(data)
	}
}

// call sends a request and decodes the response body into out, which may
// be nil.
func (c *Client) call(ctx context.Context, command string, args, out any) error {
	seq := int(c.seq.Add(1))
	data, err := json.Marshal(Request{Seq: seq, Type: TypeRequest, Command: command, Arguments: args})
	if err != nil {
		return fmt.Errorf("dap: encode %s: %w", command, err)
	}

	ch := make(chan *Response, 1)
	c.mu.Lock()
	if c.err != nil {
		c.mu.Unlock()
		return c.err
	}
	c.pending[seq] = ch
	c.mu.Unlock()

	if err := c.transport.Send(data); err != nil {
		c.forget(seq)
		return fmt.Errorf("dap: send %s: %w", command, err)
	}

	select {
	case <-ctx.Done():
		c.forget(seq)
		return ctx.Err()
	case resp, ok := <-ch:
		if !ok {
			return c.Err()
		}
		if !resp.Success {
			return &ResponseError{Command: command, Message: resp.Message}
		}
		if out != nil && len(resp.Body) > 0 {
			if err := json.Unmarshal(resp.Body, out); err != nil {
				return fmt.Errorf("dap: decode %s response: %w", command, err)
			}
		}
		return nil
	}
}

func (c *Client) forget(seq int) {
	c.mu.Lock()
	delete(c.pending, seq)
	c.mu.Unlock()
}

// Initialize negotiates capabilities.
func (c *Client) Initialize(ctx context.Context, args InitializeArguments) (*Capabilities, error) {
	var caps Capabilities
	if err := c.call(ctx, "initialize", args, &caps); err != nil {
		return nil, err
	}
	return &caps, nil
}

// Launch starts the debuggee. args are adapter specific.
func (c *Client) Launch(ctx context.Context, args any) error {
	return c.call(ctx, "launch", args, nil)
}

// Attach attaches to a running debuggee. args are adapter specific.
func (c *Client) Attach(ctx context.Context, args any) error {
	return c.call(ctx, "attach", args, nil)
}

// ConfigurationDone ends the configuration phase.
func (c *Client) ConfigurationDone(ctx context.Context) error {
	return c.call(ctx, "configurationDone", nil, nil)
}

// SetBreakpoints replaces the breakpoints of one source file.
func (c *Client) SetBreakpoints(ctx context.Context, args SetBreakpointsArguments) ([]Breakpoint, error) {
	var body struct {
		Breakpoints []Breakpoint `json:"breakpoints"`
	}
	if err := c.call(ctx, "setBreakpoints", args, &body); err != nil {
		return nil, err
	}
	return body.Breakpoints, nil
}

// Next steps over the current line.
func (c *Client) Next(ctx context.Context, threadID int) error {
	return c.call(ctx, "next", ThreadArguments{ThreadID: threadID}, nil)
}

// StepIn steps into a call.
func (c *Client) StepIn(ctx context.Context, threadID int) error {
	return c.call(ctx, "stepIn", ThreadArguments{ThreadID: threadID}, nil)
}

// StepOut runs until the current function returns.
func (c *Client) StepOut(ctx context.Context, threadID int) error {
	return c.call(ctx, "stepOut", ThreadArguments{ThreadID: threadID}, nil)
}

// Continue resumes until the next breakpoint.
func (c *Client) Continue(ctx context.Context, threadID int) error {
	return c.call(ctx, "continue", ThreadArguments{ThreadID: threadID}, nil)
}

// StackTrace returns the frames of a thread, innermost first.
func (c *Client) StackTrace(ctx context.Context, args StackTraceArguments) ([]StackFrame, error) {
	var body stackTraceBody
	if err := c.call(ctx, "stackTrace", args, &body); err != nil {
		return nil, err
	}
	return body.StackFrames, nil
}

// Scopes returns the scopes of a frame.
func (c *Client) Scopes(ctx context.Context, frameID int) ([]Scope, error) {
	var body scopesBody
	if err := c.call(ctx, "scopes", map[string]int{"frameId": frameID}, &body); err != nil {
		return nil, err
	}
	return body.Scopes, nil
}

// Variables returns the children of a variables reference.
func (c *Client) Variables(ctx context.Context, args VariablesArguments) ([]Variable, error) {
	var body variablesBody
	if err := c.call(ctx, "variables", args, &body); err != nil {
		return nil, err
	}
	return body.Variables, nil
}

// Evaluate evaluates an expression.
func (c *Client) Evaluate(ctx context.Context, args EvaluateArguments) (*EvaluateResult, error) {
	var res EvaluateResult
	if err := c.call(ctx, "evaluate", args, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Disconnect ends the debug session.
func (c *Client) Disconnect(ctx context.Context, args DisconnectArguments) error {
	return c.call(ctx, "disconnect", args, nil)
}
