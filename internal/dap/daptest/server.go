// Package daptest provides an in-memory debug adapter for tests.
package daptest

import (
	"encoding/json"
	"net"
	"sync"

	"github.com/dshills/backstep/internal/dap"
)

// Handler answers one request. The returned body is encoded into the
// response; a non-nil error produces a failed response.
type Handler func(args json.RawMessage) (any, error)

type incoming struct {
	Seq       int             `json:"seq"`
	Command   string          `json:"command"`
	Arguments json.RawMessage `json:"arguments"`
}

// Server is a scripted debug adapter on the far end of a net.Pipe.
// Requests without a handler succeed with an empty body.
type Server struct {
	transport dap.Transport

	mu       sync.Mutex
	seq      int
	handlers map[string]Handler
	requests []string
	// events raised by a handler go out after its response
	handling bool
	deferred [][]byte

	done chan struct{}
}

// New starts a server and returns the client side transport.
func New() (*Server, dap.Transport) {
	serverConn, clientConn := net.Pipe()
	s := &Server{
		transport: dap.NewStreamTransport(serverConn),
		handlers:  make(map[string]Handler),
		done:      make(chan struct{}),
	}
	go s.serve()
	return s, dap.NewStreamTransport(clientConn)
}

// Handle installs the handler for command.
func (s *Server) Handle(command string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[command] = h
}

// Requests returns the commands received so far, in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Event sends an event. Called from a handler, the event follows the
// handler's response.
func (s *Server) Event(name string, body any) {
	s.mu.Lock()
	s.seq++
	msg := map[string]any{"seq": s.seq, "type": dap.TypeEvent, "event": name}
	if body != nil {
		msg["body"] = body
	}
	data, _ := json.Marshal(msg)
	if s.handling {
		s.deferred = append(s.deferred, data)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	_ = s.transport.Send(data)
}

// Close ends the connection.
func (s *Server) Close() {
	_ = s.transport.Close()
	<-s.done
}

func (s *Server) serve() {
	defer close(s.done)
	for {
		content, err := s.transport.Receive()
		if err != nil {
			return
		}
		var req incoming
		if err := json.Unmarshal(content, &req); err != nil {
			continue
		}

		s.mu.Lock()
		s.requests = append(s.requests, req.Command)
		h := s.handlers[req.Command]
		s.handling = true
		s.mu.Unlock()

		resp := map[string]any{"type": dap.TypeResponse, "request_seq": req.Seq, "command": req.Command, "success": true}
		if h != nil {
			body, err := h(req.Arguments)
			switch {
			case err != nil:
				resp["success"] = false
				resp["message"] = err.Error()
			case body != nil:
				resp["body"] = body
			}
		}

		s.mu.Lock()
		s.seq++
		resp["seq"] = s.seq
		s.handling = false
		deferred := s.deferred
		s.deferred = nil
		s.mu.Unlock()

		data, _ := json.Marshal(resp)
		if err := s.transport.Send(data); err != nil {
			return
		}
		for _, ev := range deferred {
			if err := s.transport.Send(ev); err != nil {
				return
			}
		}
	}
}
