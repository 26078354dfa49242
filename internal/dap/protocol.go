package dap

import "encoding/json"

// Message type values.
const (
	TypeRequest  = "request"
	TypeResponse = "response"
	TypeEvent    = "event"
)

// envelope holds the fields shared by every message.
type envelope struct {
	Seq  int    `json:"seq"`
	Type string `json:"type"`
}

// Request is a client request.
type Request struct {
	Seq       int    `json:"seq"`
	Type      string `json:"type"`
	Command   string `json:"command"`
	Arguments any    `json:"arguments,omitempty"`
}

// Response answers a request.
type Response struct {
	Seq        int             `json:"seq"`
	Type       string          `json:"type"`
	RequestSeq int             `json:"request_seq"`
	Success    bool            `json:"success"`
	Command    string          `json:"command"`
	Message    string          `json:"message,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
}

// Event is sent by the adapter without a request.
type Event struct {
	Seq   int             `json:"seq"`
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Body  json.RawMessage `json:"body,omitempty"`
}

// Decode unmarshals the event body into v.
func (e Event) Decode(v any) error {
	if len(e.Body) == 0 {
		return nil
	}
	return json.Unmarshal(e.Body, v)
}

// Capabilities is the subset of adapter capabilities the client uses.
type Capabilities struct {
	SupportsConfigurationDoneRequest bool `json:"supportsConfigurationDoneRequest,omitempty"`
	SupportTerminateDebuggee         bool `json:"supportTerminateDebuggee,omitempty"`
	SupportsEvaluateForHovers        bool `json:"supportsEvaluateForHovers,omitempty"`
}

// InitializeArguments are sent with initialize.
type InitializeArguments struct {
	ClientID             string `json:"clientID,omitempty"`
	ClientName           string `json:"clientName,omitempty"`
	AdapterID            string `json:"adapterID"`
	LinesStartAt1        bool   `json:"linesStartAt1"`
	ColumnsStartAt1      bool   `json:"columnsStartAt1"`
	PathFormat           string `json:"pathFormat,omitempty"`
	SupportsVariableType bool   `json:"supportsVariableType,omitempty"`
}

// Source names a source file.
type Source struct {
	Name string `json:"name,omitempty"`
	Path string `json:"path,omitempty"`
}

// SourceBreakpoint is a requested line breakpoint.
type SourceBreakpoint struct {
	Line      int    `json:"line"`
	Condition string `json:"condition,omitempty"`
}

// SetBreakpointsArguments replaces the breakpoints of one source.
type SetBreakpointsArguments struct {
	Source      Source             `json:"source"`
	Breakpoints []SourceBreakpoint `json:"breakpoints"`
}

// Breakpoint is a breakpoint as the adapter placed it.
type Breakpoint struct {
	ID       int    `json:"id,omitempty"`
	Verified bool   `json:"verified"`
	Message  string `json:"message,omitempty"`
	Line     int    `json:"line,omitempty"`
}

// ThreadArguments address one thread. next, stepIn, stepOut and continue
// all take this shape.
type ThreadArguments struct {
	ThreadID int `json:"threadId"`
}

// DisconnectArguments end the debug session.
type DisconnectArguments struct {
	TerminateDebuggee bool `json:"terminateDebuggee"`
}

// StoppedEventBody is the body of the stopped event.
type StoppedEventBody struct {
	Reason            string `json:"reason"`
	Description       string `json:"description,omitempty"`
	ThreadID          int    `json:"threadId,omitempty"`
	AllThreadsStopped bool   `json:"allThreadsStopped,omitempty"`
	Text              string `json:"text,omitempty"`
}

// ExitedEventBody is the body of the exited event.
type ExitedEventBody struct {
	ExitCode int `json:"exitCode"`
}

// OutputEventBody is the body of the output event.
type OutputEventBody struct {
	Category string `json:"category,omitempty"`
	Output   string `json:"output"`
}

// StackTraceArguments request the frames of a thread.
type StackTraceArguments struct {
	ThreadID   int `json:"threadId"`
	StartFrame int `json:"startFrame,omitempty"`
	Levels     int `json:"levels,omitempty"`
}

// StackFrame is one frame, innermost first in a stack trace.
type StackFrame struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Source *Source `json:"source,omitempty"`
	Line   int     `json:"line"`
	Column int     `json:"column"`
}

type stackTraceBody struct {
	StackFrames []StackFrame `json:"stackFrames"`
	TotalFrames int          `json:"totalFrames,omitempty"`
}

// Scope groups variables of a frame.
type Scope struct {
	Name               string `json:"name"`
	PresentationHint   string `json:"presentationHint,omitempty"`
	VariablesReference int    `json:"variablesReference"`
	Expensive          bool   `json:"expensive"`
}

type scopesBody struct {
	Scopes []Scope `json:"scopes"`
}

// VariablesArguments request the children of a reference.
type VariablesArguments struct {
	VariablesReference int `json:"variablesReference"`
	Start              int `json:"start,omitempty"`
	Count              int `json:"count,omitempty"`
}

// Variable is a named value. A non-zero VariablesReference means it has
// children.
type Variable struct {
	Name               string `json:"name"`
	Value              string `json:"value"`
	Type               string `json:"type,omitempty"`
	VariablesReference int    `json:"variablesReference"`
	IndexedVariables   int    `json:"indexedVariables,omitempty"`
	NamedVariables     int    `json:"namedVariables,omitempty"`
}

type variablesBody struct {
	Variables []Variable `json:"variables"`
}

// EvaluateArguments evaluate an expression in a frame.
type EvaluateArguments struct {
	Expression string `json:"expression"`
	FrameID    int    `json:"frameId,omitempty"`
	Context    string `json:"context,omitempty"`
}

// EvaluateResult is the body of an evaluate response.
type EvaluateResult struct {
	Result             string `json:"result"`
	Type               string `json:"type,omitempty"`
	VariablesReference int    `json:"variablesReference"`
}
