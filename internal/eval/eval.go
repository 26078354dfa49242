package eval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/backstep/internal/pretty"
	"github.com/dshills/backstep/internal/session"
)

// DefaultTimeout bounds a single evaluation.
const DefaultTimeout = 2 * time.Second

// unsafe globals removed from every state
var blocked = []string{"dofile", "loadfile", "load", "loadstring", "require", "module", "collectgarbage"}

// Lua evaluates expressions with gopher-lua.
type Lua struct {
	timeout time.Duration
}

// Option configures a Lua evaluator.
type Option func(*Lua)

// WithTimeout sets the per-evaluation timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Lua) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewLua creates an evaluator.
func NewLua(opts ...Option) *Lua {
	e := &Lua{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate implements session.Evaluator.
func (e *Lua) Evaluate(ctx context.Context, expr string, ec session.EvalContext) (result string, err error) {
	if ec.Checkpoint == nil {
		return "", ErrNoCheckpoint
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibraries(L)

	var printed strings.Builder
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		printed.WriteString(strings.Join(parts, "\t"))
		printed.WriteByte('\n')
		return 0
	}))
	L.SetGlobal("pp", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(pretty.Go(toGo(L.CheckAny(1)))))
		return 1
	}))

	for _, name := range ec.Checkpoint.Names() {
		v, _ := ec.Checkpoint.Local(name)
		L.SetGlobal(name, valueToLua(L, v))
	}
	L.SetContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	fn, err := compile(L, expr)
	if err != nil {
		return "", err
	}

	top := L.GetTop()
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return "", fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
		case ctx.Err() != nil:
			return "", ctx.Err()
		}
		return "", cleanError(err)
	}

	var out []string
	for i := top + 1; i <= L.GetTop(); i++ {
		out = append(out, format(L.Get(i)))
	}
	text := strings.TrimRight(printed.String(), "\n")
	if len(out) > 0 {
		if text != "" {
			text += "\n"
		}
		text += strings.Join(out, "\n")
	}
	return text, nil
}

// compile tries expr as an expression, then as a statement block.
func compile(L *lua.LState, expr string) (*lua.LFunction, error) {
	if fn, err := L.LoadString("return " + expr); err == nil {
		return fn, nil
	}
	fn, err := L.LoadString(expr)
	if err != nil {
		return nil, cleanError(err)
	}
	return fn, nil
}

func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range blocked {
		L.SetGlobal(name, lua.LNil)
	}
}

func format(lv lua.LValue) string {
	if lv == lua.LNil {
		return "nil"
	}
	return pretty.Go(toGo(lv))
}

// cleanError drops the chunk position prefix gopher-lua adds.
func cleanError(err error) error {
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil {
		msg := apiErr.Object.String()
		if rest, ok := strings.CutPrefix(msg, "<string>:"); ok {
			if _, after, found := strings.Cut(rest, ": "); found {
				msg = after
			}
		}
		return errors.New(msg)
	}
	return err
}
