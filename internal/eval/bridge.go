package eval

import (
	"encoding/json"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/backstep/internal/checkpoint"
)

// valueToLua converts a captured value. Structured values are decoded from
// their JSON form; everything else is exposed as its display text.
func valueToLua(L *lua.LState, v checkpoint.Value) lua.LValue {
	if !v.Structured() {
		return lua.LString(v.Repr())
	}
	var decoded any
	if err := json.Unmarshal(v.Data(), &decoded); err != nil {
		return lua.LString(v.Repr())
	}
	return toLua(L, decoded)
}

// toLua converts a decoded JSON value.
func toLua(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(x)
	case float64:
		return lua.LNumber(x)
	case string:
		return lua.LString(x)
	case []any:
		t := L.CreateTable(len(x), 0)
		for _, e := range x {
			t.Append(toLua(L, e))
		}
		return t
	case map[string]any:
		t := L.CreateTable(0, len(x))
		for k, e := range x {
			t.RawSetString(k, toLua(L, e))
		}
		return t
	default:
		return lua.LNil
	}
}

// toGo converts a Lua value into something pretty can encode.
func toGo(lv lua.LValue) any {
	return toGoVisited(lv, make(map[*lua.LTable]bool))
}

func toGoVisited(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return "<cycle>"
		}
		visited[v] = true
		defer delete(visited, v)
		return tableToGo(v, visited)
	case *lua.LFunction:
		return "<function>"
	case *lua.LUserData:
		return v.Value
	default:
		return nil
	}
}

// tableToGo returns a slice for sequences and a map otherwise.
func tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	n := t.Len()
	count := 0
	t.ForEach(func(_, _ lua.LValue) { count++ })

	if n > 0 && n == count {
		arr := make([]any, n)
		for i := 1; i <= n; i++ {
			arr[i-1] = toGoVisited(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		m[k.String()] = toGoVisited(v, visited)
	})
	return m
}
