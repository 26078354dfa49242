// Package pretty renders captured variable values as stable, multi-line text.
//
// Values are carried as canonical JSON. Rendering sorts object keys and places
// one element per line, so the same value always produces the same lines and
// line-level diffs stay meaningful.
package pretty

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

var options = &pretty.Options{
	// one element per line
	Width:    1,
	Prefix:   "",
	Indent:   "  ",
	SortKeys: true,
}

// Encode returns the canonical JSON encoding of v.
func Encode(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("pretty: encode %T: %w", v, err)
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// JSON formats a JSON document as indented text with sorted keys.
// Invalid input is returned unchanged.
func JSON(data []byte) string {
	if !json.Valid(data) {
		return string(data)
	}
	out := pretty.PrettyOptions(data, options)
	return strings.TrimRight(string(out), "\n")
}

// Go formats an arbitrary Go value. Values that cannot be encoded as JSON
// fall back to fmt's %v verb.
func Go(v any) string {
	data, err := Encode(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return JSON(data)
}

// Lookup resolves a dotted path inside a JSON document. An empty path
// returns the document itself.
func Lookup(data []byte, path string) (json.RawMessage, bool) {
	if path == "" {
		return json.RawMessage(data), len(data) > 0
	}
	res := gjson.GetBytes(data, path)
	if !res.Exists() {
		return nil, false
	}
	return json.RawMessage(res.Raw), true
}

// SplitPath splits an expression such as `user.tags[0]` into the variable
// name ("user") and a gjson lookup path ("tags.0"). Quoted bracket keys
// (`d["a.b"]`, `d['k']`) lose their quotes and are escaped as one path
// component. Parenthesized gjson queries such as `#(age>40)` are kept whole.
func SplitPath(expr string) (name, path string) {
	expr = strings.TrimSpace(expr)
	i := strings.IndexAny(expr, ".[")
	if i < 0 {
		return expr, ""
	}
	name, rest := expr[:i], expr[i:]

	var (
		parts []string
		cur   strings.Builder
		depth int
	)
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}
	for j := 0; j < len(rest); j++ {
		c := rest[j]
		switch {
		case depth > 0:
			cur.WriteByte(c)
			if c == '(' {
				depth++
			} else if c == ')' {
				depth--
			}
		case c == '(':
			depth++
			cur.WriteByte(c)
		case c == '.':
			flush()
		case c == '[':
			flush()
			end := closingBracket(rest, j+1)
			if end < 0 {
				cur.WriteString(rest[j+1:])
				j = len(rest)
				continue
			}
			parts = append(parts, bracketKey(rest[j+1:end]))
			j = end
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return name, strings.Join(parts, ".")
}

// closingBracket returns the index of the ']' that closes a bracket opened
// before from, skipping quoted text.
func closingBracket(s string, from int) int {
	var quote byte
	for i := from; i < len(s); i++ {
		switch c := s[i]; {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == ']':
			return i
		}
	}
	return -1
}

func bracketKey(key string) string {
	key = strings.TrimSpace(key)
	if n := len(key); n >= 2 && (key[0] == '"' || key[0] == '\'') && key[n-1] == key[0] {
		inner := key[1 : n-1]
		if key[0] == '"' {
			if s, err := strconv.Unquote(key); err == nil {
				inner = s
			}
		}
		return gjson.Escape(inner)
	}
	return key
}

// Lines splits a representation into display lines. An empty
// representation has no lines.
func Lines(repr string) []string {
	if repr == "" {
		return nil
	}
	return strings.Split(repr, "\n")
}
