// Package eval evaluates operator expressions against a checkpoint.
//
// Expressions are Lua. Each evaluation runs in a fresh, sandboxed state
// holding the checkpoint's captured locals as globals; structured values
// become tables, text-only values become strings. Nothing an expression does
// can reach the debugged program or a later evaluation.
//
// An expression is first compiled as "return <expr>". If that does not
// parse, the input is run as a statement block, so both
//
//	count * 2
//	for i, v in ipairs(items) do print(i, v) end
//
// work. Results and print output are returned as text.
package eval
