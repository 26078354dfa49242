package command

// Effect says whether running a command keeps the session paused.
type Effect uint8

const (
	// Stay keeps the operator at the prompt.
	Stay Effect = iota

	// Proceed hands control back to the instrumented program.
	Proceed
)

// String returns the effect name.
func (e Effect) String() string {
	switch e {
	case Stay:
		return "stay"
	case Proceed:
		return "proceed"
	default:
		return "unknown"
	}
}

// Kind identifies a built-in command. The set is closed.
type Kind uint8

const (
	KindLine Kind = iota + 1
	KindArgs
	KindPretty
	KindWatch
	KindDiff
	KindHistory
	KindBack
	KindForward
	KindNext
	KindStep
	KindReturn
	KindContinue
	KindQuit
	KindLocals
	KindHelp
)

var kindNames = map[Kind]string{
	KindLine:     "line",
	KindArgs:     "args",
	KindPretty:   "pretty",
	KindWatch:    "watch",
	KindDiff:     "diff",
	KindHistory:  "history",
	KindBack:     "back",
	KindForward:  "forward",
	KindNext:     "next",
	KindStep:     "step",
	KindReturn:   "return",
	KindContinue: "continue",
	KindQuit:     "quit",
	KindLocals:   "locals",
	KindHelp:     "help",
}

// String returns the canonical command name for the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command is the definition of one command.
type Command struct {
	// Kind selects the behavior the session runs.
	Kind Kind

	// Aliases lists the names the command answers to. The first is canonical.
	Aliases []string

	// Arity is the exact number of arguments required.
	Arity int

	// Effect says whether the command resumes the program.
	Effect Effect

	// Terminal marks a command that ends the session.
	Terminal bool

	// Summary is a one-line description shown by help.
	Summary string

	// Usage names the arguments, e.g. "<name>".
	Usage string
}

// Name returns the canonical alias.
func (c *Command) Name() string {
	if len(c.Aliases) == 0 {
		return ""
	}
	return c.Aliases[0]
}

// Builtins returns fresh definitions of the built-in commands in display order.
func Builtins() []Command {
	return []Command{
		{Kind: KindLine, Aliases: []string{"line", "l"}, Effect: Stay,
			Summary: "show the code around the current checkpoint"},
		{Kind: KindArgs, Aliases: []string{"args", "a"}, Effect: Stay,
			Summary: "show the arguments of the current call"},
		{Kind: KindLocals, Aliases: []string{"locals", "lo"}, Effect: Stay,
			Summary: "show every captured local"},
		{Kind: KindPretty, Aliases: []string{"pretty", "pp"}, Arity: 1, Effect: Stay,
			Usage: "<expr>", Summary: "pretty-print a variable or a path inside it"},
		{Kind: KindWatch, Aliases: []string{"watch", "w"}, Arity: 1, Effect: Stay,
			Usage: "<name>", Summary: "toggle showing changes to a variable at every stop"},
		{Kind: KindDiff, Aliases: []string{"diff", "d"}, Arity: 1, Effect: Stay,
			Usage: "<name>", Summary: "diff a variable against its previous value in this call"},
		{Kind: KindHistory, Aliases: []string{"history", "h"}, Arity: 1, Effect: Stay,
			Usage: "<name>", Summary: "list every value a variable held in this call"},
		{Kind: KindBack, Aliases: []string{"back", "b"}, Effect: Stay,
			Summary: "view the previous checkpoint"},
		{Kind: KindForward, Aliases: []string{"forward", "f"}, Effect: Stay,
			Summary: "view the next checkpoint"},
		{Kind: KindNext, Aliases: []string{"next", "n"}, Effect: Proceed,
			Summary: "run to the next line in this function"},
		{Kind: KindStep, Aliases: []string{"step", "s"}, Effect: Proceed,
			Summary: "run to the next line, entering calls"},
		{Kind: KindReturn, Aliases: []string{"return", "r"}, Effect: Proceed,
			Summary: "run until the current function returns"},
		{Kind: KindContinue, Aliases: []string{"continue", "c"}, Effect: Proceed,
			Summary: "run until the next breakpoint"},
		{Kind: KindQuit, Aliases: []string{"quit", "q"}, Effect: Proceed, Terminal: true,
			Summary: "detach and end the session"},
		{Kind: KindHelp, Aliases: []string{"help", "?"}, Effect: Stay,
			Summary: "list commands"},
	}
}
