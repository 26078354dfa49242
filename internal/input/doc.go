// Package input reads operator command lines.
//
// Plain reads newline-terminated lines from a stream. SIGINT while waiting
// cancels the current line instead of killing the process. ScreenReader
// edits a line on a tcell screen: Ctrl-C cancels the line, Ctrl-D on an
// empty line ends input, Up and Down walk previous entries.
//
// Both implement session.LineReader and report a cancelled line with
// session.ErrInterrupted and the end of input with io.EOF.
package input
