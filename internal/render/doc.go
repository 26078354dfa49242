// Package render displays session payloads.
//
// Two renderers share one formatter:
//
//   - Text writes styled lines to a stream. Colors come from lipgloss and
//     are switched off automatically when the stream is not a terminal.
//   - Screen draws a full-screen tcell layout: a source panel around the
//     viewed line, a scrolling output panel and a prompt row.
//
// The formatter turns a payload into lines of role-tagged segments; each
// renderer maps roles to its own styles. Source files are read through a
// bounded LRU cache so repeated stops in the same file do not reread it.
//
// Both renderers accept new Options at any time through Apply, which is how
// configuration reloads reach them.
package render
