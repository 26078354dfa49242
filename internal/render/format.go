package render

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/dshills/backstep/internal/checkpoint"
	"github.com/dshills/backstep/internal/session"
	"github.com/dshills/backstep/internal/timeline"
)

// role tags a segment with its meaning; renderers map roles to styles.
type role int

const (
	roleText role = iota
	roleMuted
	roleTitle
	roleLocation
	roleCurrent
	roleAdded
	roleRemoved
	roleError
)

type segment struct {
	role role
	text string
}

type line []segment

func plain(r role, text string) line {
	return line{{r, text}}
}

// String returns the line without styling.
func (l line) String() string {
	var b strings.Builder
	for _, s := range l {
		b.WriteString(s.text)
	}
	return b.String()
}

// formatter turns payloads into lines.
type formatter struct {
	opts   Options
	source *SourceCache
}

// format renders p. The source snippet of a location is included only when
// withSource is set.
func (f *formatter) format(p session.Payload, withSource bool) []line {
	switch p.Kind {
	case session.EventLocation:
		return f.location(p, withSource)
	case session.EventValue:
		return f.value(p)
	case session.EventValues:
		return f.values(p.Values)
	case session.EventDiff:
		return f.diffs(p.Diffs)
	case session.EventTimeline:
		return f.timeline(p)
	case session.EventEvaluation:
		return textLines(roleText, p.Text)
	case session.EventHelp:
		return f.help(p)
	case session.EventError:
		return textLines(roleError, p.Text)
	default:
		return textLines(roleMuted, p.Text)
	}
}

func textLines(r role, text string) []line {
	if text == "" {
		return nil
	}
	parts := strings.Split(text, "\n")
	out := make([]line, len(parts))
	for i, s := range parts {
		out[i] = plain(r, s)
	}
	return out
}

// header returns "function (file:line)" for a location.
func (f *formatter) header(loc checkpoint.Location) string {
	where := loc.Short(f.opts.BaseDir)
	if loc.Function == "" {
		return where
	}
	return fmt.Sprintf("%s (%s)", loc.Function, where)
}

func (f *formatter) location(p session.Payload, withSource bool) []line {
	out := []line{{{roleLocation, "> " + f.header(p.Location)}}}
	if p.Latest != nil {
		out = append(out, plain(roleMuted,
			fmt.Sprintf("  viewing checkpoint %d of %d; program is at %s",
				p.Status.Position, p.Status.Total, p.Latest.Short(f.opts.BaseDir))))
	}
	if withSource {
		out = append(out, f.snippet(p.Location)...)
	}
	if len(p.Diffs) > 0 {
		out = append(out, f.diffs(p.Diffs)...)
	}
	return out
}

func (f *formatter) snippet(loc checkpoint.Location) []line {
	if f.source == nil {
		return nil
	}
	lines := f.source.Snippet(loc.File, loc.Line, f.opts.ContextLines)
	if len(lines) == 0 {
		return nil
	}

	width := len(fmt.Sprint(lines[len(lines)-1].Number))
	out := make([]line, 0, len(lines))
	for _, sl := range lines {
		gutter := fmt.Sprintf("%*d   ", width, sl.Number)
		r := roleText
		if sl.Current {
			gutter = fmt.Sprintf("%*d ->", width, sl.Number)
			r = roleCurrent
		}
		out = append(out, line{{roleMuted, gutter}, {r, " " + expandTabs(sl.Text)}})
	}
	return out
}

func (f *formatter) value(p session.Payload) []line {
	title := p.Title
	if f.opts.ShowTypes && len(p.Values) == 1 && p.Values[0].Type != "" {
		title += " (" + p.Values[0].Type + ")"
	}
	out := []line{plain(roleTitle, title+" =")}
	for _, l := range textLines(roleText, p.Text) {
		out = append(out, append(line{{roleText, "  "}}, l...))
	}
	return out
}

func (f *formatter) values(values []session.NamedValue) []line {
	var out []line
	for _, v := range values {
		name := v.Name
		if f.opts.ShowTypes && v.Type != "" {
			name += " (" + v.Type + ")"
		}
		parts := strings.Split(v.Repr, "\n")
		out = append(out, line{{roleTitle, name}, {roleText, " = " + parts[0]}})
		pad := strings.Repeat(" ", uniseg.StringWidth(name)+3)
		for _, s := range parts[1:] {
			out = append(out, plain(roleText, pad+s))
		}
	}
	return out
}

func (f *formatter) diffs(results []*timeline.Result) []line {
	var out []line
	for _, res := range results {
		out = append(out, f.diff(res)...)
	}
	return out
}

func (f *formatter) diff(res *timeline.Result) []line {
	head := fmt.Sprintf("%s: checkpoint %s -> %s", res.Name, res.From, res.To)
	if !res.Changed() {
		return []line{plain(roleMuted, head+" (unchanged)")}
	}

	out := []line{plain(roleTitle, head)}
	if f.opts.Unified {
		text, err := res.Unified()
		if err != nil {
			return append(out, plain(roleError, err.Error()))
		}
		for _, l := range textLines(roleText, strings.TrimRight(text, "\n")) {
			out = append(out, f.unifiedLine(l.String()))
		}
		return out
	}

	for _, l := range res.Lines {
		switch l.Tag {
		case timeline.Added:
			out = append(out, plain(roleAdded, "+ "+l.Text))
		case timeline.Removed:
			out = append(out, plain(roleRemoved, "- "+l.Text))
		default:
			out = append(out, plain(roleText, "  "+l.Text))
		}
	}
	return out
}

func (f *formatter) unifiedLine(s string) line {
	switch {
	case strings.HasPrefix(s, "+++"), strings.HasPrefix(s, "---"), strings.HasPrefix(s, "@@"):
		return plain(roleMuted, s)
	case strings.HasPrefix(s, "+"):
		return plain(roleAdded, s)
	case strings.HasPrefix(s, "-"):
		return plain(roleRemoved, s)
	default:
		return plain(roleText, s)
	}
}

func (f *formatter) timeline(p session.Payload) []line {
	out := []line{plain(roleTitle, p.Title+" in this call:")}
	for _, e := range p.Timeline {
		mark, r := "  ", roleText
		if e.Checkpoint == p.Checkpoint {
			mark, r = "* ", roleCurrent
		}
		label := fmt.Sprintf("%s#%s ", mark, e.Checkpoint)
		parts := strings.Split(e.Repr, "\n")
		out = append(out, line{{roleMuted, label}, {r, parts[0]}})
		pad := strings.Repeat(" ", uniseg.StringWidth(label))
		for _, s := range parts[1:] {
			out = append(out, line{{roleMuted, pad}, {r, s}})
		}
	}
	return out
}

func (f *formatter) help(p session.Payload) []line {
	nameWidth := 0
	rows := make([][2]string, 0, len(p.Commands))
	for _, cmd := range p.Commands {
		name := strings.Join(cmd.Aliases, "/")
		if cmd.Usage != "" {
			name += " " + cmd.Usage
		}
		nameWidth = max(nameWidth, uniseg.StringWidth(name))
		rows = append(rows, [2]string{name, cmd.Summary})
	}

	out := make([]line, 0, len(rows)+1)
	for _, row := range rows {
		pad := strings.Repeat(" ", nameWidth-uniseg.StringWidth(row[0])+2)
		out = append(out, line{{roleTitle, row[0]}, {roleText, pad + row[1]}})
	}
	out = append(out, plain(roleMuted, "anything else is evaluated as a Lua expression"))
	return out
}

// clip truncates s to width display cells without splitting graphemes.
func clip(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= width {
		return s
	}

	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w := g.Width()
		if used+w > width {
			break
		}
		b.WriteString(g.Str())
		used += w
	}
	return b.String()
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

// PromptText returns the left prompt, "[n] " with the evaluation count.
func PromptText(st session.Status) string {
	return fmt.Sprintf("[%d] ", st.EvalCount)
}

// StatusText returns the position part of the prompt, e.g.
// "main.go:12 (3/5, past)".
func StatusText(st session.Status) string {
	if st.Total == 0 {
		return ""
	}
	pos := fmt.Sprintf("%d/%d", st.Position, st.Total)
	if st.ViewingPast {
		pos += ", past"
	}
	return fmt.Sprintf("%s (%s)", st.Where, pos)
}

// PromptLine combines PromptText and StatusText for line-oriented input.
func PromptLine(st session.Status) string {
	if s := StatusText(st); s != "" {
		return PromptText(st) + s + "> "
	}
	return PromptText(st) + "> "
}
