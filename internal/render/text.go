package render

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/rivo/uniseg"
	"golang.org/x/term"

	"github.com/dshills/backstep/internal/session"
)

const defaultWidth = 100

// Text writes payloads to a stream.
type Text struct {
	mu     sync.Mutex
	w      io.Writer
	tty    bool
	out    *lipgloss.Renderer
	styles map[role]lipgloss.Style
	fmt    formatter
}

// NewText creates a text renderer writing to w.
func NewText(w io.Writer, opts Options, source *SourceCache) *Text {
	t := &Text{
		w:   w,
		tty: IsTerminal(w),
		out: lipgloss.NewRenderer(w),
	}
	t.fmt.source = source
	t.Apply(opts)
	return t
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Apply replaces the rendering options.
func (t *Text) Apply(opts Options) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.fmt.opts = opts
	switch {
	case opts.Color == ColorAlways:
		t.out.SetColorProfile(termenv.ANSI256)
	case opts.Color == ColorNever || !t.tty:
		t.out.SetColorProfile(termenv.Ascii)
	default:
		t.out.SetColorProfile(termenv.NewOutput(t.w).EnvColorProfile())
	}
	t.styles = textStyles(t.out, opts.Theme)
}

func textStyles(r *lipgloss.Renderer, th Theme) map[role]lipgloss.Style {
	fg := func(c string) lipgloss.Style {
		s := r.NewStyle()
		if c != "" {
			s = s.Foreground(lipgloss.Color(c))
		}
		return s
	}
	return map[role]lipgloss.Style{
		roleText:     r.NewStyle(),
		roleMuted:    fg(th.Muted),
		roleTitle:    r.NewStyle().Bold(true),
		roleLocation: fg(th.Location).Bold(true),
		roleCurrent:  fg(th.Current).Bold(true),
		roleAdded:    fg(th.Added),
		roleRemoved:  fg(th.Removed),
		roleError:    fg(th.Error),
	}
}

// width returns the terminal width, or a default when not a terminal.
func (t *Text) width() int {
	if f, ok := t.w.(*os.File); ok && t.tty {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return defaultWidth
}

// Render implements session.Renderer.
func (t *Text) Render(p session.Payload) {
	t.mu.Lock()
	defer t.mu.Unlock()

	lines := t.fmt.format(p, true)
	if len(lines) == 0 {
		return
	}

	width := t.width()
	var b strings.Builder
	for _, l := range lines {
		used := 0
		for _, seg := range l {
			text := seg.text
			// source lines are clipped, values wrap naturally
			if p.Kind == session.EventLocation {
				text = clip(text, width-used)
			}
			used += uniseg.StringWidth(text)
			b.WriteString(t.styles[seg.role].Render(text))
		}
		b.WriteByte('\n')
	}
	_, _ = io.WriteString(t.w, b.String())
}
