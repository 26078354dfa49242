package render

import (
	"strconv"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/backstep/internal/session"
)

// maxOutputLines bounds the output panel scrollback.
const maxOutputLines = 2000

// Screen draws a full-screen layout on a tcell screen:
//
//	┌ source panel ───────────────┐  2*ContextLines+1 rows
//	├ location bar ───────────────┤
//	│ output panel                │  remaining rows
//	└ prompt ─────────────────────┘  last row
//
// The caller owns the screen's Init and Fini.
type Screen struct {
	mu     sync.Mutex
	screen tcell.Screen
	fmt    formatter
	styles map[role]tcell.Style

	location *session.Payload
	output   []line
	status   session.Status
	input    []rune
	cursor   int
}

// NewScreen creates a screen renderer.
func NewScreen(screen tcell.Screen, opts Options, source *SourceCache) *Screen {
	s := &Screen{screen: screen}
	s.fmt.source = source
	s.Apply(opts)
	return s
}

// Apply replaces the rendering options and redraws.
func (s *Screen) Apply(opts Options) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fmt.opts = opts
	s.styles = screenStyles(opts)
	s.draw()
}

func screenStyles(opts Options) map[role]tcell.Style {
	base := tcell.StyleDefault
	fg := func(c string) tcell.Style {
		if opts.Color == ColorNever || c == "" {
			return base
		}
		return base.Foreground(parseColor(c))
	}
	return map[role]tcell.Style{
		roleText:     base,
		roleMuted:    fg(opts.Theme.Muted),
		roleTitle:    base.Bold(true),
		roleLocation: fg(opts.Theme.Location).Bold(true),
		roleCurrent:  fg(opts.Theme.Current).Bold(true),
		roleAdded:    fg(opts.Theme.Added),
		roleRemoved:  fg(opts.Theme.Removed),
		roleError:    fg(opts.Theme.Error),
	}
}

// parseColor accepts palette numbers as well as tcell color names and hex.
func parseColor(c string) tcell.Color {
	if n, err := strconv.Atoi(c); err == nil {
		return tcell.PaletteColor(n)
	}
	return tcell.GetColor(c)
}

// Render implements session.Renderer.
func (s *Screen) Render(p session.Payload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = p.Status
	if p.Kind == session.EventLocation {
		loc := p
		s.location = &loc
	}
	s.output = append(s.output, s.fmt.format(p, false)...)
	if over := len(s.output) - maxOutputLines; over > 0 {
		s.output = append(s.output[:0], s.output[over:]...)
	}
	s.draw()
}

// DrawPrompt redraws the prompt row with the text being edited.
func (s *Screen) DrawPrompt(st session.Status, input []rune, cursor int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = st
	s.input = append(s.input[:0], input...)
	s.cursor = cursor
	s.draw()
}

// Resize redraws after a terminal size change.
func (s *Screen) Resize() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.screen.Sync()
	s.draw()
}

func (s *Screen) draw() {
	s.screen.Clear()
	width, height := s.screen.Size()
	if width <= 0 || height <= 0 {
		return
	}

	srcRows := min(2*s.fmt.opts.ContextLines+1, height/2)
	row := 0

	// source panel
	if s.location != nil {
		for _, l := range s.fmt.snippet(s.location.Location) {
			if row >= srcRows {
				break
			}
			s.drawLine(row, width, l)
			row++
		}
	}
	row = srcRows

	// location bar
	if row < height-1 {
		bar := " " + StatusText(s.status)
		if s.location != nil {
			bar = " " + s.fmt.header(s.location.Location) + "  " + StatusText(s.status)
		}
		s.drawText(0, row, width, bar, s.styles[roleLocation].Reverse(true), true)
		row++
	}

	// output panel shows the newest lines that fit
	outRows := height - 1 - row
	start := max(0, len(s.output)-outRows)
	for _, l := range s.output[start:] {
		s.drawLine(row, width, l)
		row++
	}

	// prompt
	prompt := PromptText(s.status)
	x := s.drawText(0, height-1, width, prompt, s.styles[roleMuted], false)
	s.drawText(x, height-1, width-x, string(s.input), s.styles[roleText], false)
	cx := x + uniseg.StringWidth(string(s.input[:min(s.cursor, len(s.input))]))
	s.screen.ShowCursor(min(cx, width-1), height-1)

	s.screen.Show()
}

func (s *Screen) drawLine(row, width int, l line) {
	x := 0
	for _, seg := range l {
		if x >= width {
			return
		}
		x = s.drawText(x, row, width-x, seg.text, s.styles[seg.role], false)
	}
}

// drawText draws text from column x, clipped to width cells, and returns the
// column after the last cell drawn. fill pads the rest of the row.
func (s *Screen) drawText(x, row, width int, text string, style tcell.Style, fill bool) int {
	text = clip(expandTabs(text), width)
	end := x + width

	g := uniseg.NewGraphemes(text)
	for g.Next() {
		runes := g.Runes()
		s.screen.SetContent(x, row, runes[0], runes[1:], style)
		x += max(1, g.Width())
	}
	if fill {
		for ; x < end; x++ {
			s.screen.SetContent(x, row, ' ', nil, style)
		}
	}
	return x
}
