package app

import (
	"io"

	"github.com/dshills/backstep/internal/command"
	"github.com/dshills/backstep/internal/config"
	"github.com/dshills/backstep/internal/render"
	"github.com/dshills/backstep/internal/session"
)

// WriteCommands prints the built-in command table the way the help command
// shows it inside a session.
func WriteCommands(w io.Writer, cfg *config.Config) error {
	if cfg == nil {
		cfg = config.Default()
	}
	reg, err := command.NewBuiltinRegistry()
	if err != nil {
		return err
	}
	render.NewText(w, cfg.Render.Options(), nil).Render(session.Payload{
		Kind:     session.EventHelp,
		Title:    "commands",
		Commands: reg.Commands(),
	})
	return nil
}
