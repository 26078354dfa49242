// Package config loads backstep's settings.
//
// Settings come from four places, later ones overriding earlier ones:
//
//	┌─────────────────────────────┐
//	│  4. Command line flags      │  ← applied by the caller
//	├─────────────────────────────┤
//	│  3. BACKSTEP_* environment  │
//	├─────────────────────────────┤
//	│  2. Config file             │  ← config.toml or config.yaml
//	├─────────────────────────────┤
//	│  1. Built-in defaults       │
//	└─────────────────────────────┘
//
// The file format follows the extension: .toml files are read with
// go-toml, .yaml and .yml files with yaml.v3. Unknown keys are rejected so
// that typos surface as parse errors rather than silently ignored settings.
//
// # Live reload
//
// A Watcher follows the config file with fsnotify and hands every valid
// reload to its subscribers. Only presentation settings are meant to be
// applied live; the running session, its history and its command table are
// never rebuilt from a reload.
//
//	w, err := config.NewWatcher(path, config.WithOverrides(applyFlags))
//	w.Subscribe(func(c *config.Config) { renderer.Apply(c.Render.Options()) })
//	go w.Run(ctx)
package config
