package render

import (
	"os"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSourceCacheSize is the number of files kept in memory.
const DefaultSourceCacheSize = 64

// SourceLine is one line of a snippet.
type SourceLine struct {
	Number  int
	Text    string
	Current bool
}

// SourceCache reads source files and keeps the most recently used ones.
type SourceCache struct {
	files *lru.Cache[string, []string]
	read  func(string) ([]byte, error)
}

// NewSourceCache creates a cache holding up to size files.
func NewSourceCache(size int) (*SourceCache, error) {
	if size <= 0 {
		size = DefaultSourceCacheSize
	}
	files, err := lru.New[string, []string](size)
	if err != nil {
		return nil, err
	}
	return &SourceCache{files: files, read: os.ReadFile}, nil
}

// Lines returns the lines of file. Unreadable files are not cached.
func (c *SourceCache) Lines(file string) ([]string, bool) {
	if lines, ok := c.files.Get(file); ok {
		return lines, true
	}
	data, err := c.read(file)
	if err != nil {
		return nil, false
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	c.files.Add(file, lines)
	return lines, true
}

// Snippet returns up to context lines on each side of line (1-based).
// It returns nil when the file cannot be read or line is out of range.
func (c *SourceCache) Snippet(file string, line, context int) []SourceLine {
	lines, ok := c.Lines(file)
	if !ok || line < 1 || line > len(lines) {
		return nil
	}
	if context < 0 {
		context = 0
	}

	first := max(1, line-context)
	last := min(len(lines), line+context)
	out := make([]SourceLine, 0, last-first+1)
	for n := first; n <= last; n++ {
		out = append(out, SourceLine{Number: n, Text: lines[n-1], Current: n == line})
	}
	return out
}

// Purge drops every cached file.
func (c *SourceCache) Purge() {
	c.files.Purge()
}

// Len returns the number of cached files.
func (c *SourceCache) Len() int {
	return c.files.Len()
}
