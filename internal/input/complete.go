package input

import (
	"slices"
	"strings"
	"unicode"
)

// Completer proposes command names for the first word of a line. A word
// matches a candidate when its runes appear in the candidate in order, so
// "hst" finds "history".
type Completer struct {
	words []string
}

// NewCompleter returns a completer over words. Duplicates and empty words
// are dropped.
func NewCompleter(words []string) *Completer {
	c := &Completer{}
	for _, w := range words {
		if w != "" && !slices.Contains(c.words, w) {
			c.words = append(c.words, w)
		}
	}
	return c
}

type candidate struct {
	word  string
	score int
}

// Match returns the candidates for query, best first. Ties sort by name.
func (c *Completer) Match(query string) []string {
	q := []rune(strings.ToLower(query))
	if len(q) == 0 {
		return nil
	}

	var found []candidate
	for _, w := range c.words {
		if score, ok := scoreWord(q, w); ok {
			found = append(found, candidate{word: w, score: score})
		}
	}
	slices.SortFunc(found, func(a, b candidate) int {
		if a.score != b.score {
			return b.score - a.score
		}
		return strings.Compare(a.word, b.word)
	})

	out := make([]string, len(found))
	for i, f := range found {
		out[i] = f.word
	}
	return out
}

// Complete returns the replacement for word. A unique prefix match is
// completed and followed by a space; several prefix matches extend word to
// their common prefix. Without prefix matches the best in-order match
// wins. ok is false when nothing matches.
func (c *Completer) Complete(word string) (string, bool) {
	matches := c.Match(word)
	if len(matches) == 0 {
		return word, false
	}

	var prefixed []string
	for _, m := range matches {
		if strings.HasPrefix(m, word) {
			prefixed = append(prefixed, m)
		}
	}
	switch len(prefixed) {
	case 0:
		return matches[0] + " ", true
	case 1:
		return prefixed[0] + " ", true
	}
	common := prefixed[0]
	for _, m := range prefixed[1:] {
		for !strings.HasPrefix(m, common) {
			common = common[:len(common)-1]
		}
	}
	return common, true
}

// scoreWord matches q against word left to right. Consecutive runs, a
// match at the start and short words score higher.
func scoreWord(q []rune, word string) (int, bool) {
	original := []rune(word)
	text := []rune(strings.ToLower(word))

	matches := make([]int, 0, len(q))
	for i := 0; i < len(text) && len(matches) < len(q); i++ {
		if text[i] == q[len(matches)] {
			matches = append(matches, i)
		}
	}
	if len(matches) != len(q) {
		return 0, false
	}

	score := 100
	for i := 1; i < len(matches); i++ {
		if matches[i] == matches[i-1]+1 {
			score += 20
		}
	}
	for _, idx := range matches {
		if idx == 0 || unicode.IsPunct(original[idx-1]) {
			score += 15
		}
	}
	if matches[0] == 0 {
		score += 25
	} else {
		score -= matches[0]
	}
	if gap := matches[len(matches)-1] - matches[0] - len(matches) + 1; gap > 0 {
		score -= 2 * gap
	}
	if len(text) < 20 {
		score += 20 - len(text)
	}
	if matches[len(matches)-1] == len(matches)-1 {
		// query is a prefix
		score += 50
	}
	return max(score, 1), true
}
