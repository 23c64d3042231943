package render

import (
	"strings"
)

// Wrap greedily wraps text at the given column width, never splitting words.
// Words longer than the width occupy a line of their own. An empty input
// yields a single empty line so layouts keep their vertical rhythm.
func Wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	for _, w := range words[1:] {
		if len(current)+1+len(w) <= width {
			current += " " + w
		} else {
			lines = append(lines, current)
			current = w
		}
	}
	return append(lines, current)
}
