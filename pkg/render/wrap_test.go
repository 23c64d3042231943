package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"empty", "", 60, []string{""}},
		{"fits", "short line", 60, []string{"short line"}},
		{"splits", "alpha beta gamma", 11, []string{"alpha beta", "gamma"}},
		{"exact boundary", "ab cd", 5, []string{"ab cd"}},
		{"long word kept whole", "supercalifragilistic is long", 10, []string{"supercalifragilistic", "is long"}},
		{"collapses whitespace", "a   b\tc", 60, []string{"a b c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Wrap(tt.text, tt.width))
		})
	}
}

func TestWrapPreservesWords(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog"
	for width := 3; width <= 50; width++ {
		lines := Wrap(text, width)
		assert.Equal(t, text, strings.Join(lines, " "), "width %d", width)
	}
}
