package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCharDisplayWidth(t *testing.T) {
	tests := []struct {
		name string
		r    rune
		want int
	}{
		{"ascii", 'a', 1},
		{"space", ' ', 1},
		{"latin accent", 'é', 1},
		{"box drawing", '─', 1},
		{"cjk ideograph", '世', 2},
		{"hangul syllable", '한', 2},
		{"hangul jamo", 'ᄀ', 2},
		{"hiragana", 'あ', 2},
		{"fullwidth latin", 'Ａ', 2},
		{"fullwidth digit", '１', 2},
		{"halfwidth katakana", 'ｱ', 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CharDisplayWidth(tt.r))
		})
	}
}

func TestStringWidth(t *testing.T) {
	assert.Equal(t, 0, StringWidth(""))
	assert.Equal(t, 5, StringWidth("hello"))
	assert.Equal(t, 6, StringWidth("a世界b"))
}

func TestCharIndexAt(t *testing.T) {
	line := []Cell{{Char: 'a'}, {Char: '世'}, {Char: 'b'}}

	assert.Equal(t, 0, charIndexAt(line, 0))
	assert.Equal(t, 1, charIndexAt(line, 1))
	assert.Equal(t, 1, charIndexAt(line, 2))
	assert.Equal(t, 2, charIndexAt(line, 3))
	assert.Equal(t, 3, charIndexAt(line, 4))
	assert.Equal(t, 5, charIndexAt(line, 6))
}

func TestClipLine(t *testing.T) {
	line := []Cell{{Char: 'a'}, {Char: '世'}, {Char: 'b'}}

	assert.Len(t, clipLine(line, 10), 3)
	assert.Len(t, clipLine(line, 3), 2)
	assert.Len(t, clipLine(line, 2), 1, "wide char that would straddle the margin is dropped")
	assert.Empty(t, clipLine(line, 0))
}
