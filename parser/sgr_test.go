package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/javanhut/ravenvt/grid"
)

func TestSGRForegroundReset(t *testing.T) {
	p, g := newTest(80, 24)

	p.Parse("\x1b[31mRed\x1b[39mDefault", g)

	for x := 0; x < 3; x++ {
		assert.Equal(t, grid.ANSIColor(1), g.Cell(x, 0).Attr.Fg)
	}
	for x := 3; x < 10; x++ {
		assert.True(t, g.Cell(x, 0).Attr.Fg.IsDefault())
	}
	assert.Equal(t, "RedDefault", g.Text())
}

func TestSGR(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  grid.Attribute
	}{
		{"bold", "\x1b[1m", grid.Attribute{Flags: grid.FlagBold}},
		{"combined flags", "\x1b[1;3;4;7;9m", grid.Attribute{
			Flags: grid.FlagBold | grid.FlagItalic | grid.FlagUnderline | grid.FlagInverse | grid.FlagStrikethrough,
		}},
		{"dim and hidden", "\x1b[2;8m", grid.Attribute{Flags: grid.FlagDim | grid.FlagHidden}},
		{"normal intensity", "\x1b[1;2;3;22m", grid.Attribute{Flags: grid.FlagItalic}},
		{"flag resets", "\x1b[3;4;7;8;9;23;24;27;28;29m", grid.Attribute{}},
		{"reset", "\x1b[1;31;42m\x1b[0m", grid.Attribute{}},
		{"empty resets", "\x1b[1;31m\x1b[m", grid.Attribute{}},
		{"standard colors", "\x1b[32;45m", grid.Attribute{Fg: grid.ANSIColor(2), Bg: grid.ANSIColor(5)}},
		{"bright colors", "\x1b[91;102m", grid.Attribute{Fg: grid.ANSIColor(9), Bg: grid.ANSIColor(10)}},
		{"default background", "\x1b[44;49m", grid.Attribute{}},
		{"256 foreground", "\x1b[38;5;208m", grid.Attribute{Fg: grid.XtermColor(208)}},
		{"256 background", "\x1b[48;5;17m", grid.Attribute{Bg: grid.XtermColor(17)}},
		{"true color foreground", "\x1b[38;2;10;20;30m", grid.Attribute{Fg: grid.RGBColor(10, 20, 30)}},
		{"true color background", "\x1b[48;2;1;2;3m", grid.Attribute{Bg: grid.RGBColor(1, 2, 3)}},
		{"colon form", "\x1b[38:2:1:2:3m", grid.Attribute{Fg: grid.RGBColor(1, 2, 3)}},
		{"extended then flag", "\x1b[38;5;208;1m", grid.Attribute{Flags: grid.FlagBold, Fg: grid.XtermColor(208)}},
		{"channel clamped", "\x1b[38;2;300;0;0m", grid.Attribute{Fg: grid.RGBColor(255, 0, 0)}},
		{"unknown code skipped", "\x1b[1;53;3m", grid.Attribute{Flags: grid.FlagBold | grid.FlagItalic}},
		{"unknown color mode", "\x1b[38;9;1m", grid.Attribute{Flags: grid.FlagBold}},
		{"truncated 256", "\x1b[38;5m", grid.Attribute{}},
		{"truncated true color", "\x1b[38;2;1;2m", grid.Attribute{}},
		{"bare extended", "\x1b[48m", grid.Attribute{}},
		{"malformed index", "\x1b[38;5;<;1m", grid.Attribute{Flags: grid.FlagBold}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, g := newTest(80, 24)

			p.Parse(tt.input+"X", g)

			assert.Equal(t, tt.want, g.CurrentAttribute())
			assert.Equal(t, tt.want, g.Cell(0, 0).Attr)
			assert.Equal(t, "X", g.Text())
		})
	}
}

func TestPrivateMarkerIsNotSGR(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"modify other keys", "\x1b[>4;2m"},
		{"question mark", "\x1b[?1m"},
		{"equals", "\x1b[=4m"},
		{"less than", "\x1b[<31m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, g := newTest(80, 24)
			p.Parse("\x1b[32m", g)

			p.Parse(tt.input+"X", g)

			want := grid.Attribute{Fg: grid.ANSIColor(2)}
			assert.Equal(t, want, g.CurrentAttribute())
			assert.Equal(t, want, g.Cell(0, 0).Attr)
			assert.Equal(t, "X", g.Text())
		})
	}
}

func TestSGRTruncatedKeepsPreviousColor(t *testing.T) {
	p, g := newTest(80, 24)

	p.Parse("\x1b[31m\x1b[38;2;1mX", g)

	assert.Equal(t, grid.ANSIColor(1), g.Cell(0, 0).Attr.Fg)
}

func TestExtendedColor(t *testing.T) {
	tests := []struct {
		name     string
		rest     []int
		consumed int
		color    grid.Color
		ok       bool
	}{
		{"empty", nil, 0, grid.Color{}, false},
		{"indexed", []int{5, 100, 1}, 2, grid.XtermColor(100), true},
		{"indexed truncated", []int{5}, 1, grid.Color{}, false},
		{"rgb", []int{2, 1, 2, 3, 4}, 4, grid.RGBColor(1, 2, 3), true},
		{"rgb truncated", []int{2, 1, 2}, 3, grid.Color{}, false},
		{"rgb malformed", []int{2, -1, 2, 3}, 4, grid.Color{}, false},
		{"unknown mode", []int{7, 1}, 1, grid.Color{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, c, ok := extendedColor(tt.rest)
			assert.Equal(t, tt.consumed, n)
			assert.Equal(t, tt.color, c)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
