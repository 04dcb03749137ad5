package grid

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorConstructors(t *testing.T) {
	assert.True(t, DefaultColor().IsDefault())
	assert.True(t, Color{}.IsDefault())
	assert.False(t, ANSIColor(1).IsDefault())

	assert.Equal(t, uint8(9), ANSIColor(9).Index)
	assert.Equal(t, uint8(1), ANSIColor(17).Index, "ansi index wraps at 16")
	assert.Equal(t, ColorXterm, XtermColor(200).Kind)
	assert.Equal(t, Color{Kind: ColorRGB, R: 1, G: 2, B: 3}, RGBColor(1, 2, 3))
	assert.Equal(t, ANSIColor(4), ANSIColor(4))
	assert.NotEqual(t, ANSIColor(4), XtermColor(4))
}

func TestPaletteResolve(t *testing.T) {
	p := DefaultPalette()

	tests := []struct {
		name string
		c    Color
		want color.RGBA
	}{
		{"ansi red", ANSIColor(1), ravenANSI[1]},
		{"xterm low indices use ansi table", XtermColor(12), ravenANSI[12]},
		{"cube black", XtermColor(16), color.RGBA{0, 0, 0, 0xff}},
		{"cube red", XtermColor(196), color.RGBA{255, 0, 0, 0xff}},
		{"cube mid", XtermColor(67), color.RGBA{95, 135, 175, 0xff}},
		{"cube white", XtermColor(231), color.RGBA{255, 255, 255, 0xff}},
		{"gray start", XtermColor(232), color.RGBA{8, 8, 8, 0xff}},
		{"gray end", XtermColor(255), color.RGBA{238, 238, 238, 0xff}},
		{"true color", RGBColor(10, 20, 30), color.RGBA{10, 20, 30, 0xff}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Resolve(tt.c, false))
		})
	}
}

func TestPaletteResolveDefault(t *testing.T) {
	p := PaletteByName("catppuccin-mocha")

	assert.Equal(t, p.Foreground, p.Resolve(DefaultColor(), false))
	assert.Equal(t, p.Background, p.Resolve(DefaultColor(), true))
}

func TestPaletteByName(t *testing.T) {
	assert.Equal(t, "raven-blue", PaletteByName("").Name)
	assert.Equal(t, "raven-blue", PaletteByName("no-such-theme").Name)
	assert.Equal(t, "crow-black", PaletteByName("crow-black").Name)
	assert.Equal(t, "catppuccin-mocha", PaletteByName(" Catppuccin ").Name)
	assert.Equal(t, "magpie-black-white-grey", PaletteByName("magpie-black-and-white-grey").Name)
	assert.Equal(t, DefaultPalette(), PaletteByName("raven-blue"))
}
