package grid

import (
	"image/color"
	"strings"
)

// ColorKind identifies the type of color
type ColorKind uint8

const (
	ColorDefault ColorKind = iota
	ColorANSI              // 16-color palette, index 0-15
	ColorXterm             // 256-color palette, index 0-255
	ColorRGB               // 24-bit true color
)

// Color is a symbolic terminal color. The zero value is the default color.
// Colors are compared by value.
type Color struct {
	Kind    ColorKind
	Index   uint8 // For ANSI and Xterm colors
	R, G, B uint8 // For RGB colors
}

// DefaultColor returns the default color
func DefaultColor() Color {
	return Color{Kind: ColorDefault}
}

// ANSIColor creates a 16-color palette entry. Indices above 15 wrap.
func ANSIColor(index uint8) Color {
	return Color{Kind: ColorANSI, Index: index & 0x0f}
}

// XtermColor creates a 256-color palette entry
func XtermColor(index uint8) Color {
	return Color{Kind: ColorXterm, Index: index}
}

// RGBColor creates a true color
func RGBColor(r, g, b uint8) Color {
	return Color{Kind: ColorRGB, R: r, G: g, B: b}
}

// IsDefault reports whether c is the default color
func (c Color) IsDefault() bool {
	return c.Kind == ColorDefault
}

// Palette maps symbolic colors to concrete values for a renderer.
type Palette struct {
	Name       string
	Foreground color.RGBA
	Background color.RGBA
	ANSI       [16]color.RGBA
}

// ravenANSI is the 16-color table shared by the built-in palettes.
var ravenANSI = [16]color.RGBA{
	{11, 15, 20, 0xff},    // 0: Black
	{209, 105, 105, 0xff}, // 1: Red
	{127, 188, 140, 0xff}, // 2: Green
	{215, 186, 125, 0xff}, // 3: Yellow
	{136, 164, 212, 0xff}, // 4: Blue
	{197, 134, 192, 0xff}, // 5: Magenta
	{127, 197, 200, 0xff}, // 6: Cyan
	{212, 216, 222, 0xff}, // 7: White
	{75, 82, 99, 0xff},    // 8: Bright Black
	{224, 122, 122, 0xff}, // 9: Bright Red
	{154, 215, 168, 0xff}, // 10: Bright Green
	{231, 201, 139, 0xff}, // 11: Bright Yellow
	{165, 191, 240, 0xff}, // 12: Bright Blue
	{216, 160, 212, 0xff}, // 13: Bright Magenta
	{154, 215, 220, 0xff}, // 14: Bright Cyan
	{241, 243, 245, 0xff}, // 15: Bright White
}

// DefaultPalette returns the raven-blue palette
func DefaultPalette() Palette {
	return PaletteByName("raven-blue")
}

// PaletteByName returns a palette for a known theme name. Unknown names fall
// back to raven-blue.
func PaletteByName(name string) Palette {
	p := Palette{ANSI: ravenANSI}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "crow-black":
		p.Name = "crow-black"
		p.Background = color.RGBA{0x05, 0x05, 0x05, 0xff}
		p.Foreground = color.RGBA{0xe6, 0xe6, 0xe6, 0xff}
	case "magpie-black-white-grey", "magpie-black-and-white-grey":
		p.Name = "magpie-black-white-grey"
		p.Background = color.RGBA{0x11, 0x11, 0x11, 0xff}
		p.Foreground = color.RGBA{0xf5, 0xf5, 0xf5, 0xff}
	case "catppuccin-mocha", "catppuccin", "catpuccin":
		p.Name = "catppuccin-mocha"
		p.Background = color.RGBA{0x1e, 0x1e, 0x2e, 0xff}
		p.Foreground = color.RGBA{0xcd, 0xd6, 0xf4, 0xff}
	default:
		p.Name = "raven-blue"
		p.Background = color.RGBA{0x0d, 0x10, 0x1a, 0xff}
		p.Foreground = color.RGBA{0xe8, 0xed, 0xf7, 0xff}
	}
	return p
}

// Resolve converts a symbolic color to a concrete one. background selects
// which default applies to ColorDefault.
func (p Palette) Resolve(c Color, background bool) color.RGBA {
	switch c.Kind {
	case ColorANSI:
		return p.ANSI[c.Index&0x0f]
	case ColorXterm:
		return p.xterm(c.Index)
	case ColorRGB:
		return color.RGBA{c.R, c.G, c.B, 0xff}
	}
	if background {
		return p.Background
	}
	return p.Foreground
}

// cubeLevels are the channel intensities of the 6x6x6 color cube.
var cubeLevels = [6]uint8{0, 95, 135, 175, 215, 255}

func (p Palette) xterm(index uint8) color.RGBA {
	if index < 16 {
		return p.ANSI[index]
	}

	// 216 color cube (indices 16-231)
	if index < 232 {
		idx := index - 16
		return color.RGBA{
			cubeLevels[(idx/36)%6],
			cubeLevels[(idx/6)%6],
			cubeLevels[idx%6],
			0xff,
		}
	}

	// Grayscale (indices 232-255)
	gray := 8 + (index-232)*10
	return color.RGBA{gray, gray, gray, 0xff}
}
