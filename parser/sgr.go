package parser

import (
	"github.com/javanhut/ravenvt/grid"
)

// executeSGR handles SGR (Select Graphic Rendition) sequences. Malformed
// parameters are skipped; a truncated extended color consumes the rest of
// the sequence and changes nothing.
func (p *Parser) executeSGR(params []int, g *grid.Grid) {
	a := g.CurrentAttribute()
	if len(params) == 0 {
		g.SetCurrentAttribute(grid.Attribute{})
		return
	}

	for i := 0; i < len(params); i++ {
		code := params[i]
		switch {
		case code == 0: // Reset
			a = grid.Attribute{}
		case code == 1: // Bold
			a.Flags |= grid.FlagBold
		case code == 2: // Dim
			a.Flags |= grid.FlagDim
		case code == 3: // Italic
			a.Flags |= grid.FlagItalic
		case code == 4: // Underline
			a.Flags |= grid.FlagUnderline
		case code == 7: // Inverse
			a.Flags |= grid.FlagInverse
		case code == 8: // Hidden
			a.Flags |= grid.FlagHidden
		case code == 9: // Strikethrough
			a.Flags |= grid.FlagStrikethrough
		case code == 22: // Normal intensity
			a.Flags &^= grid.FlagBold | grid.FlagDim
		case code == 23: // Not italic
			a.Flags &^= grid.FlagItalic
		case code == 24: // Not underlined
			a.Flags &^= grid.FlagUnderline
		case code == 27: // Not inverse
			a.Flags &^= grid.FlagInverse
		case code == 28: // Not hidden
			a.Flags &^= grid.FlagHidden
		case code == 29: // Not strikethrough
			a.Flags &^= grid.FlagStrikethrough
		case code >= 30 && code <= 37: // Standard foreground colors
			a.Fg = grid.ANSIColor(uint8(code - 30))
		case code == 38: // Extended foreground color
			n, c, ok := extendedColor(params[i+1:])
			i += n
			if ok {
				a.Fg = c
			}
		case code == 39: // Default foreground
			a.Fg = grid.DefaultColor()
		case code >= 40 && code <= 47: // Standard background colors
			a.Bg = grid.ANSIColor(uint8(code - 40))
		case code == 48: // Extended background color
			n, c, ok := extendedColor(params[i+1:])
			i += n
			if ok {
				a.Bg = c
			}
		case code == 49: // Default background
			a.Bg = grid.DefaultColor()
		case code >= 90 && code <= 97: // Bright foreground colors
			a.Fg = grid.ANSIColor(uint8(code - 90 + 8))
		case code >= 100 && code <= 107: // Bright background colors
			a.Bg = grid.ANSIColor(uint8(code - 100 + 8))
		default:
			p.logger.Debug("ignoring SGR", "code", code)
		}
	}
	g.SetCurrentAttribute(a)
}

// extendedColor decodes the parameters following 38 or 48: "5;N" for the
// 256-color palette or "2;R;G;B" for true color. It returns how many
// parameters were consumed and whether a color was produced.
func extendedColor(rest []int) (int, grid.Color, bool) {
	if len(rest) == 0 {
		return 0, grid.Color{}, false
	}
	switch rest[0] {
	case 5:
		if len(rest) < 2 {
			return len(rest), grid.Color{}, false
		}
		if rest[1] < 0 {
			return 2, grid.Color{}, false
		}
		return 2, grid.XtermColor(channel(rest[1])), true
	case 2:
		if len(rest) < 4 {
			return len(rest), grid.Color{}, false
		}
		if rest[1] < 0 || rest[2] < 0 || rest[3] < 0 {
			return 4, grid.Color{}, false
		}
		return 4, grid.RGBColor(channel(rest[1]), channel(rest[2]), channel(rest[3])), true
	}
	return 1, grid.Color{}, false
}

// channel clamps a parameter to a byte
func channel(n int) uint8 {
	if n > 255 {
		return 255
	}
	return uint8(n)
}
