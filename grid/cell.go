package grid

// CellFlags represents text attributes
type CellFlags uint8

const (
	FlagBold CellFlags = 1 << iota
	FlagDim
	FlagItalic
	FlagUnderline
	FlagInverse
	FlagHidden
	FlagStrikethrough
)

// Attribute is the pen used for writing cells. The zero value is the
// default attribute.
type Attribute struct {
	Flags CellFlags
	Fg    Color
	Bg    Color
}

// Has reports whether all flags in f are set
func (a Attribute) Has(f CellFlags) bool {
	return a.Flags&f == f
}

// Cell represents a single character position in a line
type Cell struct {
	Char rune
	Attr Attribute
}

// NewCell creates an empty cell
func NewCell() Cell {
	return Cell{Char: ' '}
}

// Width returns the number of display columns the cell occupies
func (c Cell) Width() int {
	return CharDisplayWidth(c.Char)
}
