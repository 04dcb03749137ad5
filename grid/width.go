package grid

import (
	"golang.org/x/text/width"
)

// CharDisplayWidth returns the number of display columns a rune occupies.
// 2 = East Asian wide or fullwidth (Hangul Jamo, CJK ideographs and their
// extensions, Hangul syllables, CJK compatibility forms, fullwidth forms)
// 1 = everything else
//
// All cursor advance, wrap and column mapping goes through this function.
func CharDisplayWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}

// StringWidth returns the total display width of a string
func StringWidth(s string) int {
	w := 0
	for _, r := range s {
		w += CharDisplayWidth(r)
	}
	return w
}

// lineWidth returns the display width of the first n cells of a line. Cells
// past the end of the line count as blanks.
func lineWidth(line []Cell, n int) int {
	w := 0
	for i := 0; i < n && i < len(line); i++ {
		w += CharDisplayWidth(line[i].Char)
	}
	if n > len(line) {
		w += n - len(line)
	}
	return w
}

// charIndexAt returns the index of the cell covering display column col.
// A column in the second half of a wide character maps to that character.
func charIndexAt(line []Cell, col int) int {
	acc := 0
	for i, c := range line {
		w := CharDisplayWidth(c.Char)
		if acc+w > col {
			return i
		}
		acc += w
	}
	if col < acc {
		return len(line)
	}
	return len(line) + (col - acc)
}

// clipLine drops trailing cells until the line fits in cols display columns.
func clipLine(line []Cell, cols int) []Cell {
	acc := 0
	for i, c := range line {
		acc += CharDisplayWidth(c.Char)
		if acc > cols {
			return line[:i]
		}
	}
	return line
}
