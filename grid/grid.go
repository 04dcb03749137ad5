package grid

import (
	"strings"
)

const (
	MaxScrollback = 10000
	TabWidth      = 8
)

// Grid is the terminal screen buffer: an ordered list of lines whose last
// Rows entries form the live screen and whose earlier entries are scrollback.
//
// The cursor X coordinate is a character index into the line, not a display
// column. Display columns are recomputed from line content whenever they are
// needed. Lines are stored unpadded and padded with blank cells on read.
//
// A Grid is not safe for concurrent use; the owning session serializes
// access.
type Grid struct {
	lines         [][]Cell
	cols          int
	rows          int
	maxScrollback int

	cursorX       int
	cursorY       int
	cursorVisible bool

	// Saved cursor state
	savedX int
	savedY int

	// Scroll region (0-based, inclusive)
	scrollTop    int
	scrollBottom int

	viewportOffset int
	attr           Attribute

	// Main screen while the alternate screen is active
	savedMain *Grid
}

// NewGrid creates a new grid with the given dimensions
func NewGrid(cols, rows int) *Grid {
	cols, rows = max(cols, 0), max(rows, 0)
	return &Grid{
		lines:         make([][]Cell, rows),
		cols:          cols,
		rows:          rows,
		maxScrollback: MaxScrollback,
		cursorVisible: true,
		scrollTop:     0,
		scrollBottom:  max(rows-1, 0),
	}
}

// SetScrollbackLimit bounds the number of history lines kept above the live
// screen. Negative values are treated as zero.
func (g *Grid) SetScrollbackLimit(n int) {
	g.maxScrollback = max(n, 0)
	if g.savedMain != nil {
		g.savedMain.SetScrollbackLimit(n)
	}
	g.trimScrollback()
}

// Size returns the grid dimensions
func (g *Grid) Size() (cols, rows int) {
	return g.cols, g.rows
}

// base returns the index in g.lines of live row 0.
func (g *Grid) base() int {
	return len(g.lines) - g.rows
}

func (g *Grid) line(row int) []Cell {
	return g.lines[g.base()+row]
}

func (g *Grid) setLine(row int, line []Cell) {
	g.lines[g.base()+row] = line
}

// CurrentAttribute returns the pen applied to newly written cells
func (g *Grid) CurrentAttribute() Attribute {
	return g.attr
}

// SetCurrentAttribute replaces the pen
func (g *Grid) SetCurrentAttribute(a Attribute) {
	g.attr = a
}

// CursorPos returns the cursor as (character index, row)
func (g *Grid) CursorPos() (x, y int) {
	return g.cursorX, g.cursorY
}

// CursorVisible returns whether the cursor should be drawn
func (g *Grid) CursorVisible() bool {
	return g.cursorVisible
}

// SetCursorVisible shows or hides the cursor
func (g *Grid) SetCursorVisible(visible bool) {
	g.cursorVisible = visible
}

// DisplayWidthUpTo returns the display column at which the character with
// index charIndex starts on the given live row.
func (g *Grid) DisplayWidthUpTo(row, charIndex int) int {
	if row < 0 || row >= g.rows || charIndex <= 0 {
		return 0
	}
	return lineWidth(g.line(row), charIndex)
}

// CursorColumn returns the display column of the cursor
func (g *Grid) CursorColumn() int {
	return g.DisplayWidthUpTo(g.cursorY, g.cursorX)
}

// placeCursor moves the cursor to a display column on a row, both clamped
// to the grid.
func (g *Grid) placeCursor(col, row int) {
	if g.rows == 0 || g.cols == 0 {
		g.cursorX, g.cursorY = 0, 0
		return
	}
	row = clampInt(row, 0, g.rows-1)
	col = clampInt(col, 0, g.cols-1)
	g.cursorY = row
	g.cursorX = charIndexAt(g.line(row), col)
}

// MoveCursorColumns moves the cursor n display columns (negative = left).
// Wide characters count once in the resulting character index.
func (g *Grid) MoveCursorColumns(n int) {
	g.placeCursor(g.CursorColumn()+n, g.cursorY)
}

// MoveCursorRows moves the cursor n rows (negative = up), keeping its
// display column.
func (g *Grid) MoveCursorRows(n int) {
	g.placeCursor(g.CursorColumn(), g.cursorY+n)
}

// SetCursor sets the cursor to a 0-based display column and row
func (g *Grid) SetCursor(col, row int) {
	g.placeCursor(col, row)
}

// SetCursorColumn sets the cursor to a 0-based display column on the current row
func (g *Grid) SetCursorColumn(col int) {
	g.placeCursor(col, g.cursorY)
}

// SetCursorRow sets the cursor row, keeping its display column
func (g *Grid) SetCursorRow(row int) {
	g.placeCursor(g.CursorColumn(), row)
}

// ProcessNormalChar handles a character that is not part of an escape
// sequence: CR, LF, BS and TAB move the cursor, other C0 controls are
// dropped, everything else is written at the cursor.
func (g *Grid) ProcessNormalChar(c rune) {
	switch c {
	case '\r':
		g.cursorX = 0
	case '\n':
		g.Newline()
	case '\b':
		if col := g.CursorColumn(); col > 0 {
			g.placeCursor(col-1, g.cursorY)
		}
	case '\t':
		g.Tab()
	default:
		if c < 0x20 || c == 0x7f {
			return
		}
		g.WriteChar(c)
	}
}

// WriteChar writes a character at the cursor with the current attribute and
// advances the cursor by one character index. If the character does not fit
// in the remaining display columns the cursor wraps to the next row first.
func (g *Grid) WriteChar(c rune) {
	if g.cols == 0 || g.rows == 0 {
		return
	}
	w := CharDisplayWidth(c)
	if col := g.CursorColumn(); col > 0 && col+w > g.cols {
		g.Newline()
	}

	line := g.line(g.cursorY)
	for len(line) <= g.cursorX {
		line = append(line, NewCell())
	}
	line[g.cursorX] = Cell{Char: c, Attr: g.attr}
	g.setLine(g.cursorY, clipLine(line, g.cols))
	g.cursorX++
}

// Newline moves the cursor to column 0 of the next row, scrolling the
// region when the cursor is on its bottom row.
func (g *Grid) Newline() {
	g.cursorX = 0
	g.Index()
}

// Index moves the cursor down one row without changing its display column,
// scrolling the region when the cursor is on its bottom row.
func (g *Grid) Index() {
	if g.rows == 0 {
		return
	}
	col := g.CursorColumn()
	switch {
	case g.cursorY == g.scrollBottom:
		g.ScrollUp(1)
	case g.cursorY < g.rows-1:
		g.cursorY++
	}
	g.cursorX = charIndexAt(g.line(g.cursorY), col)
}

// ReverseIndex moves the cursor up one row, scrolling the region down when
// the cursor is on its top row.
func (g *Grid) ReverseIndex() {
	if g.rows == 0 {
		return
	}
	col := g.CursorColumn()
	switch {
	case g.cursorY == g.scrollTop:
		g.ScrollDown(1)
	case g.cursorY > 0:
		g.cursorY--
	}
	g.cursorX = charIndexAt(g.line(g.cursorY), col)
}

// Tab moves cursor to next tab stop
func (g *Grid) Tab() {
	col := (g.CursorColumn()/TabWidth + 1) * TabWidth
	g.placeCursor(col, g.cursorY)
}

// ScrollUp scrolls the scroll region up by n lines. When the region spans
// the whole screen the top line moves into scrollback.
func (g *Grid) ScrollUp(n int) {
	if g.rows == 0 {
		return
	}
	full := g.scrollTop == 0 && g.scrollBottom == g.rows-1
	if full {
		n = min(n, g.rows)
	} else {
		n = min(n, g.scrollBottom-g.scrollTop+1)
	}
	for i := 0; i < n; i++ {
		if full {
			g.lines = append(g.lines, nil)
			continue
		}
		top := g.base() + g.scrollTop
		bottom := g.base() + g.scrollBottom
		copy(g.lines[top:bottom], g.lines[top+1:bottom+1])
		g.lines[bottom] = nil
	}
	if full {
		g.trimScrollback()
	}
}

// ScrollDown scrolls the scroll region down by n lines
func (g *Grid) ScrollDown(n int) {
	if g.rows == 0 {
		return
	}
	n = min(n, g.scrollBottom-g.scrollTop+1)
	top := g.base() + g.scrollTop
	bottom := g.base() + g.scrollBottom
	for i := 0; i < n; i++ {
		copy(g.lines[top+1:bottom+1], g.lines[top:bottom])
		g.lines[top] = nil
	}
}

// InsertLines inserts n blank lines at the cursor row, pushing lines below
// it down within the scroll region.
func (g *Grid) InsertLines(n int) {
	if g.cursorY < g.scrollTop || g.cursorY > g.scrollBottom {
		return
	}
	n = min(n, g.scrollBottom-g.cursorY+1)
	at := g.base() + g.cursorY
	bottom := g.base() + g.scrollBottom
	for i := 0; i < n; i++ {
		copy(g.lines[at+1:bottom+1], g.lines[at:bottom])
		g.lines[at] = nil
	}
	g.cursorX = 0
}

// DeleteLines deletes n lines at the cursor row, pulling lines below it up
// within the scroll region.
func (g *Grid) DeleteLines(n int) {
	if g.cursorY < g.scrollTop || g.cursorY > g.scrollBottom {
		return
	}
	n = min(n, g.scrollBottom-g.cursorY+1)
	at := g.base() + g.cursorY
	bottom := g.base() + g.scrollBottom
	for i := 0; i < n; i++ {
		copy(g.lines[at:bottom], g.lines[at+1:bottom+1])
		g.lines[bottom] = nil
	}
	g.cursorX = 0
}

// trimScrollback drops the oldest history lines beyond the limit. The
// alternate screen keeps no history.
func (g *Grid) trimScrollback() {
	limit := g.maxScrollback
	if g.savedMain != nil {
		limit = 0
	}
	if excess := len(g.lines) - g.rows - limit; excess > 0 {
		g.lines = g.lines[excess:]
	}
	g.viewportOffset = min(g.viewportOffset, g.ScrollbackLen())
}

// blanks returns n default cells
func blanks(n int) []Cell {
	cells := make([]Cell, max(n, 0))
	for i := range cells {
		cells[i] = NewCell()
	}
	return cells
}

// EraseInLine clears part of the cursor row.
// 0 = cursor to end, 1 = start to cursor, 2 = whole line.
// Cleared cells keep their display columns, so the cursor is re-mapped onto
// the same display column afterwards.
func (g *Grid) EraseInLine(mode int) {
	if g.rows == 0 {
		return
	}
	line := g.line(g.cursorY)
	col := g.CursorColumn()
	switch mode {
	case 0:
		if g.cursorX < len(line) {
			g.setLine(g.cursorY, line[:g.cursorX])
		}
	case 1:
		end := lineWidth(line, g.cursorX+1)
		var rest []Cell
		if g.cursorX+1 < len(line) {
			rest = line[g.cursorX+1:]
		}
		g.setLine(g.cursorY, clipLine(append(blanks(end), rest...), g.cols))
		g.cursorX = col
	case 2:
		g.setLine(g.cursorY, nil)
		g.cursorX = col
	}
}

// EraseInDisplay clears part of the live screen.
// 0 = cursor to end, 1 = start to cursor, 2 and 3 = whole screen.
// Scrollback is never cleared.
func (g *Grid) EraseInDisplay(mode int) {
	if g.rows == 0 {
		return
	}
	switch mode {
	case 0:
		g.EraseInLine(0)
		for row := g.cursorY + 1; row < g.rows; row++ {
			g.setLine(row, nil)
		}
	case 1:
		for row := 0; row < g.cursorY; row++ {
			g.setLine(row, nil)
		}
		g.EraseInLine(1)
	case 2, 3:
		col := g.CursorColumn()
		for row := 0; row < g.rows; row++ {
			g.setLine(row, nil)
		}
		g.cursorX = col
	}
}

// DeleteChars deletes n characters at the cursor, shifting the rest of the
// line left. The freed space on the right reads back as blanks.
func (g *Grid) DeleteChars(n int) {
	if g.rows == 0 || n <= 0 {
		return
	}
	line := g.line(g.cursorY)
	if g.cursorX >= len(line) {
		return
	}
	end := min(g.cursorX+n, len(line))
	g.setLine(g.cursorY, append(line[:g.cursorX], line[end:]...))
}

// EraseChars blanks n characters starting at the cursor without moving the
// cursor or shifting the line. A wide character becomes two blanks so the
// cells after it keep their columns.
func (g *Grid) EraseChars(n int) {
	if g.rows == 0 || n <= 0 {
		return
	}
	line := g.line(g.cursorY)
	if g.cursorX >= len(line) {
		return
	}
	end := min(g.cursorX+n, len(line))
	cleared := lineWidth(line[g.cursorX:end], end-g.cursorX)

	out := make([]Cell, 0, len(line)+cleared)
	out = append(out, line[:g.cursorX]...)
	out = append(out, blanks(cleared)...)
	out = append(out, line[end:]...)
	g.setLine(g.cursorY, clipLine(out, g.cols))
}

// InsertChars inserts n blank cells at the cursor, shifting the rest of the
// line right. Cells pushed past the right margin are lost.
func (g *Grid) InsertChars(n int) {
	if g.rows == 0 || n <= 0 {
		return
	}
	line := g.line(g.cursorY)
	if g.cursorX >= len(line) {
		return
	}
	n = min(n, g.cols)
	out := make([]Cell, 0, len(line)+n)
	out = append(out, line[:g.cursorX]...)
	out = append(out, blanks(n)...)
	out = append(out, line[g.cursorX:]...)
	g.setLine(g.cursorY, clipLine(out, g.cols))
}

// SetScrollRegion sets the scrolling region from 1-based inclusive rows.
// An invalid region resets to the full screen. The cursor moves home.
func (g *Grid) SetScrollRegion(top, bottom int) {
	top--
	bottom--
	if top < 0 || bottom >= g.rows || top >= bottom {
		top, bottom = 0, max(g.rows-1, 0)
	}
	g.scrollTop = top
	g.scrollBottom = bottom
	g.cursorX = 0
	g.cursorY = 0
}

// ScrollRegion returns the current scroll region (0-based, inclusive)
func (g *Grid) ScrollRegion() (top, bottom int) {
	return g.scrollTop, g.scrollBottom
}

// SaveCursor saves the current cursor position
func (g *Grid) SaveCursor() {
	g.savedX = g.cursorX
	g.savedY = g.cursorY
}

// RestoreCursor restores the saved cursor position
func (g *Grid) RestoreCursor() {
	if g.rows == 0 {
		g.cursorX, g.cursorY = 0, 0
		return
	}
	g.cursorY = clampInt(g.savedY, 0, g.rows-1)
	g.cursorX = max(g.savedX, 0)
}

// Reset returns to the main screen, clears it and restores the default
// cursor, pen and scroll region. Scrollback is kept.
func (g *Grid) Reset() {
	g.ExitAlternateScreen()
	for row := 0; row < g.rows; row++ {
		g.setLine(row, nil)
	}
	g.cursorX, g.cursorY = 0, 0
	g.savedX, g.savedY = 0, 0
	g.cursorVisible = true
	g.attr = Attribute{}
	g.scrollTop, g.scrollBottom = 0, max(g.rows-1, 0)
	g.viewportOffset = 0
}

// Resize changes the grid dimensions. Every line is truncated to the new
// width by display width; rows are added or removed at the bottom; the
// cursor is clamped row first, then column. Lines are not re-flowed.
func (g *Grid) Resize(cols, rows int) {
	cols, rows = max(cols, 0), max(rows, 0)
	if cols == g.cols && rows == g.rows {
		return
	}

	for i, line := range g.lines {
		g.lines[i] = clipLine(line, cols)
	}

	if rows > g.rows {
		g.lines = append(g.lines, make([][]Cell, rows-g.rows)...)
	} else {
		g.lines = g.lines[:len(g.lines)-(g.rows-rows)]
	}

	g.cols = cols
	g.rows = rows
	g.scrollTop, g.scrollBottom = 0, max(rows-1, 0)
	g.trimScrollback()

	if rows == 0 || cols == 0 {
		g.cursorX, g.cursorY = 0, 0
		return
	}
	g.cursorY = min(g.cursorY, rows-1)
	if g.CursorColumn() > cols-1 {
		g.cursorX = charIndexAt(g.line(g.cursorY), cols-1)
	}
}

// AlternateScreen reports whether the alternate screen is active
func (g *Grid) AlternateScreen() bool {
	return g.savedMain != nil
}

// EnterAlternateScreen switches to a blank alternate screen. The main screen
// and its scrollback are kept aside until ExitAlternateScreen. The cursor
// and pen carry over.
func (g *Grid) EnterAlternateScreen() {
	if g.savedMain != nil {
		return
	}
	main := *g
	g.savedMain = &main
	g.lines = make([][]Cell, g.rows)
	g.scrollTop, g.scrollBottom = 0, max(g.rows-1, 0)
	g.viewportOffset = 0
}

// ExitAlternateScreen discards the alternate screen and brings back the
// main screen, resized to the current dimensions. The cursor keeps its
// display column and row.
func (g *Grid) ExitAlternateScreen() {
	main := g.savedMain
	if main == nil {
		return
	}
	col, row := g.CursorColumn(), g.cursorY
	attr, visible := g.attr, g.cursorVisible

	main.Resize(g.cols, g.rows)
	*g = *main
	g.attr, g.cursorVisible = attr, visible
	g.placeCursor(col, row)
}

// ScrollbackLen returns the number of history lines above the live screen
func (g *Grid) ScrollbackLen() int {
	return len(g.lines) - g.rows
}

// ViewportOffset returns how many lines the view is scrolled back
func (g *Grid) ViewportOffset() int {
	return g.viewportOffset
}

// ScrollLines moves the view delta lines back into history (negative =
// towards the live screen). The live screen and cursor are untouched.
func (g *Grid) ScrollLines(delta int) {
	g.ScrollTo(g.viewportOffset + delta)
}

// ScrollTo sets the viewport offset, clamped to the available history
func (g *Grid) ScrollTo(offset int) {
	g.viewportOffset = clampInt(offset, 0, g.ScrollbackLen())
}

// ResetViewport snaps the view to the live screen
func (g *Grid) ResetViewport() {
	g.viewportOffset = 0
}

// padLine returns a copy of line padded with blanks to cols display columns
func padLine(line []Cell, cols int) []Cell {
	out := make([]Cell, len(line), len(line)+cols)
	copy(out, line)
	for w := lineWidth(line, len(line)); w < cols; w++ {
		out = append(out, NewCell())
	}
	return out
}

// Lines returns the rows visible at the current viewport offset, each padded
// to the grid width. The returned slices are copies.
func (g *Grid) Lines() [][]Cell {
	start := g.base() - g.viewportOffset
	out := make([][]Cell, g.rows)
	for i := range out {
		out[i] = padLine(g.lines[start+i], g.cols)
	}
	return out
}

// LiveLine returns a padded copy of a live row regardless of the viewport
func (g *Grid) LiveLine(row int) []Cell {
	if row < 0 || row >= g.rows {
		return nil
	}
	return padLine(g.line(row), g.cols)
}

// Cell returns the cell at a character index on a live row
func (g *Grid) Cell(x, row int) Cell {
	if row < 0 || row >= g.rows || x < 0 {
		return NewCell()
	}
	line := g.line(row)
	if x >= len(line) {
		return NewCell()
	}
	return line[x]
}

// Text returns the visible rows as plain text, trailing blanks trimmed
func (g *Grid) Text() string {
	lines := g.Lines()
	text := make([]string, len(lines))
	for i, line := range lines {
		var b strings.Builder
		b.Grow(len(line))
		for _, cell := range line {
			ch := cell.Char
			if ch == 0 {
				ch = ' '
			}
			b.WriteRune(ch)
		}
		text[i] = strings.TrimRight(b.String(), " ")
	}
	return strings.TrimRight(strings.Join(text, "\n"), "\n")
}

// Snapshot is a consistent copy of what a renderer needs for one frame
type Snapshot struct {
	Lines          [][]Cell
	Cols           int
	Rows           int
	CursorX        int
	CursorY        int
	CursorColumn   int
	CursorVisible  bool
	ViewportOffset int
	Alternate      bool
}

// Snapshot copies the current view
func (g *Grid) Snapshot() Snapshot {
	return Snapshot{
		Lines:          g.Lines(),
		Cols:           g.cols,
		Rows:           g.rows,
		CursorX:        g.cursorX,
		CursorY:        g.cursorY,
		CursorColumn:   g.CursorColumn(),
		CursorVisible:  g.cursorVisible,
		ViewportOffset: g.viewportOffset,
		Alternate:      g.savedMain != nil,
	}
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
