package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/javanhut/ravenvt/grid"
)

const (
	esc = 0x1b
	bel = 0x07

	// maxParam caps numeric parameters so arithmetic on them cannot overflow
	maxParam = 65535
)

// Parser decodes ANSI escape sequences and applies them to a grid.
//
// Output arrives in arbitrary chunks, so a sequence may be split across
// calls to Parse. The unfinished tail is kept in incomplete and prepended to
// the next chunk. A sequence that never completes stays pending.
type Parser struct {
	incomplete string
	title      string
	workingDir string
	responses  []byte
	logger     *slog.Logger

	appCursorKeys bool
}

// NewParser creates a new parser
func NewParser() *Parser {
	return &Parser{logger: slog.Default()}
}

// SetLogger sets the logger used for discarded and unknown sequences
func (p *Parser) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	p.logger = logger
}

// Pending returns the buffered partial sequence, if any
func (p *Parser) Pending() string {
	return p.incomplete
}

// Title returns the last window title set through OSC 0 or OSC 2
func (p *Parser) Title() string {
	return p.title
}

// WorkingDir returns the last known working directory from OSC 7
func (p *Parser) WorkingDir() string {
	return p.workingDir
}

// AppCursorKeys returns whether application cursor keys mode (DECCKM) is set
func (p *Parser) AppCursorKeys() bool {
	return p.appCursorKeys
}

// TakeResponses returns and clears the replies generated by device status
// requests since the last call. The caller writes them back to the child.
func (p *Parser) TakeResponses() []byte {
	out := p.responses
	p.responses = nil
	return out
}

// Parse processes a chunk of decoded output, prefixed by any sequence left
// incomplete by the previous call.
func (p *Parser) Parse(chunk string, g *grid.Grid) {
	s := p.incomplete + chunk
	p.incomplete = ""

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r != esc {
			g.ProcessNormalChar(r)
			i += size
			continue
		}
		n, ok := p.escape(s[i:], g)
		if !ok {
			p.incomplete = s[i:]
			return
		}
		i += n
	}
}

// escape handles a sequence starting with ESC. It returns the number of
// bytes consumed, or false if s ends before the sequence does.
func (p *Parser) escape(s string, g *grid.Grid) (int, bool) {
	if len(s) < 2 {
		return 0, false
	}

	switch s[1] {
	case '[': // CSI
		return p.csi(s, g)
	case ']': // OSC
		return p.osc(s)
	case '7': // DECSC - Save cursor
		g.SaveCursor()
	case '8': // DECRC - Restore cursor
		g.RestoreCursor()
	case 'c': // RIS - Reset
		g.Reset()
		p.appCursorKeys = false
	case 'D': // IND - Index (down)
		g.Index()
	case 'M': // RI - Reverse index (up)
		g.ReverseIndex()
	case 'E': // NEL - Next line
		g.Newline()
	case '(', ')', '*', '+', '#': // Charset designation and DEC line drawing take one more byte
		if len(s) < 3 {
			return 0, false
		}
		_, size := utf8.DecodeRuneInString(s[2:])
		return 2 + size, true
	case esc:
		// Lone ESC followed by another sequence
		return 1, true
	default:
		r, size := utf8.DecodeRuneInString(s[1:])
		p.logger.Debug("ignoring escape", "rune", string(r))
		return 1 + size, true
	}
	return 2, true
}

// csi scans a CSI sequence: parameter bytes 0x30-0x3F and intermediate bytes
// 0x20-0x2F up to the first other character, which is the final byte.
func (p *Parser) csi(s string, g *grid.Grid) (int, bool) {
	for j := 2; j < len(s); j++ {
		b := s[j]
		if b >= 0x20 && b <= 0x3f {
			continue
		}
		final, size := utf8.DecodeRuneInString(s[j:])
		p.executeCSI(s[2:j], final, g)
		return j + size, true
	}
	return 0, false
}

// osc scans an OSC sequence terminated by BEL or ESC \ (ST). An ESC followed
// by anything else ends the OSC and is left for the next sequence.
func (p *Parser) osc(s string) (int, bool) {
	for j := 2; j < len(s); j++ {
		switch s[j] {
		case bel:
			p.handleOSC(s[2:j])
			return j + 1, true
		case esc:
			if j+1 >= len(s) {
				return 0, false
			}
			p.handleOSC(s[2:j])
			if s[j+1] == '\\' {
				return j + 2, true
			}
			return j, true
		}
	}
	return 0, false
}

func (p *Parser) handleOSC(content string) {
	p.logger.Debug("OSC", "content", content)
	code, value, _ := strings.Cut(content, ";")
	switch code {
	case "0", "2":
		p.title = value
	case "7":
		if path := parseOSC7Path(value); path != "" {
			p.workingDir = path
		}
	}
}

func parseOSC7Path(value string) string {
	if strings.HasPrefix(value, "file://") {
		parsed, err := url.Parse(value)
		if err != nil {
			return ""
		}
		return parsed.Path
	}
	if strings.HasPrefix(value, "/") {
		return value
	}
	return ""
}

// executeCSI executes a CSI sequence
func (p *Parser) executeCSI(raw string, final rune, g *grid.Grid) {
	params := parseParams(raw, ";")

	// Sequences with a private marker share final bytes with unrelated
	// standard commands (CSI > 4 ; 2 m is not SGR).
	if raw != "" && strings.IndexByte("<=>?", raw[0]) >= 0 {
		if raw[0] == '?' && (final == 'h' || final == 'l') {
			p.setMode(params, final == 'h', g)
			return
		}
		p.logger.Debug("ignoring private CSI", "params", raw, "final", string(final))
		return
	}

	switch final {
	case 'A': // CUU - Cursor up
		g.MoveCursorRows(-getParam(params, 0, 1))
	case 'B': // CUD - Cursor down
		g.MoveCursorRows(getParam(params, 0, 1))
	case 'C': // CUF - Cursor forward
		g.MoveCursorColumns(getParam(params, 0, 1))
	case 'D': // CUB - Cursor back
		g.MoveCursorColumns(-getParam(params, 0, 1))
	case 'E': // CNL - Cursor next line
		g.MoveCursorRows(getParam(params, 0, 1))
		g.SetCursorColumn(0)
	case 'F': // CPL - Cursor previous line
		g.MoveCursorRows(-getParam(params, 0, 1))
		g.SetCursorColumn(0)
	case 'G': // CHA - Cursor horizontal absolute
		g.SetCursorColumn(getParam(params, 0, 1) - 1)
	case 'H', 'f': // CUP - Cursor position
		row := getParam(params, 0, 1)
		col := getParam(params, 1, 1)
		g.SetCursor(col-1, row-1)
	case 'd': // VPA - Vertical position absolute
		g.SetCursorRow(getParam(params, 0, 1) - 1)
	case 'J': // ED - Erase in display
		g.EraseInDisplay(getParam(params, 0, 0))
	case 'K': // EL - Erase in line
		g.EraseInLine(getParam(params, 0, 0))
	case 'P': // DCH - Delete characters
		g.DeleteChars(getParam(params, 0, 1))
	case 'X': // ECH - Erase characters
		g.EraseChars(getParam(params, 0, 1))
	case '@': // ICH - Insert characters
		g.InsertChars(getParam(params, 0, 1))
	case 'L': // IL - Insert lines
		g.InsertLines(getParam(params, 0, 1))
	case 'M': // DL - Delete lines
		g.DeleteLines(getParam(params, 0, 1))
	case 'S': // SU - Scroll up
		g.ScrollUp(getParam(params, 0, 1))
	case 'T': // SD - Scroll down
		g.ScrollDown(getParam(params, 0, 1))
	case 'r': // DECSTBM - Set scrolling region
		_, rows := g.Size()
		g.SetScrollRegion(getParam(params, 0, 1), getParam(params, 1, rows))
	case 's': // SCP - Save cursor position
		g.SaveCursor()
	case 'u': // RCP - Restore cursor position
		g.RestoreCursor()
	case 'm': // SGR - Select graphic rendition
		p.executeSGR(parseParams(raw, ";:"), g)
	case 'n': // DSR - Device status report
		p.handleDSR(params, g)
	default:
		p.logger.Debug("ignoring CSI", "params", raw, "final", string(final))
	}
}

// setMode handles setting/resetting DEC private modes
func (p *Parser) setMode(params []int, set bool, g *grid.Grid) {
	for _, mode := range params {
		switch mode {
		case 1: // DECCKM - Application cursor keys
			p.appCursorKeys = set
		case 25: // DECTCEM - Text cursor enable
			g.SetCursorVisible(set)
		case 47, 1047: // Alternate screen buffer
			if set {
				g.EnterAlternateScreen()
			} else {
				g.ExitAlternateScreen()
			}
		case 1049: // Alternate screen buffer with save/restore cursor
			if set {
				g.SaveCursor()
				g.EnterAlternateScreen()
			} else {
				g.ExitAlternateScreen()
				g.RestoreCursor()
			}
		default:
			p.logger.Debug("ignoring private mode", "mode", mode, "set", set)
		}
	}
}

func (p *Parser) handleDSR(params []int, g *grid.Grid) {
	switch getParam(params, 0, 0) {
	case 5: // Status report
		p.responses = append(p.responses, "\x1b[0n"...)
	case 6: // Cursor position report
		_, row := g.CursorPos()
		p.responses = fmt.Appendf(p.responses, "\x1b[%d;%dR", row+1, g.CursorColumn()+1)
	}
}

// parseParams splits the parameter bytes of a CSI sequence on any of seps.
// Empty parameters are 0; parameters that are not numbers are -1.
func parseParams(raw, seps string) []int {
	// Remove private mode indicators and intermediate bytes
	raw = strings.TrimLeft(raw, "?>!=<")
	raw = strings.TrimRightFunc(raw, func(r rune) bool {
		return r >= 0x20 && r <= 0x2f
	})
	if raw == "" {
		return nil
	}

	parts := splitAny(raw, seps)
	params := make([]int, len(parts))
	for i, part := range parts {
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		switch {
		case errors.Is(err, strconv.ErrRange):
			params[i] = maxParam
		case err != nil || n < 0:
			params[i] = -1
		case n > maxParam:
			params[i] = maxParam
		default:
			params[i] = n
		}
	}
	return params
}

// splitAny splits s on every rune in seps, keeping empty fields
func splitAny(s, seps string) []string {
	var parts []string
	start := 0
	for i, r := range s {
		if strings.ContainsRune(seps, r) {
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// getParam gets a parameter with a default value. Missing, zero and
// malformed parameters all take the default.
func getParam(params []int, index, defaultVal int) int {
	if index < len(params) && params[index] > 0 {
		return params[index]
	}
	return defaultVal
}
