package keybindings

import (
	"strconv"
	"unicode/utf8"
)

// Key is a virtual key code. Letters and digits use their uppercase ASCII
// values, other keys follow the Windows virtual-key numbering.
type Key uint16

const (
	KeyBackspace Key = 0x08
	KeyTab       Key = 0x09
	KeyEnter     Key = 0x0D
	KeyShift     Key = 0x10
	KeyControl   Key = 0x11
	KeyAlt       Key = 0x12
	KeyCapsLock  Key = 0x14
	KeyEscape    Key = 0x1B
	KeySpace     Key = 0x20
	KeyPageUp    Key = 0x21
	KeyPageDown  Key = 0x22
	KeyEnd       Key = 0x23
	KeyHome      Key = 0x24
	KeyLeft      Key = 0x25
	KeyUp        Key = 0x26
	KeyRight     Key = 0x27
	KeyDown      Key = 0x28
	KeyInsert    Key = 0x2D
	KeyDelete    Key = 0x2E
	Key0         Key = 0x30
	Key9         Key = 0x39
	KeyA         Key = 0x41
	KeyZ         Key = 0x5A
	KeyLeftWin   Key = 0x5B
	KeyRightWin  Key = 0x5C
	KeyF1        Key = 0x70
	KeyF2        Key = 0x71
	KeyF3        Key = 0x72
	KeyF4        Key = 0x73
	KeyF5        Key = 0x74
	KeyF6        Key = 0x75
	KeyF7        Key = 0x76
	KeyF8        Key = 0x77
	KeyF9        Key = 0x78
	KeyF10       Key = 0x79
	KeyF11       Key = 0x7A
	KeyF12       Key = 0x7B
)

// Modifier is a set of held modifier keys
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
)

// cursorKeys maps cursor keys to their CSI final byte
var cursorKeys = map[Key]byte{
	KeyUp:    'A',
	KeyDown:  'B',
	KeyRight: 'C',
	KeyLeft:  'D',
	KeyHome:  'H',
	KeyEnd:   'F',
}

// fixedKeys maps keys whose sequence does not depend on modifiers
var fixedKeys = map[Key][]byte{
	KeyDelete:    []byte("\x1b[3~"),
	KeyInsert:    []byte("\x1b[2~"),
	KeyPageUp:    []byte("\x1b[5~"),
	KeyPageDown:  []byte("\x1b[6~"),
	KeyBackspace: {0x7f},
	KeyEnter:     {'\r'},
	KeyTab:       {'\t'},
	KeyEscape:    {0x1b},
	KeyF1:        []byte("\x1bOP"),
	KeyF2:        []byte("\x1bOQ"),
	KeyF3:        []byte("\x1bOR"),
	KeyF4:        []byte("\x1bOS"),
	KeyF5:        []byte("\x1b[15~"),
	KeyF6:        []byte("\x1b[17~"),
	KeyF7:        []byte("\x1b[18~"),
	KeyF8:        []byte("\x1b[19~"),
	KeyF9:        []byte("\x1b[20~"),
	KeyF10:       []byte("\x1b[21~"),
	KeyF11:       []byte("\x1b[23~"),
	KeyF12:       []byte("\x1b[24~"),
}

// Translate converts a key press into the bytes the child process expects.
// It returns false for keys the terminal does not handle, such as bare
// modifiers, which the host should process itself.
func Translate(key Key, mods Modifier) ([]byte, bool) {
	return TranslateKey(key, mods, false)
}

// TranslateKey is Translate with the application cursor keys mode (DECCKM)
// of the child taken into account. In that mode unmodified cursor keys
// send SS3 sequences.
func TranslateKey(key Key, mods Modifier, appCursor bool) ([]byte, bool) {
	ctrl := mods&ModCtrl != 0
	shift := mods&ModShift != 0
	alt := mods&ModAlt != 0

	// Control + letter combinations: Ctrl+A = 1, Ctrl+B = 2, etc.
	if ctrl && !alt && key >= KeyA && key <= KeyZ {
		return []byte{byte(key) - 0x40}, true
	}

	// Alt + key sends ESC prefix
	if alt && !ctrl {
		switch {
		case key >= Key0 && key <= Key9:
			return []byte{0x1b, byte(key)}, true
		case key >= KeyA && key <= KeyZ:
			c := byte(key)
			if !shift {
				c += 'a' - 'A'
			}
			return []byte{0x1b, c}, true
		}
	}

	if final, ok := cursorKeys[key]; ok {
		if code := modifierCode(mods); code > 1 {
			seq := append([]byte("\x1b[1;"), strconv.Itoa(code)...)
			return append(seq, final), true
		}
		if appCursor {
			return []byte{0x1b, 'O', final}, true
		}
		return []byte{0x1b, '[', final}, true
	}

	if key == KeyTab && shift {
		return []byte("\x1b[Z"), true
	}

	if seq, ok := fixedKeys[key]; ok {
		out := make([]byte, len(seq))
		copy(out, seq)
		return out, true
	}

	return nil, false
}

// modifierCode returns the xterm modifier parameter: 1 plus 1 for Shift,
// 2 for Alt and 4 for Ctrl. Ctrl alone is 5, Shift 2, Alt 3.
func modifierCode(mods Modifier) int {
	code := 1
	if mods&ModShift != 0 {
		code++
	}
	if mods&ModAlt != 0 {
		code += 2
	}
	if mods&ModCtrl != 0 {
		code += 4
	}
	return code
}

// TranslateChar translates a typed character to terminal bytes. Alt sends
// an ESC prefix.
func TranslateChar(char rune, mods Modifier) []byte {
	var out []byte
	if mods&ModAlt != 0 {
		out = append(out, 0x1b)
	}
	return utf8.AppendRune(out, char)
}
