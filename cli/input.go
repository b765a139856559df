package cli

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode/utf8"

	wtmux "github.com/phroun/wtmux"
)

// KeyMods is a bitmask of held modifiers.
type KeyMods uint8

const (
	ModShift KeyMods = 1 << iota
	ModAlt
	ModCtrl
)

// KeyType identifies a decoded host key.
type KeyType int

const (
	KeyRune KeyType = iota
	KeyEnter
	KeyBackspace
	KeyTab
	KeyEsc
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyDelete
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// KeyEvent is one decoded host keystroke. Control chords arrive as
// KeyRune with ModCtrl and the lowercase letter.
type KeyEvent struct {
	Type KeyType
	Rune rune
	Mods KeyMods
}

// MouseKind classifies a mouse event.
type MouseKind int

const (
	MousePress MouseKind = iota
	MouseRelease
	MouseDrag
	MouseMotion
	MouseWheelUp
	MouseWheelDown
)

// MouseEvent is one decoded host mouse event with 0-based screen
// coordinates.
type MouseEvent struct {
	Kind   MouseKind
	Button int // 0=left, 1=middle, 2=right
	X, Y   int
	Mods   KeyMods
}

// PasteEvent carries a host bracketed paste.
type PasteEvent struct {
	Text string
}

// ResizeEvent reports a host size change.
type ResizeEvent struct {
	Cols, Rows int
}

// Event is a KeyEvent, MouseEvent, PasteEvent, or ResizeEvent.
type Event any

// Decoder turns the raw host input stream into events. Escape
// sequences split across reads are buffered; a bare ESC is resolved by
// FlushPending after the poll timeout.
type Decoder struct {
	buf     []byte
	inPaste bool
	paste   bytes.Buffer
}

// Feed appends raw bytes and returns every complete event.
func (d *Decoder) Feed(data []byte) []Event {
	d.buf = append(d.buf, data...)
	var events []Event
	for {
		ev, n := d.next()
		if n == 0 {
			break
		}
		d.buf = d.buf[n:]
		if ev != nil {
			events = append(events, ev)
		}
	}
	return events
}

// FlushPending resolves a buffered lone ESC (or unfinished sequence)
// as keystrokes once no continuation arrived.
func (d *Decoder) FlushPending() []Event {
	if len(d.buf) == 0 {
		return nil
	}
	if len(d.buf) == 1 && d.buf[0] == 0x1B {
		d.buf = d.buf[:0]
		return []Event{KeyEvent{Type: KeyEsc}}
	}
	// Unfinished sequence: drop the ESC, replay the rest.
	rest := append([]byte(nil), d.buf[1:]...)
	d.buf = d.buf[:0]
	return d.Feed(rest)
}

// next decodes one event from the front of the buffer, returning the
// bytes consumed; 0 means incomplete.
func (d *Decoder) next() (Event, int) {
	if len(d.buf) == 0 {
		return nil, 0
	}

	if d.inPaste {
		return d.nextPaste()
	}

	b := d.buf[0]
	if b == 0x1B {
		return d.nextEscape()
	}

	// Control bytes as Ctrl chords; a few get their own key types.
	switch b {
	case 0x0D:
		return KeyEvent{Type: KeyEnter}, 1
	case 0x09:
		return KeyEvent{Type: KeyTab}, 1
	case 0x7F, 0x08:
		return KeyEvent{Type: KeyBackspace}, 1
	case 0x00:
		return KeyEvent{Type: KeyRune, Rune: ' ', Mods: ModCtrl}, 1
	}
	if b < 0x20 {
		return KeyEvent{Type: KeyRune, Rune: rune('a' + b - 1), Mods: ModCtrl}, 1
	}

	if b < 0x80 {
		return KeyEvent{Type: KeyRune, Rune: rune(b)}, 1
	}

	// UTF-8 input
	if !utf8.FullRune(d.buf) {
		if len(d.buf) < utf8.UTFMax {
			return nil, 0
		}
	}
	r, size := utf8.DecodeRune(d.buf)
	return KeyEvent{Type: KeyRune, Rune: r}, size
}

func (d *Decoder) nextPaste() (Event, int) {
	end := bytes.Index(d.buf, []byte("\x1b[201~"))
	if end < 0 {
		// Accumulate everything but a possible partial terminator.
		keep := len(d.buf)
		if keep > 6 {
			d.paste.Write(d.buf[:keep-6])
			d.buf = d.buf[keep-6:]
		}
		return nil, 0
	}
	d.paste.Write(d.buf[:end])
	d.inPaste = false
	text := d.paste.String()
	d.paste.Reset()
	return PasteEvent{Text: text}, end + 6
}

func (d *Decoder) nextEscape() (Event, int) {
	if len(d.buf) < 2 {
		return nil, 0
	}
	switch d.buf[1] {
	case '[':
		return d.nextCSI()
	case 'O':
		return d.nextSS3()
	default:
		// Alt+key
		if d.buf[1] >= 0x20 && d.buf[1] < 0x7F {
			return KeyEvent{Type: KeyRune, Rune: rune(d.buf[1]), Mods: ModAlt}, 2
		}
		if d.buf[1] == 0x1B {
			return KeyEvent{Type: KeyEsc}, 1
		}
		return KeyEvent{Type: KeyEsc}, 1
	}
}

func (d *Decoder) nextSS3() (Event, int) {
	if len(d.buf) < 3 {
		return nil, 0
	}
	key := KeyEvent{}
	switch d.buf[2] {
	case 'A':
		key.Type = KeyUp
	case 'B':
		key.Type = KeyDown
	case 'C':
		key.Type = KeyRight
	case 'D':
		key.Type = KeyLeft
	case 'H':
		key.Type = KeyHome
	case 'F':
		key.Type = KeyEnd
	case 'P':
		key.Type = KeyF1
	case 'Q':
		key.Type = KeyF2
	case 'R':
		key.Type = KeyF3
	case 'S':
		key.Type = KeyF4
	default:
		return nil, 3
	}
	return key, 3
}

// nextCSI decodes CSI-form host input: cursor keys, tilde keys with
// modifiers, SGR mouse reports, and the bracketed-paste begin mark.
func (d *Decoder) nextCSI() (Event, int) {
	// Find the final byte.
	end := -1
	for i := 2; i < len(d.buf); i++ {
		b := d.buf[i]
		if b >= 0x40 && b <= 0x7E {
			end = i
			break
		}
		if !(b >= '0' && b <= '9') && b != ';' && b != '<' && b != '?' {
			return nil, i + 1 // Malformed; discard
		}
	}
	if end < 0 {
		if len(d.buf) > 32 {
			return nil, len(d.buf) // Runaway sequence
		}
		return nil, 0
	}

	seq := d.buf[2:end]
	final := d.buf[end]
	consumed := end + 1

	// SGR mouse: ESC [ < Cb ; X ; Y (M|m)
	if len(seq) > 0 && seq[0] == '<' && (final == 'M' || final == 'm') {
		ev, ok := parseSGRMouse(seq[1:], final == 'M')
		if !ok {
			return nil, consumed
		}
		return ev, consumed
	}

	params := parseIntList(seq)

	if final == '~' {
		if len(params) > 0 && params[0] == 200 {
			d.inPaste = true
			return nil, consumed
		}
		key := KeyEvent{}
		code := 0
		if len(params) > 0 {
			code = params[0]
		}
		switch code {
		case 1, 7:
			key.Type = KeyHome
		case 2:
			key.Type = KeyInsert
		case 3:
			key.Type = KeyDelete
		case 4, 8:
			key.Type = KeyEnd
		case 5:
			key.Type = KeyPageUp
		case 6:
			key.Type = KeyPageDown
		case 11, 12, 13, 14, 15:
			key.Type = KeyF1 + KeyType(code-11)
		case 17, 18, 19, 20, 21:
			key.Type = KeyF6 + KeyType(code-17)
		case 23, 24:
			key.Type = KeyF11 + KeyType(code-23)
		default:
			return nil, consumed
		}
		if len(params) > 1 {
			key.Mods = xtermMods(params[1])
		}
		return key, consumed
	}

	key := KeyEvent{}
	switch final {
	case 'A':
		key.Type = KeyUp
	case 'B':
		key.Type = KeyDown
	case 'C':
		key.Type = KeyRight
	case 'D':
		key.Type = KeyLeft
	case 'H':
		key.Type = KeyHome
	case 'F':
		key.Type = KeyEnd
	case 'Z':
		return KeyEvent{Type: KeyTab, Mods: ModShift}, consumed
	default:
		return nil, consumed
	}
	// Modified form: ESC [ 1 ; mod X
	if len(params) >= 2 {
		key.Mods = xtermMods(params[1])
	}
	return key, consumed
}

func parseSGRMouse(seq []byte, press bool) (MouseEvent, bool) {
	params := parseIntList(seq)
	if len(params) < 3 {
		return MouseEvent{}, false
	}
	cb, x, y := params[0], params[1]-1, params[2]-1

	ev := MouseEvent{X: x, Y: y}
	if cb&4 != 0 {
		ev.Mods |= ModShift
	}
	if cb&8 != 0 {
		ev.Mods |= ModAlt
	}
	if cb&16 != 0 {
		ev.Mods |= ModCtrl
	}
	motion := cb&32 != 0
	button := cb &^ (4 | 8 | 16)

	switch {
	case button >= 64:
		if button&1 == 0 {
			ev.Kind = MouseWheelUp
		} else {
			ev.Kind = MouseWheelDown
		}
	case motion:
		b := button & 3
		if b == 3 {
			ev.Kind = MouseMotion
		} else {
			ev.Kind = MouseDrag
			ev.Button = b
		}
	default:
		ev.Button = button & 3
		if press {
			ev.Kind = MousePress
		} else {
			ev.Kind = MouseRelease
		}
	}
	return ev, true
}

func parseIntList(seq []byte) []int {
	if len(seq) == 0 {
		return nil
	}
	var out []int
	cur := 0
	has := false
	for _, b := range seq {
		if b >= '0' && b <= '9' {
			cur = cur*10 + int(b-'0')
			has = true
		} else if b == ';' {
			out = append(out, cur)
			cur = 0
			has = false
		}
	}
	if has {
		out = append(out, cur)
	}
	return out
}

func xtermMods(code int) KeyMods {
	if code < 2 {
		return 0
	}
	n := code - 1
	var mods KeyMods
	if n&1 != 0 {
		mods |= ModShift
	}
	if n&2 != 0 {
		mods |= ModAlt
	}
	if n&4 != 0 {
		mods |= ModCtrl
	}
	return mods
}

// MapKey converts a decoded key to the VT byte sequence the focused
// child expects, honoring application cursor keys and LNM.
func MapKey(ev KeyEvent, modes wtmux.Modes) []byte {
	switch ev.Type {
	case KeyRune:
		return mapRune(ev.Rune, ev.Mods)
	case KeyEnter:
		if modes.LinefeedNewline {
			return []byte{0x0D, 0x0A}
		}
		return []byte{0x0D}
	case KeyBackspace:
		if ev.Mods&ModAlt != 0 {
			return []byte{0x1B, 0x7F}
		}
		return []byte{0x7F}
	case KeyTab:
		if ev.Mods&ModShift != 0 {
			return []byte("\x1b[Z")
		}
		return []byte{0x09}
	case KeyEsc:
		return []byte{0x1B}
	case KeyUp:
		return arrowKey('A', ev.Mods, modes)
	case KeyDown:
		return arrowKey('B', ev.Mods, modes)
	case KeyRight:
		return arrowKey('C', ev.Mods, modes)
	case KeyLeft:
		return arrowKey('D', ev.Mods, modes)
	case KeyHome:
		return specialKey('H', ev.Mods)
	case KeyEnd:
		return specialKey('F', ev.Mods)
	case KeyPageUp:
		return tildeKey(5, ev.Mods)
	case KeyPageDown:
		return tildeKey(6, ev.Mods)
	case KeyInsert:
		return tildeKey(2, ev.Mods)
	case KeyDelete:
		return tildeKey(3, ev.Mods)
	}
	if ev.Type >= KeyF1 && ev.Type <= KeyF12 {
		return functionKey(int(ev.Type-KeyF1)+1, ev.Mods)
	}
	return nil
}

func mapRune(r rune, mods KeyMods) []byte {
	if mods&ModCtrl != 0 && mods&ModAlt == 0 {
		if r >= 'a' && r <= 'z' {
			return []byte{byte(r) - 'a' + 1}
		}
		if r >= 'A' && r <= 'Z' {
			return []byte{byte(r) - 'A' + 1}
		}
		switch r {
		case '@', '`', ' ':
			return []byte{0x00}
		case '[':
			return []byte{0x1B}
		case '\\':
			return []byte{0x1C}
		case ']':
			return []byte{0x1D}
		case '^', '~':
			return []byte{0x1E}
		case '_', '?':
			return []byte{0x1F}
		}
	}
	if mods&ModCtrl != 0 && mods&ModAlt != 0 {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			lower := r | 0x20
			return []byte{0x1B, byte(lower) - 'a' + 1}
		}
	}
	if mods&ModAlt != 0 {
		return append([]byte{0x1B}, []byte(string(r))...)
	}
	return []byte(string(r))
}

func arrowKey(key byte, mods KeyMods, modes wtmux.Modes) []byte {
	if mods != 0 {
		return []byte(fmt.Sprintf("\x1b[1;%d%c", modCode(mods), key))
	}
	if modes.AppCursor {
		return []byte{0x1B, 'O', key}
	}
	return []byte{0x1B, '[', key}
}

func specialKey(key byte, mods KeyMods) []byte {
	if mods == 0 {
		return []byte{0x1B, '[', key}
	}
	return []byte(fmt.Sprintf("\x1b[1;%d%c", modCode(mods), key))
}

func tildeKey(code int, mods KeyMods) []byte {
	if mods == 0 {
		return []byte("\x1b[" + strconv.Itoa(code) + "~")
	}
	return []byte(fmt.Sprintf("\x1b[%d;%d~", code, modCode(mods)))
}

func functionKey(n int, mods KeyMods) []byte {
	var base []byte
	switch n {
	case 1:
		base = []byte("\x1bOP")
	case 2:
		base = []byte("\x1bOQ")
	case 3:
		base = []byte("\x1bOR")
	case 4:
		base = []byte("\x1bOS")
	case 5:
		base = []byte("\x1b[15~")
	case 6:
		base = []byte("\x1b[17~")
	case 7:
		base = []byte("\x1b[18~")
	case 8:
		base = []byte("\x1b[19~")
	case 9:
		base = []byte("\x1b[20~")
	case 10:
		base = []byte("\x1b[21~")
	case 11:
		base = []byte("\x1b[23~")
	case 12:
		base = []byte("\x1b[24~")
	default:
		return nil
	}
	if mods == 0 {
		return base
	}
	if n <= 4 {
		return []byte(fmt.Sprintf("\x1b[1;%d%c", modCode(mods), base[2]))
	}
	code := string(base[2 : len(base)-1])
	return []byte(fmt.Sprintf("\x1b[%s;%d~", code, modCode(mods)))
}

func modCode(mods KeyMods) int {
	n := 1
	if mods&ModShift != 0 {
		n++
	}
	if mods&ModAlt != 0 {
		n += 2
	}
	if mods&ModCtrl != 0 {
		n += 4
	}
	return n
}

// EncodeMouse renders a pane-local mouse event in the encoding the
// child selected: SGR, URXVT, or legacy X10. X10 emits nothing when a
// coordinate exceeds 223. Wire coordinates are 1-based.
func EncodeMouse(ev MouseEvent, sgr, urxvt bool) []byte {
	var cb int
	pressed := true
	switch ev.Kind {
	case MousePress:
		cb = ev.Button
	case MouseRelease:
		cb = ev.Button
		pressed = false
	case MouseDrag:
		cb = ev.Button + 32
	case MouseMotion:
		cb = 35
	case MouseWheelUp:
		cb = 64
	case MouseWheelDown:
		cb = 65
	}
	if ev.Mods&ModShift != 0 {
		cb += 4
	}
	if ev.Mods&ModAlt != 0 {
		cb += 8
	}
	if ev.Mods&ModCtrl != 0 {
		cb += 16
	}

	x, y := ev.X+1, ev.Y+1

	if sgr {
		suffix := byte('M')
		if !pressed {
			suffix = 'm'
		}
		return []byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", cb, x, y, suffix))
	}
	if urxvt {
		return []byte(fmt.Sprintf("\x1b[%d;%d;%dM", cb+32, x, y))
	}
	if x > 223 || y > 223 {
		return nil
	}
	return []byte{0x1B, '[', 'M', byte(cb + 32), byte(x + 32), byte(y + 32)}
}
