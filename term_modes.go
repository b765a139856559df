package wtmux

import "strings"

// SetPrivateMode applies a DECSET/DECRST private mode change.
// Unrecognized modes are dropped silently.
func (t *Term) SetPrivateMode(mode int, set bool) {
	switch mode {
	case 1: // DECCKM - application cursor keys
		t.modes.AppCursor = set
	case 6: // DECOM - origin mode
		t.modes.Origin = set
		t.SetCursor(0, 0)
	case 7: // DECAWM - autowrap
		t.modes.AutoWrap = set
		if !set {
			t.pendingWrap = false
		}
	case 12: // Cursor blink
		t.modes.CursorBlink = set
	case 25: // DECTCEM - cursor visibility
		t.modes.CursorVisible = set
	case 47, 1047:
		// Legacy alternate screen without cursor save; shares the
		// same underlying grid switch as 1049.
		t.switchScreen(set, false)
	case 1048: // Cursor save/restore only
		if set {
			t.SaveCursor()
		} else {
			t.RestoreCursor()
		}
	case 1049: // Alternate screen with cursor save + clear
		t.switchScreen(set, true)
	case 1000:
		t.modes.MouseClick = set
	case 1002:
		t.modes.MouseDrag = set
	case 1003:
		t.modes.MouseMotion = set
	case 1006:
		t.modes.MouseSGR = set
	case 1015:
		t.modes.MouseURXVT = set
	case 2004:
		t.modes.BracketedPaste = set
	case 2026:
		t.modes.SyncUpdate = set
	}
}

// SetAnsiMode applies an SM/RM (non-private) mode change.
func (t *Term) SetAnsiMode(mode int, set bool) {
	if mode == 20 { // LNM - linefeed/newline
		t.modes.LinefeedNewline = set
	}
}

// switchScreen enters or leaves the alternate screen. Entering saves
// the cursor and clears the alternate grid; leaving restores. Toggling
// twice returns the primary grid and cursor unchanged.
func (t *Term) switchScreen(toAlt, saveCursor bool) {
	if toAlt == t.modes.AltScreen {
		return
	}
	if toAlt {
		if saveCursor {
			t.active.saved = savedCursor{x: t.cursorX, y: t.cursorY, pen: t.cur, origin: t.modes.Origin}
		}
		t.modes.AltScreen = true
		t.active = t.alt
		t.cursorX, t.cursorY = 0, 0
		t.ClearScreen()
	} else {
		t.modes.AltScreen = false
		t.active = t.primary
		if saveCursor {
			s := t.active.saved
			t.cursorX = clamp(s.x, 0, t.cols-1)
			t.cursorY = clamp(s.y, 0, t.rows-1)
			t.cur = s.pen
			t.modes.Origin = s.origin
		}
	}
	t.scrollTop = 0
	t.scrollBottom = t.rows - 1
	t.pendingWrap = false
	t.markAllDirty()
}

// SetCursorStyle records the DECSCUSR cursor appearance.
func (t *Term) SetCursorStyle(shape CursorShape, blink bool) {
	t.modes.CursorShape = shape
	t.modes.CursorBlink = blink
}

// HandleOSC processes a completed operating-system command.
func (t *Term) HandleOSC(cmd int, payload string) {
	switch cmd {
	case 0, 2: // Window title
		t.title = payload
		if t.OnTitle != nil {
			t.OnTitle(payload)
		}
	case 8: // Hyperlink: params;URI, an empty URI ends the link
		if i := strings.IndexByte(payload, ';'); i >= 0 {
			t.cur.hyperlink = payload[i+1:]
		} else {
			t.cur.hyperlink = ""
		}
	case 52: // Clipboard write: selection;base64-data
		if t.OnClipboard == nil {
			return
		}
		if i := strings.IndexByte(payload, ';'); i >= 0 {
			t.OnClipboard(payload[i+1:])
		}
	case 133: // Shell integration prompt marks; recorded, not displayed
		if payload != "" && (payload[0] == 'A' || payload[0] == 'B') {
			t.promptMarks[t.evicted+len(t.scrollback)+t.cursorY] = struct{}{}
		}
	}
}

// Pen attribute setters used by the parser's SGR dispatch.

// ResetAttributes resets the pen to defaults (SGR 0).
func (t *Term) ResetAttributes() {
	hl := t.cur.hyperlink
	t.cur = defaultPen()
	t.cur.hyperlink = hl
}

// SetForeground sets the pen foreground color.
func (t *Term) SetForeground(c Color) { t.cur.fg = c }

// SetBackground sets the pen background color.
func (t *Term) SetBackground(c Color) { t.cur.bg = c }

// SetBold sets the bold attribute.
func (t *Term) SetBold(on bool) { t.cur.bold = on }

// SetFaint sets the faint attribute.
func (t *Term) SetFaint(on bool) { t.cur.faint = on }

// SetItalic sets the italic attribute.
func (t *Term) SetItalic(on bool) { t.cur.italic = on }

// SetUnderline sets the underline attribute.
func (t *Term) SetUnderline(on bool) { t.cur.underline = on }

// SetBlink sets the blink attribute.
func (t *Term) SetBlink(on bool) { t.cur.blink = on }

// SetReverse sets reverse video.
func (t *Term) SetReverse(on bool) { t.cur.reverse = on }

// SetHidden sets the hidden attribute.
func (t *Term) SetHidden(on bool) { t.cur.hidden = on }

// SetStrikethrough sets the strikethrough attribute.
func (t *Term) SetStrikethrough(on bool) { t.cur.strikethrough = on }
