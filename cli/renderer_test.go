package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	wtmux "github.com/phroun/wtmux"
	"github.com/phroun/wtmux/config"
	"github.com/phroun/wtmux/wm"
)

// recordingWriter counts flushes so tests can assert the one-buffer
// frame contract.
type recordingWriter struct {
	bytes.Buffer
	writes int
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.Buffer.Write(p)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.writes++
	return w.Buffer.WriteString(s)
}

func testSpawn() wtmux.SpawnOptions {
	return wtmux.SpawnOptions{
		Shell: wtmux.Shell{Kind: wtmux.CustomShell, Path: "/nonexistent/wtmux-test-shell"},
	}
}

func newTestRenderer(out *recordingWriter) *Renderer {
	return NewRenderer(out, config.SchemeByName("default"), BorderSingle, false)
}

func TestFrameWrapsSynchronizedUpdate(t *testing.T) {
	out := &recordingWriter{}
	r := newTestRenderer(out)

	err := r.withFrame(func() error {
		r.buf.WriteString("payload")
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.writes != 1 {
		t.Errorf("frame flushed %d times, want exactly 1", out.writes)
	}
	s := out.String()
	begin := strings.Index(s, "\x1b[?2026h")
	end := strings.Index(s, "\x1b[?2026l")
	if begin < 0 || end < 0 || begin > end {
		t.Errorf("frame missing ordered 2026 begin/end: %q", s)
	}
	if !strings.Contains(s, "payload") {
		t.Error("frame should carry the payload")
	}
	if !strings.Contains(s, "\x1b[?7l") || !strings.Contains(s, "\x1b[?7h") {
		t.Error("frame should disable and restore host autowrap")
	}
}

func TestFramePanicStillPairsBeginEnd(t *testing.T) {
	out := &recordingWriter{}
	r := newTestRenderer(out)

	err := r.withFrame(func() error {
		r.buf.WriteString("half a frame")
		panic("mid-render failure")
	})
	if err == nil {
		t.Fatal("panic should surface as an error")
	}
	if out.writes != 1 {
		t.Errorf("panicked frame flushed %d times, want exactly 1", out.writes)
	}
	s := out.String()
	if !strings.Contains(s, "\x1b[?2026h") || !strings.Contains(s, "\x1b[?2026l") {
		t.Errorf("begin/end 2026 must travel in the same buffer on panic: %q", s)
	}
	if !strings.Contains(s, "\x1b[?25h") {
		t.Error("cursor visibility must be restored on the failure path")
	}
	if !strings.Contains(s, "\x1b[?7h") {
		t.Error("autowrap must be restored on the failure path")
	}
}

func TestFrameErrorRestoresCursor(t *testing.T) {
	out := &recordingWriter{}
	r := newTestRenderer(out)
	boom := errors.New("boom")
	if err := r.withFrame(func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if !strings.Contains(out.String(), "\x1b[?25h") {
		t.Error("cursor must be restored after a frame error")
	}
}

func TestRenderProducesTabBarAndStatus(t *testing.T) {
	out := &recordingWriter{}
	r := newTestRenderer(out)
	m := wm.New(80, 24, 100, testSpawn(), true, true)
	ui := &UIState{}
	NewRouter(m, r, ui, defaultTestConfig(), testHistory(t))

	if err := r.Render(m, ui); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	tab := m.ActiveTab()
	if !strings.Contains(s, tab.Name) {
		t.Errorf("frame should include the tab label %q", tab.Name)
	}
	if _, ok := r.TabHit(1); !ok {
		t.Error("tab label should be clickable after a render")
	}
}

func TestTabHitRanges(t *testing.T) {
	out := &recordingWriter{}
	r := newTestRenderer(out)
	m := wm.New(80, 24, 100, testSpawn(), true, true)
	ui := &UIState{}
	NewRouter(m, r, ui, defaultTestConfig(), testHistory(t))
	second := m.NewTab()
	m.GotoTab(1)

	if err := r.Render(m, ui); err != nil {
		t.Fatal(err)
	}

	// Each recorded range resolves back to its tab.
	for _, tr := range r.tabRanges {
		id, ok := r.TabHit(tr.start)
		if !ok || id != tr.id {
			t.Errorf("TabHit(%d) = %d,%v, want %d", tr.start, id, ok, tr.id)
		}
	}
	if len(r.tabRanges) != 2 {
		t.Fatalf("tab ranges = %d, want 2", len(r.tabRanges))
	}
	// Clicking the second label's range targets the second tab.
	mid := (r.tabRanges[1].start + r.tabRanges[1].end) / 2
	if id, ok := r.TabHit(mid); !ok || id != second {
		t.Errorf("TabHit(%d) = %d, want tab %d", mid, id, second)
	}
}

func TestPartialRenderEmitsOnlyDirtyRows(t *testing.T) {
	out := &recordingWriter{}
	r := newTestRenderer(out)
	m := wm.New(80, 24, 100, testSpawn(), false, false)
	ui := &UIState{}
	NewRouter(m, r, ui, defaultTestConfig(), testHistory(t))
	p := m.FocusedPane()
	p.Feed([]byte("\x1b[2J\x1b[H"))

	if err := r.Render(m, ui); err != nil {
		t.Fatal(err)
	}
	if p.Term.HasDirty() {
		t.Fatal("first render should clear dirty rows")
	}

	out.Reset()
	p.Feed([]byte("\x1b[5;1Hchanged"))
	if err := r.Render(m, ui); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if !strings.Contains(s, "changed") {
		t.Error("partial frame should carry the dirty row")
	}
	// Row 5 changed; row addressing for untouched row 20 must be absent.
	if strings.Contains(s, "\x1b[20;1H") {
		t.Error("partial frame should not repaint clean rows")
	}
	if p.Term.HasDirty() {
		t.Error("emitted rows should have dirty bits cleared")
	}
}

func defaultTestConfig() *config.Config {
	cfg := config.Default()
	return &cfg
}
