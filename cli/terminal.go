package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	wtmux "github.com/phroun/wtmux"
	"github.com/phroun/wtmux/config"
	"github.com/phroun/wtmux/history"
	"github.com/phroun/wtmux/wm"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// pollTimeout is the host-input wait per loop iteration; short enough
// that child output drains promptly.
const pollTimeout = 10 * time.Millisecond

// maxRenderFailures aborts the session after this many consecutive
// frame errors.
const maxRenderFailures = 4

// App owns the host terminal for one wtmux run.
type App struct {
	cfg config.Config

	m      *wm.Manager
	ren    *Renderer
	router *Router
	ui     *UIState
	dec    Decoder

	in  *os.File
	out *os.File

	oldState *term.State
	stopRead chan struct{}
}

// Options configures an App.
type Options struct {
	Config    config.Config
	Shell     wtmux.Shell
	Codepage  int
	Simple    bool // Single pane, no tab or status bar
	ConfigDir string
}

// NewApp prepares a session against stdin/stdout. Host terminal setup
// happens in Run.
func NewApp(opts Options) (*App, error) {
	in, out := os.Stdin, os.Stdout
	if !term.IsTerminal(int(in.Fd())) {
		return nil, fmt.Errorf("stdin is not a terminal")
	}
	cols, rows, err := term.GetSize(int(out.Fd()))
	if err != nil {
		return nil, fmt.Errorf("querying host terminal size: %w", err)
	}

	cfg := opts.Config
	tabBar := cfg.TabBar.Visible && !opts.Simple
	statusBar := cfg.StatusBar.Visible && !opts.Simple

	spawn := wtmux.SpawnOptions{
		Shell:       opts.Shell,
		Codepage:    opts.Codepage,
		ConfigDir:   opts.ConfigDir,
		CursorShape: cursorShapeFromConfig(cfg.Cursor.Shape),
		CursorBlink: cfg.Cursor.Blink,
	}

	m := wm.New(cols, rows, cfg.Scrollback.Lines, spawn, tabBar, statusBar)
	ren := NewRenderer(out, config.SchemeByName(cfg.ColorScheme),
		ParseBorderStyle(cfg.Pane.BorderStyle), cfg.StatusBar.ShowTime)
	ui := &UIState{}
	hist := history.Open(opts.ConfigDir)
	router := NewRouter(m, ren, ui, &cfg, hist)

	return &App{
		cfg:      cfg,
		m:        m,
		ren:      ren,
		router:   router,
		ui:       ui,
		in:       in,
		out:      out,
		stopRead: make(chan struct{}),
	}, nil
}

func cursorShapeFromConfig(shape string) wtmux.CursorShape {
	switch shape {
	case "underline":
		return wtmux.CursorUnderline
	case "bar":
		return wtmux.CursorBar
	default:
		return wtmux.CursorBlock
	}
}

// InitialSpawnFailed reports whether the very first pane's shell
// failed to start, which is a startup failure rather than a dead pane.
func (a *App) InitialSpawnFailed() bool {
	p := a.m.FocusedPane()
	return p != nil && p.Session == nil
}

// setupHost enters raw mode and claims the host terminal surface.
func (a *App) setupHost() error {
	oldState, err := term.MakeRaw(int(a.in.Fd()))
	if err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	a.oldState = oldState

	io.WriteString(a.out, "\x1b[?1049h") // Alternate screen
	io.WriteString(a.out, "\x1b[2J\x1b[H")
	io.WriteString(a.out, "\x1b[?1000h\x1b[?1002h\x1b[?1006h") // Mouse + SGR reports
	io.WriteString(a.out, "\x1b[?2004h")                       // Bracketed paste
	return nil
}

// teardownHost restores the host terminal on every exit path.
func (a *App) teardownHost() {
	if a.oldState == nil {
		return
	}
	io.WriteString(a.out, "\x1b[?2004l")
	io.WriteString(a.out, "\x1b[?1006l\x1b[?1002l\x1b[?1000l")
	io.WriteString(a.out, "\x1b[0 q") // Reset cursor shape
	io.WriteString(a.out, "\x1b[0m\x1b[?7h\x1b[?25h")
	io.WriteString(a.out, "\x1b[?1049l")
	_ = term.Restore(int(a.in.Fd()), a.oldState)
	a.oldState = nil
}

// readInput pumps raw host input to the loop.
func (a *App) readInput(ch chan<- []byte) {
	buf := make([]byte, 256)
	for {
		n, err := a.in.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case ch <- chunk:
			case <-a.stopRead:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// Run sets up the host, then drives the cooperative loop: poll input
// with a short timeout, drain child output under the frame budget,
// render when dirty, and sleep only when fully idle.
func (a *App) Run() error {
	if err := a.setupHost(); err != nil {
		return err
	}
	defer a.teardownHost()

	inputCh := make(chan []byte, 16)
	go a.readInput(inputCh)
	defer close(a.stopRead)

	winch := make(chan os.Signal, 1)
	signal.Notify(winch, unix.SIGWINCH)
	defer signal.Stop(winch)

	configCh := make(chan struct{}, 1)
	cfgPath := config.Path(config.Dir())
	if stop, err := config.Watch(cfgPath, func() {
		select {
		case configCh <- struct{}{}:
		default:
		}
	}); err == nil {
		defer stop()
	}

	renderFailures := 0
	lastMinute := -1

	for a.m.Running() && !a.router.Quit() {
		changed := a.m.DrainOutput()
		a.router.Tick(time.Now())

		// The status clock repaints when the minute turns.
		if a.ren.showTime && a.m.StatusBarHeight > 0 {
			if minute := time.Now().Minute(); minute != lastMinute {
				lastMinute = minute
				changed = true
			}
		}

		if changed || a.router.TakeRender() || a.paneDirty() {
			if err := a.ren.Render(a.m, a.ui); err != nil {
				renderFailures++
				debugf("render error: %v", err)
				// Force a clean full redraw next frame.
				a.m.Bump()
				if renderFailures >= maxRenderFailures {
					return fmt.Errorf("render failed repeatedly: %w", err)
				}
			} else {
				renderFailures = 0
			}
		}

		// Sleep only when both input and output are idle.
		if a.m.PendingOutput() {
			a.pollOnce(inputCh, winch, configCh, 0)
			continue
		}
		a.pollOnce(inputCh, winch, configCh, pollTimeout)
	}
	return nil
}

func (a *App) pollOnce(inputCh <-chan []byte, winch <-chan os.Signal, configCh <-chan struct{}, timeout time.Duration) {
	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	} else {
		done := make(chan time.Time)
		close(done)
		timer = done
	}

	select {
	case data := <-inputCh:
		for _, ev := range a.dec.Feed(data) {
			a.router.HandleEvent(ev)
		}
	case <-winch:
		if cols, rows, err := term.GetSize(int(a.out.Fd())); err == nil {
			a.router.HandleEvent(ResizeEvent{Cols: cols, Rows: rows})
		}
	case <-configCh:
		a.reloadConfig()
	case <-timer:
		// Resolve a pending lone ESC once no continuation arrived.
		for _, ev := range a.dec.FlushPending() {
			a.router.HandleEvent(ev)
		}
	}
}

// reloadConfig applies the runtime-tunable settings from a rewritten
// config file: theme and bar visibility. Shell and codepage changes
// only affect future spawns and are ignored here.
func (a *App) reloadConfig() {
	cfg, err := config.Load(config.Path(config.Dir()))
	if err != nil {
		debugf("config reload: %v", err)
		return
	}
	a.ren.SetScheme(config.SchemeByName(cfg.ColorScheme))
	a.ren.showTime = cfg.StatusBar.ShowTime

	tabBar, statusBar := 0, 0
	if cfg.TabBar.Visible {
		tabBar = 1
	}
	if cfg.StatusBar.Visible {
		statusBar = 1
	}
	if tabBar != a.m.TabBarHeight || statusBar != a.m.StatusBarHeight {
		a.m.TabBarHeight = tabBar
		a.m.StatusBarHeight = statusBar
		a.m.Resize(a.m.Width, a.m.Height)
	}
	a.m.Bump()
}

func (a *App) paneDirty() bool {
	tab := a.m.ActiveTab()
	if tab == nil {
		return false
	}
	for _, p := range tab.Panes {
		if p.Term.HasDirty() {
			return true
		}
	}
	return false
}
