package wtmux

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// PTY abstracts the host pseudo-terminal facility behind a session.
type PTY interface {
	io.Reader
	io.Writer
	Resize(cols, rows int) error
	Close() error
}

// ShellKind selects which shell a session launches.
type ShellKind int

const (
	CmdShell ShellKind = iota
	PowerShell
	Pwsh
	Wsl
	CustomShell
)

// ShellSpec names the child program for a session. Path and Args are
// only used with CustomShell.
type ShellSpec struct {
	Kind ShellKind
	Path string
	Args []string
}

// commandLine resolves the spec to an executable and arguments.
// PowerShell-family shells launch directly, never through an
// intermediate shell.
func (s ShellSpec) commandLine() (string, []string) {
	switch s.Kind {
	case PowerShell:
		return "powershell", []string{"-NoLogo"}
	case Pwsh:
		return "pwsh", []string{"-NoLogo"}
	case Wsl:
		return "wsl", nil
	case CustomShell:
		return s.Path, s.Args
	default:
		return "cmd", nil
	}
}

// Codepages accepted at spawn.
const (
	CodepageUTF8     = 65001
	CodepageShiftJIS = 932
)

// sessionQueueDepth bounds the per-session output queue. The reader
// goroutine blocks when the main loop lags, which preserves ordering
// and applies backpressure to the child instead of dropping bytes.
const sessionQueueDepth = 32

const readBufSize = 4096

// killJoinTimeout bounds how long Kill waits for the reader to drain.
const killJoinTimeout = 2 * time.Second

// ErrSessionClosed is returned by writes to a terminated session.
var ErrSessionClosed = errors.New("session closed")

// Session owns one child process on a PTY: spawn, read, write, resize,
// exit tracking. Reads happen on a dedicated goroutine feeding a
// bounded queue that the event loop drains.
type Session struct {
	pty PTY
	cmd *exec.Cmd

	out chan []byte

	pending []byte // Partially drained chunk carried between frames

	exitCh   chan struct{}
	exitCode int
}

// SpawnOptions configures a session spawn and the pane defaults that
// travel with it.
type SpawnOptions struct {
	Shell      Shell
	Cols       int
	Rows       int
	Codepage   int
	ConfigDir  string // Exported as WTMUX_CONFIG_DIR when set
	WorkingDir string

	// Default cursor appearance until the child issues DECSCUSR.
	CursorShape CursorShape
	CursorBlink bool
}

// Shell is a ShellSpec alias kept for call-site readability.
type Shell = ShellSpec

// Spawn launches a child shell on a fresh PTY. A failed spawn returns
// an error and never panics the caller.
func Spawn(opts SpawnOptions) (*Session, error) {
	name, args := opts.Shell.commandLine()
	cmd := exec.Command(name, args...)
	if opts.WorkingDir != "" {
		cmd.Dir = opts.WorkingDir
	}
	cmd.Env = append(os.Environ(),
		"WTMUX=1",
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
	)
	if opts.ConfigDir != "" {
		cmd.Env = append(cmd.Env, "WTMUX_CONFIG_DIR="+opts.ConfigDir)
	}
	if opts.Codepage == CodepageShiftJIS {
		cmd.Env = append(cmd.Env, "WTMUX_CODEPAGE=932")
	} else {
		cmd.Env = append(cmd.Env, "WTMUX_CODEPAGE=65001")
	}

	p, err := openPTY(cmd, opts.Cols, opts.Rows)
	if err != nil {
		return nil, fmt.Errorf("spawn %s: %w", name, err)
	}

	s := &Session{
		pty:      p,
		cmd:      cmd,
		out:      make(chan []byte, sessionQueueDepth),
		exitCh:   make(chan struct{}),
		exitCode: -1,
	}

	var src io.Reader = p
	if opts.Codepage == CodepageShiftJIS {
		src = transform.NewReader(p, japanese.ShiftJIS.NewDecoder())
	}
	go s.readLoop(src)
	go s.waitLoop()

	return s, nil
}

// readLoop blocks on child output and pushes chunks to the bounded
// queue in strict FIFO order.
func (s *Session) readLoop(src io.Reader) {
	defer close(s.out)
	buf := make([]byte, readBufSize)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.out <- chunk
		}
		if err != nil {
			return
		}
	}
}

func (s *Session) waitLoop() {
	err := s.cmd.Wait()
	code := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	} else if err != nil {
		code = 1
	}
	s.exitCode = code
	close(s.exitCh)
}

// Drain returns up to budget bytes of child output without blocking.
// Ordering is preserved across calls; a chunk larger than the remaining
// budget is split and the rest carried to the next call.
func (s *Session) Drain(budget int) []byte {
	var data []byte
	for len(data) < budget {
		if len(s.pending) > 0 {
			n := budget - len(data)
			if n > len(s.pending) {
				n = len(s.pending)
			}
			data = append(data, s.pending[:n]...)
			s.pending = s.pending[n:]
			continue
		}
		select {
		case chunk, ok := <-s.out:
			if !ok {
				return data
			}
			s.pending = chunk
		default:
			return data
		}
	}
	return data
}

// HasOutput reports whether queued output is waiting.
func (s *Session) HasOutput() bool {
	return len(s.pending) > 0 || len(s.out) > 0
}

// Write sends input to the child. The write path is synchronous from
// the input router.
func (s *Session) Write(data []byte) (int, error) {
	if !s.Alive() {
		return 0, ErrSessionClosed
	}
	return s.pty.Write(data)
}

// Resize propagates a size change to the child's PTY.
func (s *Session) Resize(cols, rows int) error {
	return s.pty.Resize(cols, rows)
}

// Alive reports whether the child is still running.
func (s *Session) Alive() bool {
	select {
	case <-s.exitCh:
		return false
	default:
		return true
	}
}

// ExitStatus returns the child's exit code once it has exited.
func (s *Session) ExitStatus() (int, bool) {
	select {
	case <-s.exitCh:
		return s.exitCode, true
	default:
		return 0, false
	}
}

// Kill terminates the child and joins the reader with a bounded wait.
// On timeout the reader is detached; its queue is drained and dropped.
func (s *Session) Kill() {
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.pty.Close()

	timer := time.NewTimer(killJoinTimeout)
	defer timer.Stop()
	for {
		select {
		case _, ok := <-s.out:
			if !ok {
				return
			}
		case <-timer.C:
			// Reader is stuck; detach and let it die with the fd.
			go func() {
				for range s.out {
				}
			}()
			return
		}
	}
}
