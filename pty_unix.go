//go:build !windows

package wtmux

import (
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// unixPTY implements PTY on top of the kernel pty device.
type unixPTY struct {
	master *os.File
}

// openPTY starts the command on a new PTY at the given size and returns
// the master side.
func openPTY(cmd *exec.Cmd, cols, rows int) (PTY, error) {
	master, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return nil, err
	}
	return &unixPTY{master: master}, nil
}

func (p *unixPTY) Read(b []byte) (int, error) {
	return p.master.Read(b)
}

func (p *unixPTY) Write(b []byte) (int, error) {
	return p.master.Write(b)
}

func (p *unixPTY) Resize(cols, rows int) error {
	return pty.Setsize(p.master, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
}

func (p *unixPTY) Close() error {
	return p.master.Close()
}
