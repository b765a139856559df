package cli

import (
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Host stdout belongs to the renderer, so diagnostics go to a file
// under the config directory, and only when WTMUX_DEBUG is set.

var (
	debugOnce sync.Once
	debugLog  *log.Logger
)

func debugf(format string, args ...any) {
	debugOnce.Do(func() {
		if os.Getenv("WTMUX_DEBUG") == "" {
			return
		}
		dir := os.Getenv("WTMUX_CONFIG_DIR")
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return
			}
			dir = filepath.Join(home, ".wtmux")
		}
		f, err := os.OpenFile(filepath.Join(dir, "log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return
		}
		debugLog = log.New(f, "", log.LstdFlags|log.Lmicroseconds)
	})
	if debugLog != nil {
		debugLog.Printf(format, args...)
	}
}
