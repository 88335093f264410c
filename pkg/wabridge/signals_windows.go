//go:build windows

package wabridge

import (
	"os"
	"syscall"
)

// defaultSignals stop the bridge. Ctrl+C and Ctrl+Break arrive as os.Interrupt.
func defaultSignals() []os.Signal {
	return []os.Signal{os.Interrupt, syscall.SIGTERM}
}
