//go:build !windows

package wabridge

import (
	"os"
	"syscall"
)

// defaultSignals stop the bridge. SIGHUP covers a closed controlling terminal.
func defaultSignals() []os.Signal {
	return []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP}
}
