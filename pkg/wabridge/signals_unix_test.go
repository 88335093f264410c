//go:build !windows

package wabridge

import (
	"os"
	"syscall"
	"testing"
)

func TestDefaultSignals(t *testing.T) {
	want := map[os.Signal]bool{os.Interrupt: true, syscall.SIGTERM: true, syscall.SIGHUP: true}

	got := defaultOptions().signals
	if len(got) != len(want) {
		t.Fatalf("signals = %v", got)
	}
	for _, sig := range got {
		if !want[sig] {
			t.Errorf("unexpected signal %v", sig)
		}
	}
}
