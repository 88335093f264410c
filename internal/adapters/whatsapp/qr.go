package whatsapp

import (
	"fmt"
	"io"
	"sync"

	"github.com/mdp/qrterminal/v3"
)

// TerminalQR implements ports.QRRenderer by drawing the pairing code as a
// half-block QR code.
type TerminalQR struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTerminalQR creates a renderer writing to w.
func NewTerminalQR(w io.Writer) *TerminalQR {
	return &TerminalQR{w: w}
}

// Render draws code. Encoder panics and write errors are returned.
func (q *TerminalQR) Render(code string) (err error) {
	if code == "" {
		return fmt.Errorf("empty qr code")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render qr: %v", r)
		}
	}()

	w := &errWriter{w: q.w}
	qrterminal.GenerateHalfBlock(code, qrterminal.L, w)
	if w.err != nil {
		return fmt.Errorf("render qr: %w", w.err)
	}
	return nil
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	if _, err := e.w.Write(p); err != nil {
		e.err = err
	}
	return len(p), nil
}
