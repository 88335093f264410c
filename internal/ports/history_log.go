package ports

// HistoryLog is the append-only, human-readable history file.
// Each call produces one timestamped line.
type HistoryLog interface {
	// Log appends message. A non-nil error means the line did not reach the
	// file; implementations still surface it on the console.
	Log(message string) error
}

// QRRenderer shows a pairing QR code to the operator.
type QRRenderer interface {
	Render(code string) error
}
