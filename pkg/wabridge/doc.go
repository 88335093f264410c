// Package wabridge provides an embeddable WhatsApp HTTP bridge.
//
// A Bridge keeps one WhatsApp session connected, mirrors its readiness to a
// marker file for out-of-process health checks, and serves a small HTTP API
// (GET /status, POST /send, POST /file) that forwards messages and file
// attachments to the session.
//
// # Basic Usage
//
//	cfg := wabridge.DefaultConfig()
//	cfg.Home = "/var/lib/wabridge"
//
//	b, err := wabridge.New(cfg, wabridge.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Run blocks until SIGINT, SIGTERM or SIGHUP and clears the marker
//	// before it returns.
//	if err := b.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// Embedders that manage their own signals can use [Bridge.Start] and
// [Bridge.Stop] instead of Run.
//
// # Pairing
//
// On first start the device is not paired: a QR code is printed to the
// writer given by [WithQRWriter] (stdout by default) and the session stays
// not ready until it is scanned. The pairing survives restarts in the
// session directory.
//
// # Lifecycle States
//
// A Bridge is in one of [StateStopped], [StateStarting], [StateRunning],
// [StateStopping] or [StateCrashed]. The run state is separate from session
// readiness, which is reported by [Bridge.Ready].
package wabridge
