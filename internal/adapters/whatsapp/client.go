// Package whatsapp implements ports.SessionClient on top of whatsmeow.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
	_ "modernc.org/sqlite"

	"github.com/bft-labs/wabridge/internal/domain"
	"github.com/bft-labs/wabridge/internal/ports"
)

// StoreFileName is the session database inside the session directory.
const StoreFileName = "store.db"

// ErrClosed is returned by sends after Close.
var ErrClosed = errors.New("whatsapp: client closed")

// Config contains session client settings.
type Config struct {
	// SessionDir holds the device store. Pairing survives restarts as long
	// as it is kept.
	SessionDir string
	// DeviceName is shown in the phone's linked devices list.
	DeviceName string
	// Go runs the QR forwarder. Nil uses a plain goroutine.
	Go func(fn func())
}

// messenger is the subset of *whatsmeow.Client used to deliver messages.
type messenger interface {
	SendMessage(ctx context.Context, to types.JID, message *waE2E.Message, extra ...whatsmeow.SendRequestExtra) (whatsmeow.SendResponse, error)
	Upload(ctx context.Context, plaintext []byte, appInfo whatsmeow.MediaType) (whatsmeow.UploadResponse, error)
}

// Client implements ports.SessionClient.
type Client struct {
	config Config
	logger ports.Logger
	zlog   zerolog.Logger

	container *sqlstore.Container
	wa        *whatsmeow.Client
	send      messenger

	mu     sync.RWMutex
	ctx    context.Context
	events chan<- domain.Event
	closed bool
}

// NewClient opens the device store and prepares a protocol client. Nothing
// connects until Start.
func NewClient(ctx context.Context, config Config, zlog zerolog.Logger, logger ports.Logger) (*Client, error) {
	if config.SessionDir == "" {
		return nil, fmt.Errorf("whatsapp: session dir is required")
	}
	if err := os.MkdirAll(config.SessionDir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	if config.DeviceName != "" {
		store.DeviceProps.Os = proto.String(config.DeviceName)
	}

	dsn := "file:" + filepath.Join(config.SessionDir, StoreFileName) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	dbLog := waLog.Zerolog(zlog.With().Str("module", "store").Logger())
	container, err := sqlstore.New(ctx, "sqlite", dsn, dbLog)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		_ = container.Close()
		return nil, fmt.Errorf("load device: %w", err)
	}

	wa := whatsmeow.NewClient(device, waLog.Zerolog(zlog.With().Str("module", "client").Logger()))

	return &Client{
		config:    config,
		logger:    logger,
		zlog:      zlog,
		container: container,
		wa:        wa,
		send:      wa,
	}, nil
}

// Start connects and publishes session events to events until Close.
// When the device is not paired yet, QR codes are published as EventQR.
func (c *Client) Start(ctx context.Context, events chan<- domain.Event) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.ctx = ctx
	c.events = events
	c.mu.Unlock()

	c.wa.AddEventHandler(c.handleEvent)

	if c.wa.Store.ID == nil {
		c.logger.Info("device not paired, waiting for qr scan")
		qrCh, err := c.wa.GetQRChannel(ctx)
		if err != nil {
			return fmt.Errorf("get qr channel: %w", err)
		}
		c.startQRForwarder(qrCh)
	} else {
		c.logger.Info("resuming paired session", ports.String("jid", c.wa.Store.ID.String()))
	}

	c.publish(domain.Loading(0, "connecting"))
	if err := c.wa.Connect(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	return nil
}

func (c *Client) startQRForwarder(qrCh <-chan whatsmeow.QRChannelItem) {
	run := c.config.Go
	if run == nil {
		run = func(fn func()) { go fn() }
	}
	run(func() { c.forwardQR(qrCh) })
}

func (c *Client) forwardQR(qrCh <-chan whatsmeow.QRChannelItem) {
	for item := range qrCh {
		if ev, ok := translateQR(item); ok {
			c.publish(ev)
		}
	}
}

func (c *Client) handleEvent(evt any) {
	ev, ok := translate(evt)
	if !ok {
		return
	}
	c.publish(ev)
}

// publish hands ev to the controller. It gives up when the client is closed
// or the start context ends, so protocol goroutines never block forever.
func (c *Client) publish(ev domain.Event) {
	c.mu.RLock()
	ctx, events, closed := c.ctx, c.events, c.closed
	c.mu.RUnlock()
	if closed || events == nil {
		return
	}

	select {
	case events <- ev:
	case <-ctx.Done():
		c.logger.Debug("dropping session event after shutdown", ports.String("event", ev.String()))
	}
}

// SendText delivers a plain text message.
func (c *Client) SendText(ctx context.Context, target domain.Target, text string) error {
	jid, err := c.resolve(target)
	if err != nil {
		return err
	}
	msg := &waE2E.Message{Conversation: proto.String(text)}
	if _, err := c.send.SendMessage(ctx, jid, msg); err != nil {
		return fmt.Errorf("send text: %w", err)
	}
	return nil
}

// SendMedia uploads media and delivers it. Images are sent inline; anything
// else is sent as a document carrying its filename.
func (c *Client) SendMedia(ctx context.Context, target domain.Target, media domain.Media) error {
	jid, err := c.resolve(target)
	if err != nil {
		return err
	}
	raw, err := media.Bytes()
	if err != nil {
		return fmt.Errorf("decode media: %w", err)
	}

	appInfo := whatsmeow.MediaDocument
	if media.IsImage() {
		appInfo = whatsmeow.MediaImage
	}
	uploaded, err := c.send.Upload(ctx, raw, appInfo)
	if err != nil {
		return fmt.Errorf("upload media: %w", err)
	}

	if _, err := c.send.SendMessage(ctx, jid, buildMediaMessage(media, uploaded)); err != nil {
		return fmt.Errorf("send media: %w", err)
	}
	return nil
}

func buildMediaMessage(media domain.Media, up whatsmeow.UploadResponse) *waE2E.Message {
	if media.IsImage() {
		return &waE2E.Message{ImageMessage: &waE2E.ImageMessage{
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			MediaKey:      up.MediaKey,
			Mimetype:      proto.String(media.ContentType),
			FileEncSHA256: up.FileEncSHA256,
			FileSHA256:    up.FileSHA256,
			FileLength:    proto.Uint64(up.FileLength),
		}}
	}
	return &waE2E.Message{DocumentMessage: &waE2E.DocumentMessage{
		URL:           proto.String(up.URL),
		DirectPath:    proto.String(up.DirectPath),
		MediaKey:      up.MediaKey,
		Mimetype:      proto.String(media.ContentType),
		Title:         proto.String(media.Filename),
		FileName:      proto.String(media.Filename),
		FileEncSHA256: up.FileEncSHA256,
		FileSHA256:    up.FileSHA256,
		FileLength:    proto.Uint64(up.FileLength),
	}}
}

func (c *Client) resolve(target domain.Target) (types.JID, error) {
	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return types.JID{}, ErrClosed
	}
	return ToJID(target)
}

// Close disconnects and releases the device store. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	if c.wa != nil {
		c.wa.Disconnect()
	}
	if c.container != nil {
		if err := c.container.Close(); err != nil {
			return fmt.Errorf("close session store: %w", err)
		}
	}
	return nil
}
