package app

import (
	"context"
	"fmt"
	"time"

	"github.com/bft-labs/wabridge/internal/domain"
	"github.com/bft-labs/wabridge/internal/ports"
)

// MaxUploadBytes is the default upload size limit (20 MiB).
const MaxUploadBytes int64 = 20 << 20

// Upload is a staged file payload. The caller owns it and removes it once the
// send has finished.
type Upload interface {
	// Name returns the original filename supplied by the uploader.
	Name() string
	// Size returns the staged byte length.
	Size() int64
	// ReadAll reads the staged contents into memory.
	ReadAll() ([]byte, error)
}

// TextRequest is a request to deliver a text message.
type TextRequest struct {
	ChatID  string
	Number  string
	Message string
}

// FileRequest is a request to deliver a staged file. File is nil when the
// caller did not upload one.
type FileRequest struct {
	ChatID string
	Number string
	File   Upload
}

// SendEventEmitter is called on send success or failure.
type SendEventEmitter interface {
	OnSendSuccess(kind string, bytes int64, duration time.Duration)
	OnSendError(kind string, err error)
}

// SenderConfig contains configuration for outbound sends.
type SenderConfig struct {
	// Timeout bounds each call into the session client. Zero waits forever.
	Timeout time.Duration
	// MaxUploadBytes rejects larger files with ErrPayloadTooLarge.
	MaxUploadBytes int64
}

// Sender validates send requests and hands them to the session client.
type Sender struct {
	config    SenderConfig
	readiness *Readiness
	session   ports.SessionClient
	history   ports.HistoryLog
	logger    ports.Logger
	emitter   SendEventEmitter
}

// NewSender creates a new sender. emitter may be nil.
func NewSender(config SenderConfig, readiness *Readiness, session ports.SessionClient, history ports.HistoryLog, logger ports.Logger, emitter SendEventEmitter) *Sender {
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = MaxUploadBytes
	}
	return &Sender{
		config:    config,
		readiness: readiness,
		session:   session,
		history:   history,
		logger:    logger,
		emitter:   emitter,
	}
}

// Ready reports whether sends are currently accepted.
func (s *Sender) Ready() bool {
	return s.readiness.Ready()
}

// MaxUploadBytes returns the configured upload limit.
func (s *Sender) MaxUploadBytes() int64 {
	return s.config.MaxUploadBytes
}

// RequireReady returns domain.ErrNotReady, and records that the payload was
// dropped, when sends are not accepted. what names the payload ("Message",
// "File") in the history line.
func (s *Sender) RequireReady(what string) error {
	if s.readiness.Ready() {
		return nil
	}
	s.log("Client not ready. " + what + " not sent.")
	return domain.ErrNotReady
}

// SendText validates req and delivers it.
// Checks run in order: readiness, message presence, target resolution.
func (s *Sender) SendText(ctx context.Context, req TextRequest) (domain.Target, error) {
	if err := s.RequireReady("Message"); err != nil {
		return "", err
	}
	if req.Message == "" {
		s.log("Missing message in request")
		return "", domain.ErrMissingMessage
	}
	target, err := domain.ResolveTarget(req.ChatID, req.Number)
	if err != nil {
		s.log("Missing target number or chatId")
		return "", err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	if err := s.session.SendText(ctx, target, req.Message); err != nil {
		s.logger.Error("send message failed", ports.String("target", target.String()), ports.Err(err))
		s.log(fmt.Sprintf("Error sending message to %s: %v", target, err))
		if s.emitter != nil {
			s.emitter.OnSendError("text", err)
		}
		return target, &domain.SendError{Target: target, Err: err}
	}

	s.logger.Info("message sent", ports.String("target", target.String()), ports.Duration("duration", time.Since(start)))
	s.log(fmt.Sprintf("Message sent to %s: %q", target, req.Message))
	if s.emitter != nil {
		s.emitter.OnSendSuccess("text", int64(len(req.Message)), time.Since(start))
	}
	return target, nil
}

// SendFile validates req and delivers the staged file.
// Checks run in order: readiness, target resolution, file presence, size.
// SendFile never removes the upload; that stays with the caller.
func (s *Sender) SendFile(ctx context.Context, req FileRequest) (domain.Target, error) {
	if err := s.RequireReady("File"); err != nil {
		return "", err
	}
	target, err := domain.ResolveTarget(req.ChatID, req.Number)
	if err != nil {
		s.log("Missing target (chatId/number)")
		return "", err
	}
	if req.File == nil || req.File.Name() == "" {
		s.log("Missing file payload")
		return target, domain.ErrMissingFile
	}

	name := req.File.Name()
	size := req.File.Size()
	if size > s.config.MaxUploadBytes {
		s.log(fmt.Sprintf("File too large (%.2f MB): %s", megabytes(size), name))
		return target, domain.ErrPayloadTooLarge
	}

	raw, err := req.File.ReadAll()
	if err != nil {
		s.logger.Error("read staged upload failed", ports.String("file", name), ports.Err(err))
		s.log(fmt.Sprintf("Failed to send file to %s: %v", target, err))
		return target, &domain.SendError{Target: target, Err: err}
	}
	media := domain.NewMedia(raw, name)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	if err := s.session.SendMedia(ctx, target, media); err != nil {
		s.logger.Error("send file failed", ports.String("target", target.String()), ports.String("file", name), ports.Err(err))
		s.log(fmt.Sprintf("Failed to send file to %s: %v", target, err))
		if s.emitter != nil {
			s.emitter.OnSendError("file", err)
		}
		return target, &domain.SendError{Target: target, Err: err}
	}

	s.logger.Info("file sent",
		ports.String("target", target.String()),
		ports.String("file", name),
		ports.String("content_type", media.ContentType),
		ports.Int64("bytes", size),
		ports.Duration("duration", time.Since(start)),
	)
	s.log(fmt.Sprintf("File sent to %s: %s (%.2f MB)", target, name, megabytes(size)))
	if s.emitter != nil {
		s.emitter.OnSendSuccess("file", size, time.Since(start))
	}
	return target, nil
}

func (s *Sender) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.config.Timeout)
}

func (s *Sender) log(message string) {
	if err := s.history.Log(message); err != nil {
		s.logger.Debug("history write failed", ports.Err(err))
	}
}

func megabytes(n int64) float64 {
	return float64(n) / (1024 * 1024)
}
