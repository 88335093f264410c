package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bft-labs/wabridge/internal/domain"
)

func newTestSender(ready bool, session *mockSession, cfg SenderConfig) (*Sender, *mockHistory, *mockEmitter) {
	history := &mockHistory{}
	emitter := &mockEmitter{}
	readiness := newTestReadiness(&mockMarker{}, history, nil)
	if ready {
		readiness.MarkReady("test")
	}
	return NewSender(cfg, readiness, session, history, mockLogger{}, emitter), history, emitter
}

func TestSender_SendText(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		req        TextRequest
		sendErr    error
		wantErr    error
		wantTarget domain.Target
		wantSent   bool
	}{
		{
			name:    "not ready wins over everything",
			ready:   false,
			req:     TextRequest{Number: "6281234567890", Message: "hi"},
			wantErr: domain.ErrNotReady,
		},
		{
			name:    "not ready with empty body",
			ready:   false,
			req:     TextRequest{},
			wantErr: domain.ErrNotReady,
		},
		{
			name:    "missing message checked before target",
			ready:   true,
			req:     TextRequest{},
			wantErr: domain.ErrMissingMessage,
		},
		{
			name:    "missing message with valid target",
			ready:   true,
			req:     TextRequest{Number: "6281234567890"},
			wantErr: domain.ErrMissingMessage,
		},
		{
			name:    "missing target",
			ready:   true,
			req:     TextRequest{Message: "hi"},
			wantErr: domain.ErrMissingTarget,
		},
		{
			name:       "number normalized",
			ready:      true,
			req:        TextRequest{Number: "6281234567890", Message: "hi"},
			wantTarget: "6281234567890@c.us",
			wantSent:   true,
		},
		{
			name:       "group number unchanged",
			ready:      true,
			req:        TextRequest{Number: "12345-abc@g.us", Message: "hi"},
			wantTarget: "12345-abc@g.us",
			wantSent:   true,
		},
		{
			name:       "explicit chat id",
			ready:      true,
			req:        TextRequest{ChatID: "99@g.us", Number: "628", Message: "hi"},
			wantTarget: "99@g.us",
			wantSent:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &mockSession{sendErr: tt.sendErr}
			s, _, _ := newTestSender(tt.ready, session, SenderConfig{})

			target, err := s.SendText(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SendText() error = %v, want %v", err, tt.wantErr)
			}
			if target != tt.wantTarget {
				t.Errorf("target = %q, want %q", target, tt.wantTarget)
			}
			texts := session.Texts()
			if tt.wantSent != (len(texts) == 1) {
				t.Fatalf("sent = %v, want %v", texts, tt.wantSent)
			}
			if tt.wantSent && (texts[0].target != tt.wantTarget || texts[0].text != tt.req.Message) {
				t.Errorf("sent %+v", texts[0])
			}
		})
	}
}

func TestSender_SendTextTransportFailure(t *testing.T) {
	session := &mockSession{sendErr: errTransport}
	s, history, emitter := newTestSender(true, session, SenderConfig{})

	_, err := s.SendText(context.Background(), TextRequest{Number: "628", Message: "hi"})

	var sendErr *domain.SendError
	if !errors.As(err, &sendErr) {
		t.Fatalf("error = %v, want *domain.SendError", err)
	}
	if sendErr.Error() != "transport closed" || sendErr.Target != "628@c.us" {
		t.Errorf("send error = %q target %q", sendErr.Error(), sendErr.Target)
	}
	if !errors.Is(err, errTransport) {
		t.Error("send error does not unwrap to the transport error")
	}
	if !history.Contains("Error sending message to 628@c.us: transport closed") {
		t.Errorf("history = %v", history.Lines())
	}
	if len(emitter.failures) != 1 || emitter.failures[0] != "text" {
		t.Errorf("failures = %v", emitter.failures)
	}
}

func TestSender_SendTextTimeout(t *testing.T) {
	session := &mockSession{block: true}
	s, _, _ := newTestSender(true, session, SenderConfig{Timeout: 20 * time.Millisecond})

	start := time.Now()
	_, err := s.SendText(context.Background(), TextRequest{Number: "628", Message: "hi"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("timeout not applied")
	}
}

func TestSender_SendFile(t *testing.T) {
	small := &fakeUpload{name: "report.pdf", data: []byte("%PDF-1.4")}

	tests := []struct {
		name     string
		ready    bool
		req      FileRequest
		sendErr  error
		wantErr  error
		wantSent bool
	}{
		{"not ready", false, FileRequest{Number: "628", File: small}, nil, domain.ErrNotReady, false},
		{"missing target checked before file", true, FileRequest{}, nil, domain.ErrMissingTarget, false},
		{"missing target with file", true, FileRequest{File: small}, nil, domain.ErrMissingTarget, false},
		{"missing file", true, FileRequest{Number: "628"}, nil, domain.ErrMissingFile, false},
		{"too large", true, FileRequest{Number: "628", File: &fakeUpload{name: "big.zip", size: MaxUploadBytes + 1}}, nil, domain.ErrPayloadTooLarge, false},
		{"exactly at limit", true, FileRequest{Number: "628", File: &fakeUpload{name: "edge.bin", data: make([]byte, 16), size: MaxUploadBytes}}, nil, nil, true},
		{"delivered", true, FileRequest{ChatID: "1-2@g.us", File: small}, nil, nil, true},
		{"transport failure", true, FileRequest{Number: "628", File: small}, errTransport, errTransport, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &mockSession{sendErr: tt.sendErr}
			s, _, _ := newTestSender(tt.ready, session, SenderConfig{})

			_, err := s.SendFile(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SendFile() error = %v, want %v", err, tt.wantErr)
			}
			if got := len(session.Media()) == 1; got != tt.wantSent {
				t.Fatalf("sent = %v, want %v", got, tt.wantSent)
			}
		})
	}
}

func TestSender_SendFileBuildsMedia(t *testing.T) {
	session := &mockSession{}
	s, history, _ := newTestSender(true, session, SenderConfig{})

	_, err := s.SendFile(context.Background(), FileRequest{
		Number: "6281234567890",
		File:   &fakeUpload{name: "Photo.JPG", data: []byte{0xff, 0xd8, 0xff}},
	})
	if err != nil {
		t.Fatalf("SendFile: %v", err)
	}

	media := session.Media()
	if len(media) != 1 {
		t.Fatalf("got %d media sends", len(media))
	}
	m := media[0]
	if m.target != "6281234567890@c.us" {
		t.Errorf("target = %q", m.target)
	}
	if m.media.ContentType != "image/jpeg" || m.media.Filename != "Photo.JPG" || m.media.Data != "/9j/" {
		t.Errorf("media = %+v", m.media)
	}
	if !history.Contains("File sent to 6281234567890@c.us: Photo.JPG (0.00 MB)") {
		t.Errorf("history = %v", history.Lines())
	}
}

func TestSender_CustomUploadLimit(t *testing.T) {
	s, _, _ := newTestSender(true, &mockSession{}, SenderConfig{MaxUploadBytes: 4})
	if s.MaxUploadBytes() != 4 {
		t.Fatalf("MaxUploadBytes() = %d", s.MaxUploadBytes())
	}
	_, err := s.SendFile(context.Background(), FileRequest{Number: "1", File: &fakeUpload{name: "a.txt", data: []byte("12345")}})
	if !errors.Is(err, domain.ErrPayloadTooLarge) {
		t.Errorf("error = %v, want ErrPayloadTooLarge", err)
	}
}
