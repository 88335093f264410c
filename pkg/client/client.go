package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// HTTPClient abstracts HTTP request execution for testing and custom transports.
// The standard *http.Client satisfies this interface.
type HTTPClient interface {
	// Do sends an HTTP request and returns an HTTP response.
	Do(req *http.Request) (*http.Response, error)
}

// TextMessage is the body of POST /send. Set ChatID or Number.
type TextMessage struct {
	ChatID  string `json:"chatId,omitempty"`
	Number  string `json:"number,omitempty"`
	Message string `json:"message"`
}

// FileMessage describes a file upload. Content is streamed, not buffered.
type FileMessage struct {
	ChatID   string
	Number   string
	Filename string
	Content  io.Reader
}

// APIError is a non-2xx response from the bridge.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("wabridge returned %d", e.StatusCode)
	}
	return fmt.Sprintf("wabridge returned %d: %s", e.StatusCode, e.Message)
}

// IsNotReady reports whether err is the bridge saying its session is not
// usable (503).
func IsNotReady(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport.
func WithHTTPClient(h HTTPClient) Option {
	return func(c *Client) { c.http = h }
}

// Client talks to one bridge.
type Client struct {
	baseURL string
	http    HTTPClient
}

// New creates a client for the bridge at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status returns the bridge's readiness.
func (c *Client) Status(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return false, err
	}

	var status struct {
		Ready bool `json:"ready"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return false, fmt.Errorf("decode status: %w", err)
	}
	return status.Ready, nil
}

// SendText asks the bridge to deliver a text message. It returns the
// bridge's acknowledgement text.
func (c *Client) SendText(ctx context.Context, msg TextMessage) (string, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doText(req)
}

// SendFile uploads a file for delivery. The multipart body is streamed from
// msg.Content.
func (c *Client) SendFile(ctx context.Context, msg FileMessage) (string, error) {
	if msg.Content == nil {
		return "", errors.New("file content is required")
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeFileForm(writer, msg))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/file", pr)
	if err != nil {
		_ = pr.Close()
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	ack, err := c.doText(req)
	_ = pr.Close()
	return ack, err
}

func writeFileForm(writer *multipart.Writer, msg FileMessage) error {
	fields := []struct{ name, value string }{
		{"chatId", msg.ChatID},
		{"number", msg.Number},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := writer.WriteField(f.name, f.value); err != nil {
			return fmt.Errorf("write %s field: %w", f.name, err)
		}
	}

	filePart, err := writer.CreateFormFile("file", filepath.Base(msg.Filename))
	if err != nil {
		return fmt.Errorf("create file field: %w", err)
	}
	if _, err := io.Copy(filePart, msg.Content); err != nil {
		return fmt.Errorf("write file data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize multipart: %w", err)
	}
	return nil
}

func (c *Client) doText(req *http.Request) (string, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return "", err
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func checkResponse(resp *http.Response) error {
	if resp.StatusCode/100 == 2 {
		return nil
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(b))}
}
