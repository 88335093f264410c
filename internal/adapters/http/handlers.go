package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/bft-labs/wabridge/internal/adapters/fs"
	"github.com/bft-labs/wabridge/internal/app"
	"github.com/bft-labs/wabridge/internal/domain"
	"github.com/bft-labs/wabridge/internal/ports"
)

const (
	// maxJSONBody bounds /send bodies.
	maxJSONBody = 1 << 20
	// maxFieldBytes bounds each non-file multipart field.
	maxFieldBytes = 4 << 10
)

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Ready bool `json:"ready"`
}

// SendRequest is the body of POST /send.
type SendRequest struct {
	Number  string `json:"number,omitempty"`
	ChatID  string `json:"chatId,omitempty"`
	Message string `json:"message,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Ready: s.sender.Ready()})
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var body SendRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&body); err != nil {
		// Unparseable bodies are treated as empty.
		body = SendRequest{}
	}

	_, err := s.sender.SendText(r.Context(), app.TextRequest{
		ChatID:  body.ChatID,
		Number:  body.Number,
		Message: body.Message,
	})

	var sendErr *domain.SendError
	switch {
	case err == nil:
		writeText(w, http.StatusOK, "Message sent!")
	case errors.Is(err, domain.ErrNotReady):
		writeText(w, http.StatusServiceUnavailable, "WhatsApp client not ready yet")
	case errors.Is(err, domain.ErrMissingMessage):
		writeText(w, http.StatusBadRequest, "Missing message")
	case errors.Is(err, domain.ErrMissingTarget):
		writeText(w, http.StatusBadRequest, "Provide either chatId or number")
	case errors.As(err, &sendErr):
		writeText(w, http.StatusInternalServerError, "Error sending message: "+sendErr.Error())
	default:
		writeText(w, http.StatusInternalServerError, "Error sending message: "+err.Error())
	}
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	// Reject before touching the body.
	if err := s.sender.RequireReady("File"); err != nil {
		writeText(w, http.StatusServiceUnavailable, "WhatsApp client not ready yet")
		return
	}

	form, err := s.readFileForm(r)
	if form.upload != nil {
		defer func() {
			if err := form.upload.Remove(); err != nil {
				s.logger.Warn("remove staged upload failed", ports.String("path", form.upload.Path()), ports.Err(err))
			}
		}()
	}
	if err != nil {
		s.logger.Error("stage upload failed", ports.Err(err))
		writeText(w, http.StatusInternalServerError, "Failed to receive file")
		return
	}

	req := app.FileRequest{ChatID: form.chatID, Number: form.number}
	if form.upload != nil {
		req.File = form.upload
	}

	_, err = s.sender.SendFile(r.Context(), req)

	var sendErr *domain.SendError
	switch {
	case err == nil:
		writeText(w, http.StatusOK, "File sent!")
	case errors.Is(err, domain.ErrNotReady):
		writeText(w, http.StatusServiceUnavailable, "WhatsApp client not ready yet")
	case errors.Is(err, domain.ErrMissingTarget):
		writeText(w, http.StatusBadRequest, "Provide chatId or number")
	case errors.Is(err, domain.ErrMissingFile):
		writeText(w, http.StatusBadRequest, "Missing file")
	case errors.Is(err, domain.ErrPayloadTooLarge):
		writeText(w, http.StatusRequestEntityTooLarge, "File too large")
	case errors.As(err, &sendErr):
		writeText(w, http.StatusInternalServerError, "Failed to send file: "+sendErr.Error())
	default:
		writeText(w, http.StatusInternalServerError, "Failed to send file: "+err.Error())
	}
}

type fileForm struct {
	chatID string
	number string
	upload *fs.StagedUpload
}

// readFileForm streams the multipart body. The first "file" part is staged to
// disk, capped just past the upload limit; other parts are read as short text
// fields. A body that is not multipart yields an empty form. The returned
// form may hold a staged upload even when err is non-nil.
func (s *Server) readFileForm(r *http.Request) (fileForm, error) {
	var form fileForm

	mr, err := r.MultipartReader()
	if err != nil {
		return form, nil
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return form, nil
		}
		if err != nil {
			// Truncated or malformed body: keep what was read.
			s.logger.Warn("malformed multipart body", ports.Err(err))
			return form, nil
		}

		switch {
		case part.FormName() == "file" && part.FileName() != "" && form.upload == nil:
			up, err := s.staging.Stage(part, part.FileName(), s.sender.MaxUploadBytes())
			if err != nil {
				_ = part.Close()
				return form, err
			}
			form.upload = up
		case part.FormName() == "chatId":
			form.chatID = readField(part)
		case part.FormName() == "number":
			form.number = readField(part)
		}
		_ = part.Close()
	}
}

func readField(part *multipart.Part) string {
	b, _ := io.ReadAll(io.LimitReader(part, maxFieldBytes))
	return string(b)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}
