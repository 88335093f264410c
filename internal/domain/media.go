package domain

import (
	"encoding/base64"
	"strings"
)

// Media is a file payload addressed to the session client.
// Data holds the file contents encoded as standard base64.
type Media struct {
	ContentType string
	Data        string
	Filename    string
}

// NewMedia builds a Media from raw file contents, inferring the content type
// from filename.
func NewMedia(raw []byte, filename string) Media {
	return Media{
		ContentType: ContentTypeFor(filename),
		Data:        base64.StdEncoding.EncodeToString(raw),
		Filename:    filename,
	}
}

// Bytes decodes Data back into the raw file contents.
func (m Media) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(m.Data)
}

// IsImage reports whether the payload is an image the protocol can show inline.
func (m Media) IsImage() bool {
	return strings.HasPrefix(m.ContentType, "image/")
}
