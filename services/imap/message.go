package imap

import (
	"bytes"
	"encoding/base64"

	"github.com/jhillyerd/enmime"
	"github.com/pkg/errors"

	"github.com/customeros/fresh/internal/models"
)

// parseMessage turns a raw RFC 822 message into the part tree the Gmail
// API returns, with transfer encodings undone and bodies re-encoded as
// URL-safe base64.
func parseMessage(id string, raw []byte) (*models.Message, error) {
	envelope, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "parsing message")
	}
	return &models.Message{
		ID:       id,
		ThreadID: envelope.GetHeader("Message-Id"),
		Payload:  convertPart(envelope.Root),
	}, nil
}

func convertPart(part *enmime.Part) *models.Part {
	if part == nil {
		return nil
	}
	out := &models.Part{MimeType: part.ContentType}
	if len(part.Content) > 0 {
		out.Data = base64.URLEncoding.EncodeToString(part.Content)
	}
	for child := part.FirstChild; child != nil; child = child.NextSibling {
		out.Parts = append(out.Parts, convertPart(child))
	}
	return out
}
