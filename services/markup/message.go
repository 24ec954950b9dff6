package markup

import (
	"encoding/base64"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	er "github.com/customeros/fresh/internal/errors"
	"github.com/customeros/fresh/internal/models"
)

// Gmail sends URL-safe base64, often unpadded; IMAP-derived parts may use
// the standard alphabet.
var bodyEncodings = []*base64.Encoding{
	base64.URLEncoding,
	base64.RawURLEncoding,
	base64.StdEncoding,
	base64.RawStdEncoding,
}

// DecodeMessagePart returns the text of the first part with exactly the
// given MIME type (payload first, then its direct children).
func DecodeMessagePart(message *models.Message, mimeType string) (string, error) {
	part := message.FindPart(mimeType)
	if part == nil || part.Data == "" {
		return "", er.MissingPart(mimeType)
	}

	raw, err := decodeBase64(part.Data)
	if err != nil {
		return "", er.Decode(mimeType, err)
	}
	if !utf8.Valid(raw) {
		return "", er.Decode(mimeType, errors.New("body is not valid utf-8"))
	}
	return string(raw), nil
}

func decodeBase64(data string) ([]byte, error) {
	data = strings.TrimSpace(data)
	var lastErr error
	for _, encoding := range bodyEncodings {
		raw, err := encoding.DecodeString(data)
		if err == nil {
			return raw, nil
		}
		lastErr = err
	}
	return nil, errors.Wrap(lastErr, "invalid base64 body")
}

// CaptureFirstGroup returns capture group 1 of the first match of pattern
// in text.
func CaptureFirstGroup(pattern, text string) (string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", er.PatternMismatch(pattern, err)
	}
	if re.NumSubexp() < 1 {
		return "", er.PatternMismatch(pattern, errors.New("pattern has no capture group"))
	}
	match := re.FindStringSubmatch(text)
	if match == nil {
		return "", er.PatternMismatch(pattern, nil)
	}
	return match[1], nil
}
