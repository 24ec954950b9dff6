package markup

import (
	"encoding/base64"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	er "github.com/customeros/fresh/internal/errors"
	"github.com/customeros/fresh/internal/models"
)

func gmailData(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func multipart(parts ...*models.Part) *models.Message {
	return &models.Message{ID: "m1", Payload: &models.Part{MimeType: "multipart/alternative", Parts: parts}}
}

func TestDecodeMessagePart(t *testing.T) {
	msg := multipart(
		&models.Part{MimeType: "text/html", Data: gmailData("<p>html</p>")},
		&models.Part{MimeType: "text/plain", Data: gmailData("reset: https://lobste.rs/login/set_new_password?token=a-b?c")},
	)

	text, err := DecodeMessagePart(msg, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "reset: https://lobste.rs/login/set_new_password?token=a-b?c", text)

	again, err := DecodeMessagePart(msg, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, text, again)
}

func TestDecodeMessagePart_PayloadFirst(t *testing.T) {
	msg := &models.Message{Payload: &models.Part{MimeType: "text/plain", Data: base64.StdEncoding.EncodeToString([]byte("single"))}}

	text, err := DecodeMessagePart(msg, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "single", text)
}

func TestDecodeMessagePart_Failures(t *testing.T) {
	_, err := DecodeMessagePart(multipart(&models.Part{MimeType: "text/html", Data: gmailData("x")}), "text/plain")
	assert.Equal(t, er.KindMissingPart, er.KindOf(err))

	_, err = DecodeMessagePart(multipart(&models.Part{MimeType: "text/plain", Data: "!!!not base64!!!"}), "text/plain")
	assert.Equal(t, er.KindDecode, er.KindOf(err))

	_, err = DecodeMessagePart(multipart(&models.Part{MimeType: "text/plain", Data: gmailData("\xff\xfe")}), "text/plain")
	assert.Equal(t, er.KindDecode, er.KindOf(err))
}

func TestCaptureFirstGroup(t *testing.T) {
	token, err := CaptureFirstGroup(`fnid=([A-Za-z0-9]+)`, "visit https://news.ycombinator.com/x?fnid=XyZ9&s=1 now")
	require.NoError(t, err)
	assert.Equal(t, "XyZ9", token)

	_, err = CaptureFirstGroup(`fnid=([A-Za-z0-9]+)`, "nothing here")
	assert.Equal(t, er.KindPatternMismatch, er.KindOf(err))

	_, err = CaptureFirstGroup(`(`, "anything")
	assert.Equal(t, er.KindPatternMismatch, er.KindOf(err))
}

func TestCaptureFirstGroup_PatternWithoutGroup(t *testing.T) {
	assert.NotPanics(t, func() {
		_, err := CaptureFirstGroup(`token=[a-z0-9]+`, "token=abc")
		assert.Equal(t, er.KindPatternMismatch, er.KindOf(err))
	})
}

func TestCaptureFirstGroup_RoundTrip(t *testing.T) {
	for _, s := range []string{"a", "XyZ9", "token-with-dashes", "1234567890abcdef"} {
		pattern := "<<(" + regexp.QuoteMeta(s) + ")>>"
		got, err := CaptureFirstGroup(pattern, "prefix <<"+s+">> suffix")
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}
