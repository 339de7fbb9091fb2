package mailbox

import (
	"encoding/base64"
	"io"
	"mime"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"testing"

	"github.com/ethanbaker/office-assistant/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeRaw reverses Raw and parses the resulting RFC 5322 message
func decodeRaw(t *testing.T, raw string) (*mail.Message, string, string) {
	t.Helper()

	text, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)

	msg, err := mail.ReadMessage(strings.NewReader(string(text)))
	require.NoError(t, err)

	body, err := io.ReadAll(quotedprintable.NewReader(msg.Body))
	require.NoError(t, err)

	return msg, string(body), string(text)
}

func TestMessageRaw(t *testing.T) {
	raw, err := Message{
		Recipient: "anna@example.com",
		Subject:   "Quarterly review",
		Body:      "Hi Anna,\nsee you on Thursday.",
	}.Raw()
	require.NoError(t, err)

	assert.NotContains(t, raw, "+")
	assert.NotContains(t, raw, "/")

	msg, body, text := decodeRaw(t, raw)
	assert.Equal(t, "<anna@example.com>", msg.Header.Get("To"))
	assert.Equal(t, "Quarterly review", msg.Header.Get("Subject"))
	assert.Equal(t, "1.0", msg.Header.Get("MIME-Version"))
	assert.Equal(t, `text/plain; charset="utf-8"`, msg.Header.Get("Content-Type"))
	assert.Equal(t, "Hi Anna,\r\nsee you on Thursday.\r\n", body)

	for _, line := range strings.SplitAfter(text, "\n") {
		if line != "" {
			assert.True(t, strings.HasSuffix(line, "\r\n"), "line %q must end in CRLF", line)
		}
	}
}

func TestMessageRawEncodesNonASCII(t *testing.T) {
	raw, err := Message{
		Recipient: "Jürgen Müller <juergen@example.com>",
		Subject:   "Grüße aus Wien",
		Body:      "Schöne Grüße",
	}.Raw()
	require.NoError(t, err)

	msg, body, text := decodeRaw(t, raw)
	assert.NotContains(t, text, "Grüße aus Wien", "non-ASCII headers must be encoded")

	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Grüße aus Wien", subject)

	to, err := msg.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 1)
	assert.Equal(t, "Jürgen Müller", to[0].Name)
	assert.Equal(t, "juergen@example.com", to[0].Address)

	assert.Equal(t, "Schöne Grüße\r\n", body)
}

func TestMessageRawValidation(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{"empty recipient", Message{Recipient: "", Subject: "s", Body: "b"}},
		{"not an address", Message{Recipient: "anna at example", Subject: "s", Body: "b"}},
		{"header injection", Message{Recipient: "anna@example.com", Subject: "hi\r\nBcc: eve@example.com", Body: "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.msg.Raw()
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestMessageRawDraft(t *testing.T) {
	tests := []struct {
		name      string
		recipient string
		to        string
	}{
		{"address", "anna@example.com", "<anna@example.com>"},
		{"bare name", "Anna", "Anna"},
		{"name with spaces", "  Anna Berger ", "Anna Berger"},
		{"non-ascii name", "Jürgen", "=?utf-8?q?J=C3=BCrgen?="},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Message{Recipient: tt.recipient, Subject: "Draft", Body: "b"}.RawDraft()
			require.NoError(t, err)

			msg, body, _ := decodeRaw(t, raw)
			assert.Equal(t, tt.to, msg.Header.Get("To"))
			assert.Equal(t, "Draft", msg.Header.Get("Subject"))
			assert.Equal(t, "b\r\n", body)
		})
	}
}

func TestMessageRawDraftValidation(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{"recipient injection", Message{Recipient: "Anna\r\nBcc: eve@example.com", Subject: "s", Body: "b"}},
		{"subject injection", Message{Recipient: "Anna", Subject: "hi\nBcc: eve@example.com", Body: "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.msg.RawDraft()
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}
