package mailbox

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/ethanbaker/office-assistant/internal/apperrors"
)

// Message is a plain-text email to draft or send
type Message struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// Raw renders the message as RFC 5322 text with CRLF line endings and returns
// it base64url encoded, the form the Gmail API expects. The recipient must
// parse as an address list
func (m Message) Raw() (string, error) {
	to, err := addressList(m.Recipient)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrValidation, err, "recipient %q", m.Recipient)
	}
	return m.render(to)
}

// RawDraft renders the message like Raw but keeps a recipient that is not an
// address list, such as a bare name, as written. Drafts are finished by hand
// in the mail client before sending
func (m Message) RawDraft() (string, error) {
	to, err := addressList(m.Recipient)
	if err != nil {
		if strings.ContainsAny(m.Recipient, "\r\n") {
			return "", apperrors.New(apperrors.ErrValidation, "recipient contains a line break")
		}
		to = mime.QEncoding.Encode("utf-8", strings.TrimSpace(m.Recipient))
	}
	return m.render(to)
}

// addressList parses and re-encodes a comma separated list of addresses
func addressList(value string) (string, error) {
	addresses, err := mail.ParseAddressList(value)
	if err != nil {
		return "", err
	}

	recipients := make([]string, 0, len(addresses))
	for _, address := range addresses {
		recipients = append(recipients, address.String())
	}
	return strings.Join(recipients, ", "), nil
}

// render writes the headers and quoted-printable body for an encoded To value.
// An empty value leaves the To header out
func (m Message) render(to string) (string, error) {
	if strings.ContainsAny(m.Subject, "\r\n") {
		return "", apperrors.New(apperrors.ErrValidation, "subject contains a line break")
	}

	var buf bytes.Buffer
	if to != "" {
		fmt.Fprintf(&buf, "To: %s\r\n", to)
	}
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	buf.WriteString("\r\n")

	body := quotedprintable.NewWriter(&buf)
	if _, err := body.Write([]byte(normalizeNewlines(m.Body))); err != nil {
		return "", fmt.Errorf("encode body: %w", err)
	}
	if err := body.Close(); err != nil {
		return "", fmt.Errorf("encode body: %w", err)
	}

	return base64.URLEncoding.EncodeToString(buf.Bytes()), nil
}

// normalizeNewlines converts every line ending to CRLF and terminates the text
func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return strings.ReplaceAll(text, "\n", "\r\n")
}
