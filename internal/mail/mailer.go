// Package mail sends the daily report. The provider is selected by
// configuration: authenticated SMTP, Mailgun, or a mock that only logs.
package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/chineseneo/fuel-bot/internal/common"
)

// Mailer sends one report email. Attachment may be nil for a text-only send.
type Mailer interface {
	Send(subject, body string, attachment []byte, filename string) error
}

// Config holds mail delivery settings.
type Config struct {
	Provider string // "smtp", "mailgun", or anything else for mock

	SMTPServer  string
	SMTPPort    int
	Sender      string
	Recipient   string
	AppPassword string

	MailgunDomain string
	MailgunAPIKey string
}

// New selects a Mailer implementation from config. Incomplete configuration
// falls back to the mock so a run never fails at construction time.
func New(cfg Config, logger *common.Logger) Mailer {
	switch strings.ToLower(cfg.Provider) {
	case "smtp":
		if cfg.SMTPServer == "" || cfg.Sender == "" || cfg.Recipient == "" || cfg.AppPassword == "" {
			logger.Warn().Msg("smtp configuration incomplete; falling back to mock mailer")
			return &MockMailer{logger: logger}
		}
		return &SMTPMailer{cfg: cfg, logger: logger}
	case "mailgun":
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.Sender == "" || cfg.Recipient == "" {
			logger.Warn().Msg("mailgun configuration incomplete; falling back to mock mailer")
			return &MockMailer{logger: logger}
		}
		mg := mailgun.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey)
		return &MailgunMailer{mg: mg, cfg: cfg, logger: logger}
	default:
		return &MockMailer{logger: logger}
	}
}

// SMTPMailer sends via authenticated SMTP (Gmail-style app password).
type SMTPMailer struct {
	cfg    Config
	logger *common.Logger
}

func (m *SMTPMailer) Send(subject, body string, attachment []byte, filename string) error {
	message, err := buildMessage(m.cfg.Sender, m.cfg.Recipient, subject, body, attachment, filename)
	if err != nil {
		return fmt.Errorf("building mail message: %w", err)
	}

	auth := smtp.PlainAuth("", m.cfg.Sender, m.cfg.AppPassword, m.cfg.SMTPServer)
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPServer, m.cfg.SMTPPort)

	if err := smtp.SendMail(addr, auth, m.cfg.Sender, []string{m.cfg.Recipient}, message); err != nil {
		return fmt.Errorf("sending mail via smtp: %w", err)
	}

	m.logger.Info().Str("to", m.cfg.Recipient).Str("subject", subject).Msg("report sent via smtp")
	return nil
}

// buildMessage assembles an RFC 2045 message: plain text only, or
// multipart/mixed with a base64 PNG attachment.
func buildMessage(from, to, subject, body string, attachment []byte, filename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")

	if len(attachment) == 0 {
		fmt.Fprintf(&buf, "Content-Type: text/plain; charset=\"UTF-8\"\r\n")
		fmt.Fprintf(&buf, "\r\n%s", body)
		return buf.Bytes(), nil
	}

	writer := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", writer.Boundary())

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=\"UTF-8\"")
	textPart, err := writer.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	if _, err := textPart.Write([]byte(body)); err != nil {
		return nil, err
	}

	imageHeader := textproto.MIMEHeader{}
	imageHeader.Set("Content-Type", "image/png")
	imageHeader.Set("Content-Transfer-Encoding", "base64")
	imageHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	imagePart, err := writer.CreatePart(imageHeader)
	if err != nil {
		return nil, err
	}

	encoded := base64.StdEncoding.EncodeToString(attachment)
	for len(encoded) > 0 {
		n := 76
		if len(encoded) < n {
			n = len(encoded)
		}
		if _, err := imagePart.Write([]byte(encoded[:n] + "\r\n")); err != nil {
			return nil, err
		}
		encoded = encoded[n:]
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// MailgunMailer sends via the Mailgun API.
type MailgunMailer struct {
	mg     mailgun.Mailgun
	cfg    Config
	logger *common.Logger
}

func (m *MailgunMailer) Send(subject, body string, attachment []byte, filename string) error {
	message := m.mg.NewMessage(m.cfg.Sender, subject, body, m.cfg.Recipient)
	if len(attachment) > 0 {
		message.AddBufferAttachment(filename, attachment)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	resp, id, err := m.mg.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("mailgun send failed: %w (response: %s)", err, resp)
	}

	m.logger.Info().Str("to", m.cfg.Recipient).Str("id", id).Msg("report sent via mailgun")
	return nil
}

// MockMailer logs the report instead of sending it.
type MockMailer struct {
	logger *common.Logger
}

func (m *MockMailer) Send(subject, body string, attachment []byte, filename string) error {
	m.logger.Info().
		Str("subject", subject).
		Int("attachmentBytes", len(attachment)).
		Msg("mock mailer: would send report")
	m.logger.Info().Msg(body)
	return nil
}
