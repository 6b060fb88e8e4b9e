package mail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chineseneo/fuel-bot/internal/common"
)

func TestNewFallsBackToMockWhenIncomplete(t *testing.T) {
	log := common.NewSilentLogger()

	m := New(Config{Provider: "smtp"}, log)
	assert.IsType(t, &MockMailer{}, m)

	m = New(Config{Provider: "mailgun", Sender: "a@b.c"}, log)
	assert.IsType(t, &MockMailer{}, m)

	m = New(Config{Provider: "anything"}, log)
	assert.IsType(t, &MockMailer{}, m)
}

func TestNewSelectsConfiguredProvider(t *testing.T) {
	log := common.NewSilentLogger()

	m := New(Config{
		Provider:    "smtp",
		SMTPServer:  "smtp.gmail.com",
		SMTPPort:    587,
		Sender:      "bot@example.com",
		Recipient:   "me@example.com",
		AppPassword: "secret",
	}, log)
	assert.IsType(t, &SMTPMailer{}, m)

	m = New(Config{
		Provider:      "mailgun",
		MailgunDomain: "mg.example.com",
		MailgunAPIKey: "key",
		Sender:        "bot@example.com",
		Recipient:     "me@example.com",
	}, log)
	assert.IsType(t, &MailgunMailer{}, m)
}

func TestBuildMessagePlainText(t *testing.T) {
	msg, err := buildMessage("bot@example.com", "me@example.com", "Daily U98 Fuel Prices - Wantirna South", "body text", nil, "")
	require.NoError(t, err)

	s := string(msg)
	assert.Contains(t, s, "From: bot@example.com\r\n")
	assert.Contains(t, s, "To: me@example.com\r\n")
	assert.Contains(t, s, "Subject: Daily U98 Fuel Prices - Wantirna South\r\n")
	assert.Contains(t, s, "Content-Type: text/plain")
	assert.True(t, strings.HasSuffix(s, "body text"))
	assert.NotContains(t, s, "multipart/mixed")
}

func TestBuildMessageWithAttachment(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0, 1, 2, 3}

	msg, err := buildMessage("bot@example.com", "me@example.com", "subject", "body", png, "fuel-trend.png")
	require.NoError(t, err)

	s := string(msg)
	assert.Contains(t, s, "multipart/mixed")
	assert.Contains(t, s, "Content-Type: image/png")
	assert.Contains(t, s, "Content-Transfer-Encoding: base64")
	assert.Contains(t, s, `filename="fuel-trend.png"`)
	assert.Contains(t, s, "body")
}

func TestMockMailerAlwaysSucceeds(t *testing.T) {
	m := &MockMailer{logger: common.NewSilentLogger()}
	assert.NoError(t, m.Send("s", "b", nil, ""))
}
