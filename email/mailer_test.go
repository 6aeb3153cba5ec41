package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMail struct {
	to, subject, body string
}

type captureSender struct {
	sent []capturedMail
}

func (s *captureSender) Send(to, subject, htmlBody string) error {
	s.sent = append(s.sent, capturedMail{to: to, subject: subject, body: htmlBody})
	return nil
}

func TestVerificationEmailLinksRawToken(t *testing.T) {
	sender := &captureSender{}
	mailer := NewMailer(sender, "https://app.example.com")

	require.NoError(t, mailer.SendVerificationEmail("jane@example.com", "rawtok123"))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "jane@example.com", sender.sent[0].to)
	assert.Contains(t, sender.sent[0].body, "https://app.example.com/auth/verify-email?token=rawtok123")
}

func TestPasswordResetEmailLinksRawToken(t *testing.T) {
	sender := &captureSender{}
	mailer := NewMailer(sender, "https://app.example.com")

	require.NoError(t, mailer.SendPasswordResetEmail("jane@example.com", "rawtok123"))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].body, "https://app.example.com/reset-password?token=rawtok123")
}

func TestOTPEmailCarriesCode(t *testing.T) {
	sender := &captureSender{}
	mailer := NewMailer(sender, "https://app.example.com")

	require.NoError(t, mailer.SendOTPEmail("root@example.com", "482913"))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].body, "482913")
}
