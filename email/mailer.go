package email

import "fmt"

// Notifier is what the auth controllers depend on; Mailer is the production
// implementation over an SMTP Sender.
type Notifier interface {
	SendVerificationEmail(to, rawToken string) error
	SendPasswordResetEmail(to, rawToken string) error
	SendOTPEmail(to, otp string) error
	SendWelcomeEmail(to, name string) error
}

type Mailer struct {
	sender  Sender
	baseURL string
}

func NewMailer(sender Sender, baseURL string) *Mailer {
	return &Mailer{sender: sender, baseURL: baseURL}
}

func (m *Mailer) SendVerificationEmail(to, rawToken string) error {
	verifyURL := fmt.Sprintf("%s/auth/verify-email?token=%s", m.baseURL, rawToken)
	body := fmt.Sprintf(`
		<h2>Verify your email</h2>
		<p>Click the link below to verify your account. The link expires in 2 hours.</p>
		<p><a href="%s">Verify my email</a></p>`, verifyURL)
	return m.sender.Send(to, "Verify your email", body)
}

func (m *Mailer) SendPasswordResetEmail(to, rawToken string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", m.baseURL, rawToken)
	body := fmt.Sprintf(`
		<h2>Reset your password</h2>
		<p>Click the link below to choose a new password. The link expires in 10 minutes.</p>
		<p><a href="%s">Reset my password</a></p>
		<p>If you did not request this, you can ignore this email.</p>`, resetURL)
	return m.sender.Send(to, "Password reset", body)
}

func (m *Mailer) SendOTPEmail(to, otp string) error {
	body := fmt.Sprintf(`
		<h2>Your login code</h2>
		<p>Use this code to finish signing in. It expires in 10 minutes.</p>
		<h1>%s</h1>`, otp)
	return m.sender.Send(to, "Your one-time login code", body)
}

func (m *Mailer) SendWelcomeEmail(to, name string) error {
	if name == "" {
		name = "there"
	}
	body := fmt.Sprintf(`
		<h2>Welcome, %s!</h2>
		<p>Your account is ready. You can now buy and sell with escrow protection.</p>`, name)
	return m.sender.Send(to, "Welcome aboard", body)
}
