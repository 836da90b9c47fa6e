package smtp

import (
	"fmt"
	"net/smtp"

	"github.com/go-bazaar-nosql/internal/config"
)

// Mailer sends the transactional emails the platform needs. Failures surface
// to the caller; nothing is retried here.
type Mailer interface {
	SendWelcomeEmail(to, name string) error
	SendOTPEmail(to, code string) error
	SendPasswordResetEmail(to, token string) error
}

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

func (m *mailer) SendWelcomeEmail(to, name string) error {
	body := fmt.Sprintf("Hi %s,\r\n\r\nYour account has been created. Welcome aboard!", name)
	return m.send(to, "Welcome", body)
}

func (m *mailer) SendOTPEmail(to, code string) error {
	body := fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code)
	return m.send(to, "Your verification code", body)
}

func (m *mailer) SendPasswordResetEmail(to, token string) error {
	body := fmt.Sprintf("Use this token to reset your password: %s\r\n\r\nIt expires in 1 hour. If you did not request a reset, ignore this email.", token)
	return m.send(to, "Password reset", body)
}

func (m *mailer) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}
