package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"gamehub/internal/platform/config"
)

// Dispatcher delivers outbound mail. The auth flows treat any error as a
// dispatch failure and surface it to the caller; they never swallow it.
type Dispatcher interface {
	Send(to, subject, htmlBody string) error
}

type smtpDispatcher struct {
	host string
	port string
	user string
	pass string
	from string
}

func NewSMTPDispatcher(cfg *config.Config) Dispatcher {
	return &smtpDispatcher{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPassword,
		from: cfg.SMTPFrom,
	}
}

func (d *smtpDispatcher) Send(to, subject, htmlBody string) error {
	var msg strings.Builder
	msg.WriteString("From: " + d.from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	var auth smtp.Auth
	if d.user != "" {
		auth = smtp.PlainAuth("", d.user, d.pass, d.host)
	}
	addr := d.host + ":" + d.port
	if err := smtp.SendMail(addr, auth, d.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("mailer.Send to %s: %w", to, err)
	}
	return nil
}
