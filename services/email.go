package services

import (
	"fmt"
	"net/smtp"

	"cleanup-platform/utils"
)

// Mailer sends emails.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

type smtpMailer struct {
	host     string
	port     string
	from     string
	username string
	password string
}

func NewSMTPMailer() Mailer {
	return &smtpMailer{
		host:     utils.Env("SMTP_HOST", "localhost"),
		port:     utils.Env("SMTP_PORT", "587"),
		from:     utils.Env("SMTP_FROM", "noreply@cleanup.local"),
		username: utils.Env("SMTP_USERNAME", ""),
		password: utils.Env("SMTP_PASSWORD", ""),
	}
}

func (m *smtpMailer) SendEmail(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}
