package utils

import (
	"fmt"
	"io"

	"solar-proposal-backend/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Attachment is an in-memory file attached to an outgoing email.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Mailer sends transactional emails.
type Mailer interface {
	Send(to, subject, htmlBody string, attachments ...Attachment) error
}

// SMTPMailer delivers through gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// InitializeMailer sets up the mailer using environment variables
func InitializeMailer() *SMTPMailer {
	host := config.GetEnv("SMTP_HOST")
	port := config.GetEnvInt("SMTP_PORT", 587)

	dialer := gomail.NewDialer(host, port, config.GetEnv("SMTP_USER"), config.GetEnv("SMTP_PASSWORD"))
	config.Logger.Info("Mailer initialized", zap.String("host", host), zap.Int("port", port))

	return &SMTPMailer{
		dialer: dialer,
		from:   config.GetEnvDefault("MAIL_FROM", "contato@solarpro.com.br"),
	}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string, attachments ...Attachment) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	for _, a := range attachments {
		data := a.Data
		msg.Attach(a.Name,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}),
		)
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		config.Logger.Error("Email send failed",
			zap.String("to_email", to),
			zap.String("subject", subject),
			zap.Int("attachments", len(attachments)),
			zap.Error(err),
		)
		return fmt.Errorf("send email to %s: %w", to, err)
	}

	config.Logger.Info("Email sent", zap.String("to_email", to), zap.String("subject", subject))
	return nil
}
