// Package mail defines the outbound email capability consumed by the auth
// service. The capability is injected so tests can substitute a double.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
)

// Message is a single outbound HTML email.
type Message struct {
	From     string
	To       string
	Subject  string
	HTMLBody string
}

// Mailer sends a message. A nil return means delivery was confirmed by the
// transport; any error means no send should be assumed.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers mail over authenticated SMTP.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
}

var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates a mailer for the given SMTP endpoint.
func NewSMTPMailer(host, port, username, password string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, username: username, password: password}
}

// Send delivers the message synchronously. The SMTP client has no context
// support; ctx is checked up front so an already-cancelled request does not
// start a send.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body := []byte(fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n"+
		"%s\r\n", msg.From, msg.To, msg.Subject, msg.HTMLBody))

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	if err := smtp.SendMail(m.host+":"+m.port, auth, msg.From, []string{msg.To}, body); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
