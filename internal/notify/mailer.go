package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
)

// ErrDeliveryFailed wraps any mail dispatch failure. A failed notification
// aborts the application submission that triggered it.
var ErrDeliveryFailed = errors.New("notification delivery failed")

// Message is one outbound email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Mailer sends notification emails.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers via a plain SMTP relay. The pack carries no mail
// library, so this wraps net/smtp the way the messaging producer wraps NATS.
type SMTPMailer struct {
	addr     string
	username string
	password string
	host     string
}

func NewSMTPMailer(host, port, username, password string) *SMTPMailer {
	return &SMTPMailer{
		addr:     fmt.Sprintf("%s:%s", host, port),
		username: username,
		password: password,
		host:     host,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(msg.Body)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	if err := smtp.SendMail(m.addr, auth, msg.From, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}
