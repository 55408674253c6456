package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/ghalamif/QCFlow/internal/domain"
	"github.com/ghalamif/QCFlow/internal/ports"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier mails the alarm payload through a relay that needs no auth.
type SMTPNotifier struct {
	addr string
	send sendFunc
}

func NewSMTPNotifier(addr string) *SMTPNotifier {
	return &SMTPNotifier{addr: addr, send: smtp.SendMail}
}

func (s *SMTPNotifier) Name() string { return "smtp" }

func (s *SMTPNotifier) Notify(ctx context.Context, n ports.Notification) error {
	if err := ctx.Err(); err != nil {
		return &domain.NotifyError{Transport: s.Name(), Err: err}
	}
	if len(n.Recipients) == 0 {
		return &domain.NotifyError{Transport: s.Name(), Err: fmt.Errorf("no recipients")}
	}
	if err := s.send(s.addr, nil, n.Sender, n.Recipients, Message(n)); err != nil {
		return &domain.NotifyError{Transport: s.Name(), Err: err}
	}
	return nil
}

// Message renders n as a plain text mail.
func Message(n ports.Notification) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.Sender)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(n.Recipients, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", n.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(string(n.Payload), "\n", "\r\n"))
	return []byte(b.String())
}

var _ ports.Notifier = (*SMTPNotifier)(nil)
