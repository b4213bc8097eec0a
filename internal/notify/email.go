package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// EmailSender delivers notifications over SMTP
type EmailSender struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewEmailSender(host string, port int, username, password, from string) *EmailSender {
	return &EmailSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (s *EmailSender) Send(ctx context.Context, n Notification) error {
	if n.To == "" {
		return fmt.Errorf("email %s: missing recipient", n.Kind)
	}

	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("email %s: invalid sender: %w", n.Kind, err)
	}
	if err := msg.To(n.To); err != nil {
		return fmt.Errorf("email %s: invalid recipient: %w", n.Kind, err)
	}
	msg.Subject(n.Subject)
	msg.SetBodyString(mail.TypeTextHTML, n.Body)

	client, err := mail.NewClient(s.host, s.options()...)
	if err != nil {
		return fmt.Errorf("email %s: smtp client: %w", n.Kind, err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("email %s: send: %w", n.Kind, err)
	}
	return nil
}

func (s *EmailSender) options() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.username),
			mail.WithPassword(s.password),
		)
	}
	return opts
}
