package mailer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wneessen/go-mail"

	"example.com/foodbridge/services/donation/config"
)

// Mailer sends a single email. Implementations are best-effort transports;
// callers decide what a failure means.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPMailer implements Mailer over an authenticated SMTP relay
type SMTPMailer struct {
	client  *mail.Client
	from    string
	enabled bool
}

// NewSMTPMailer creates a new SMTP mailer. Without a configured host the
// mailer is disabled and sends fail, which leaves queued notifications for
// redelivery once mail is configured.
func NewSMTPMailer(cfg config.SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" {
		log.Warn().Msg("SMTP host not configured, mail delivery disabled")
		return &SMTPMailer{enabled: false}, nil
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create SMTP client")
	}

	return &SMTPMailer{
		client:  client,
		from:    cfg.From,
		enabled: true,
	}, nil
}

// Send sends a single HTML email
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if !m.enabled {
		return errors.New("mail delivery is disabled")
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return errors.Wrap(err, "invalid from address")
	}
	if err := msg.To(to); err != nil {
		return errors.Wrap(err, "invalid recipient address")
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return errors.Wrap(err, "failed to send email")
	}

	return nil
}
