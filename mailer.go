package placement

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/wneessen/go-mail"
)

// Mailer delivers transactional mail. Implementations must be safe for
// concurrent use; the verifier sends from request goroutines.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer delivers mail through an authenticated SMTP relay.
type SMTPMailer struct {
	client *mail.Client
	from   string
}

// NewSMTPMailer builds a mailer from SMTP settings in the config.
func NewSMTPMailer(cfg *Config) (*SMTPMailer, error) {
	client, err := mail.NewClient(cfg.SMTPHost,
		mail.WithPort(cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.SMTPUsername),
		mail.WithPassword(cfg.SMTPPassword),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to configure SMTP client")
	}

	return &SMTPMailer{client: client, from: cfg.MailFrom}, nil
}

// Send delivers a plain-text message.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "invalid mail sender")
	}
	if err := msg.To(to); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid mail recipient")
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to send mail")
	}
	return nil
}

// LogMailer writes outgoing mail to the logger instead of the network. Used
// when SMTP is not configured, so local setups work without a relay.
type LogMailer struct {
	logger Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger Logger) *LogMailer {
	if logger == nil {
		logger = defLogger{}
	}
	return &LogMailer{logger: logger}
}

// Send logs the message instead of delivering it.
func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.logger.Info("mail to=%s subject=%q body=%q", to, subject, body)
	return nil
}

var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = (*LogMailer)(nil)
)
