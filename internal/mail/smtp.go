// Package mail delivers outbound email over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Stewz00/mailforge-api/internal/config"
	"github.com/Stewz00/mailforge-api/internal/interfaces"
	"github.com/Stewz00/mailforge-api/internal/model"
	gomail "github.com/wneessen/go-mail"
)

// SMTPTransport sends each message with a fresh SMTP connection.
type SMTPTransport struct {
	cfg config.MailConfig
}

var _ interfaces.MailTransport = (*SMTPTransport)(nil)

// NewSMTPTransport validates the mail settings needed to send.
func NewSMTPTransport(cfg config.MailConfig) (*SMTPTransport, error) {
	if cfg.Host == "" {
		return nil, errors.New("SMTP host is required")
	}
	if cfg.DefaultSender == "" {
		return nil, errors.New("SMTP default sender is required")
	}
	return &SMTPTransport{cfg: cfg}, nil
}

// Send delivers msg to all recipients in one SMTP transaction.
func (t *SMTPTransport) Send(ctx context.Context, msg *model.EmailMessage) error {
	m, err := buildMessage(t.cfg.DefaultSender, msg)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(t.cfg.Host, t.clientOptions()...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}

func (t *SMTPTransport) clientOptions() []gomail.Option {
	opts := []gomail.Option{
		gomail.WithPort(t.cfg.Port),
	}

	if t.cfg.UseTLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
		// Port 465 speaks implicit TLS; everything else upgrades with STARTTLS.
		if t.cfg.Port == 465 {
			opts = append(opts, gomail.WithSSL())
		}
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}

	if t.cfg.Username != "" && t.cfg.Password != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(t.cfg.Username),
			gomail.WithPassword(t.cfg.Password),
		)
	}

	return opts
}

func buildMessage(from string, msg *model.EmailMessage) (*gomail.Msg, error) {
	m := gomail.NewMsg()

	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("setting from address: %w", err)
	}
	if err := m.To(msg.Recipients...); err != nil {
		return nil, fmt.Errorf("setting to address: %w", err)
	}

	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)
	return m, nil
}

// ErrNotConfigured is returned by DisabledTransport.
var ErrNotConfigured = errors.New("no SMTP server configured")

// DisabledTransport stands in when MAIL_SERVER is unset. Every send fails,
// so callers never report a delivery that did not happen.
type DisabledTransport struct {
	logger *slog.Logger
}

var _ interfaces.MailTransport = (*DisabledTransport)(nil)

func NewDisabledTransport(logger *slog.Logger) *DisabledTransport {
	return &DisabledTransport{logger: logger}
}

func (t *DisabledTransport) Send(ctx context.Context, msg *model.EmailMessage) error {
	t.logger.WarnContext(ctx, "email not delivered",
		slog.Int("recipients", len(msg.Recipients)),
		slog.String("error", ErrNotConfigured.Error()),
	)
	return ErrNotConfigured
}
