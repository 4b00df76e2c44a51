// Package email delivers transactional mail over SMTP with HTML bodies.
package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/zabotech/ops-system/internal/api/metrics"
	"github.com/zabotech/ops-system/internal/core/ports"
)

// Config holds SMTP transport settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer implements ports.Mailer on top of an SMTP client.
type SMTPMailer struct {
	client *mail.Client
	from   string
	log    zerolog.Logger
}

func NewSMTPMailer(cfg Config, log zerolog.Logger) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &SMTPMailer{client: client, from: cfg.From, log: log}, nil
}

func (m *SMTPMailer) SendWelcome(ctx context.Context, to string, data ports.WelcomeEmailData) error {
	body, err := renderWelcome(data)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Welcome to Zabotech, %s!", data.Name)
	return m.send(ctx, "welcome", to, subject, body)
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to string, data ports.ResetEmailData) error {
	body, err := renderReset(data)
	if err != nil {
		return err
	}
	return m.send(ctx, "password_reset", to, "Password recovery - Zabotech", body)
}

func (m *SMTPMailer) send(ctx context.Context, kind, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, "Please view this email in an HTML-enabled email client.")
	msg.AddAlternativeString(mail.TypeTextHTML, htmlBody)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		metrics.EmailsSentTotal.WithLabelValues(kind, "error").Inc()
		return fmt.Errorf("send %s email: %w", kind, err)
	}

	metrics.EmailsSentTotal.WithLabelValues(kind, "ok").Inc()
	m.log.Debug().Str("kind", kind).Str("to", to).Msg("email sent")
	return nil
}
