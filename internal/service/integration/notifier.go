package integration

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Notifier delivers overdue-deadline reports. The sweep marks a task as
// notified only after Send returns without error, so a failed delivery is
// retried on the next sweep.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, htmlBody string) error
}

type MailConfig struct {
	APIKey    string
	FromName  string
	FromEmail string
}

type sendgridNotifier struct {
	client *sendgrid.Client
	from   *mail.Email
	logger zerolog.Logger
}

func NewSendgridNotifier(cfg MailConfig, logger zerolog.Logger) Notifier {
	return &sendgridNotifier{
		client: sendgrid.NewSendClient(cfg.APIKey),
		from:   mail.NewEmail(cfg.FromName, cfg.FromEmail),
		logger: logger,
	}
}

func (n *sendgridNotifier) Send(ctx context.Context, recipient, subject, htmlBody string) error {
	to := mail.NewEmail("", recipient)
	message := mail.NewSingleEmail(n.from, subject, to, "", htmlBody)

	resp, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail delivery rejected with status %d", resp.StatusCode)
	}

	n.logger.Info().Str("recipient", recipient).Str("subject", subject).Msg("Mail sent")
	return nil
}

// consoleNotifier logs messages instead of delivering them; used in
// development and tests.
type consoleNotifier struct {
	logger zerolog.Logger
}

func NewConsoleNotifier(logger zerolog.Logger) Notifier {
	return &consoleNotifier{logger: logger}
}

func (n *consoleNotifier) Send(ctx context.Context, recipient, subject, htmlBody string) error {
	n.logger.Info().
		Str("recipient", recipient).
		Str("subject", subject).
		Int("body_bytes", len(htmlBody)).
		Msg("Mail (console)")
	return nil
}
