// Package resend отправляет письма через HTTP API Resend вместо SMTP.
package resend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// Relay отправляет письма от имени одного адреса.
type Relay struct {
	client *resend.Client
	from   string
	log    *slog.Logger
}

// NewRelay создаёт Relay с ключом API и адресом отправителя.
func NewRelay(apiKey, from string, log *slog.Logger) *Relay {
	return &Relay{
		client: resend.NewClient(apiKey),
		from:   from,
		log:    log,
	}
}

// Send отправляет текстовое письмо.
func (r *Relay) Send(ctx context.Context, to []string, subject, text string) error {
	const op = "resend.Send"

	sent, err := r.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    r.from,
		To:      to,
		Subject: subject,
		Text:    text,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	r.log.Debug("resend accepted email", slog.String("message_id", sent.Id), slog.Any("to", to))
	return nil
}
