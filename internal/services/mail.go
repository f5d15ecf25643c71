package services

import (
	"context"
	"fmt"

	"github.com/yungbote/scandine-backend/internal/platform/logger"
	"github.com/yungbote/scandine-backend/internal/platform/sendgrid"
)

type Email struct {
	To         string
	Subject    string
	Text       string
	HTML       string
	Categories []string
}

type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

type mailer struct {
	log    *logger.Logger
	client sendgrid.Client
}

// NewMailer sends through SendGrid when a client is configured and only logs otherwise,
// so local setups still surface that a message would have gone out.
func NewMailer(log *logger.Logger, client sendgrid.Client) Mailer {
	return &mailer{log: log.With("service", "Mailer"), client: client}
}

func (m *mailer) Send(ctx context.Context, msg Email) error {
	if m.client == nil {
		m.log.Info("Mail delivery disabled; message dropped", "subject", msg.Subject, "email", msg.To)
		return nil
	}
	res, err := m.client.Send(ctx, sendgrid.SendEmailRequest{
		To:         []sendgrid.EmailAddress{{Email: msg.To}},
		Subject:    msg.Subject,
		Text:       msg.Text,
		HTML:       msg.HTML,
		Categories: msg.Categories,
	})
	if err != nil {
		return fmt.Errorf("send %q: %w", msg.Subject, err)
	}
	m.log.Debug("Mail sent", "subject", msg.Subject, "message_id", res.MessageID)
	return nil
}
