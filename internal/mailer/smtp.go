package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"agencysite/internal/config"
)

type smtpMailer struct {
	client *mail.Client
}

// NewSMTP returns a Mailer relaying through the configured SMTP host.
// Secure selects implicit TLS; otherwise STARTTLS is used when offered.
func NewSMTP(cfg config.SMTPConfig) (Mailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &smtpMailer{client: client}, nil
}

func (s *smtpMailer) Send(ctx context.Context, msg Message) error {
	m, closers, err := buildMsg(msg)
	if err != nil {
		return err
	}
	defer closeAll(closers)

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send via smtp: %w", err)
	}
	return nil
}
