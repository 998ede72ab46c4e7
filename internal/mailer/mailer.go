// Package mailer delivers application notifications. SMTP goes through
// go-mail; the SES provider sends the same MIME message as raw email.
package mailer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/wneessen/go-mail"

	"agencysite/internal/config"
)

// Mail providers.
const (
	ProviderSMTP = "smtp"
	ProviderSES  = "ses"
	ProviderNoop = "noop"
)

// Attachment is a file to attach. Open is called once while the message
// is being built and the reader is closed after sending.
type Attachment struct {
	Filename    string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// Message is a plain-text email with optional attachments.
type Message struct {
	From        string
	To          string
	Subject     string
	Text        string
	Attachments []Attachment
}

// Mailer sends a message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New builds the mailer selected by cfg.Provider. Unknown providers fall
// back to SMTP, which is what an unset MAIL_PROVIDER means.
func New(cfg config.MailConfig) (Mailer, error) {
	switch cfg.Provider {
	case ProviderSES:
		return NewSES(cfg.SES)
	case ProviderNoop:
		return Noop{}, nil
	default:
		return NewSMTP(cfg.SMTP)
	}
}

// buildMsg converts msg into a go-mail message. The returned closers
// must be closed by the caller once the message has been written.
func buildMsg(msg Message) (*mail.Msg, []io.Closer, error) {
	m := mail.NewMsg(mail.WithCharset(mail.CharsetUTF8))
	if err := m.From(msg.From); err != nil {
		return nil, nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, nil, fmt.Errorf("invalid to address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)

	var closers []io.Closer
	for _, a := range msg.Attachments {
		rc, err := a.Open()
		if err != nil {
			closeAll(closers)
			return nil, nil, fmt.Errorf("open attachment %s: %w", a.Filename, err)
		}
		closers = append(closers, rc)
		var opts []mail.FileOption
		if a.ContentType != "" {
			opts = append(opts, mail.WithFileContentType(mail.ContentType(a.ContentType)))
		}
		if err := m.AttachReader(a.Filename, rc, opts...); err != nil {
			closeAll(closers)
			return nil, nil, fmt.Errorf("attach %s: %w", a.Filename, err)
		}
	}
	return m, closers, nil
}

func closeAll(cs []io.Closer) {
	for _, c := range cs {
		_ = c.Close()
	}
}

// Noop logs instead of sending. Useful for local development.
type Noop struct{}

func (Noop) Send(ctx context.Context, msg Message) error {
	slog.InfoContext(ctx, "mail not sent (noop)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.Int("attachments", len(msg.Attachments)),
	)
	return nil
}
