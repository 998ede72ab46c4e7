package mailer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"agencysite/internal/config"
)

// sesAPI is the subset of the SES client used here.
type sesAPI interface {
	SendRawEmail(ctx context.Context, in *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

type sesMailer struct {
	client sesAPI
}

// NewSES returns a Mailer that sends through AWS SES. Static credentials
// are used when both keys are set; otherwise the SDK's default chain
// resolves them at send time.
func NewSES(cfg config.SESConfig) (Mailer, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("ses region is required")
	}
	awsCfg := aws.Config{
		Region:     cfg.Region,
		HTTPClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg.Credentials = aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		)
	}
	return &sesMailer{client: ses.NewFromConfig(awsCfg)}, nil
}

// Send renders the MIME message and hands it to SES as raw email, which
// is the only SES call that carries attachments.
func (s *sesMailer) Send(ctx context.Context, msg Message) error {
	m, closers, err := buildMsg(msg)
	if err != nil {
		return err
	}
	defer closeAll(closers)

	var raw bytes.Buffer
	if _, err := m.WriteTo(&raw); err != nil {
		return fmt.Errorf("render message: %w", err)
	}

	out, err := s.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		Source:       aws.String(msg.From),
		Destinations: []string{msg.To},
		RawMessage:   &types.RawMessage{Data: raw.Bytes()},
	})
	if err != nil {
		return fmt.Errorf("send via ses: %w", err)
	}
	slog.InfoContext(ctx, "mail sent via ses", slog.String("message_id", aws.ToString(out.MessageId)))
	return nil
}
