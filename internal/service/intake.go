package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"agencysite/internal/database/jsonfile"
	"agencysite/internal/mailer"
	"agencysite/internal/model"
	"agencysite/internal/repository"
	"agencysite/internal/storage"
)

var tracer = otel.Tracer("agencysite/internal/service")

// Submission is the content of the public application form.
type Submission struct {
	Name     string
	Kana     string
	Email    string
	Phone    string
	Age      string
	Height   string
	Size     string
	Category string
	Message  string
	Agree    string
	Files    []FileUpload
}

// IntakeConfig bounds uploads and addresses the notification mail.
type IntakeConfig struct {
	MaxFiles    int
	MaxFileSize int64
	MailFrom    string
	MailTo      string
	// AuditPath is the CSV file receiving one line per accepted application.
	AuditPath string
}

// IntakeService accepts applications from the public form.
type IntakeService interface {
	// Submit validates s, stores its files, notifies by mail when a mailer
	// is configured and appends the application to the log. Mail failures
	// are reported through the returned status, never as an error.
	Submit(ctx context.Context, s Submission) (model.MailStatus, error)
}

type intakeService struct {
	apps     repository.ApplicationLog
	store    storage.Storage
	mailer   mailer.Mailer
	cfg      IntakeConfig
	now      func() time.Time
	suffix   func() string
	accepted *prometheus.CounterVec
}

// NewIntakeService constructs an IntakeService. A nil mailer disables
// notifications and every application is recorded as skipped.
// The applications counter is registered on reg when it is non-nil.
func NewIntakeService(apps repository.ApplicationLog, store storage.Storage, m mailer.Mailer, cfg IntakeConfig, reg prometheus.Registerer) (IntakeService, error) {
	s := &intakeService{
		apps:   apps,
		store:  store,
		mailer: m,
		cfg:    cfg,
		now:    time.Now,
		suffix: model.NewSuffix,
		accepted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agencysite_applications_total",
				Help: "Applications accepted, by notification mail outcome.",
			},
			[]string{"mail_status"},
		),
	}
	if reg != nil {
		if err := reg.Register(s.accepted); err != nil {
			return nil, fmt.Errorf("register applications counter: %w", err)
		}
	}
	return s, nil
}

func (s *intakeService) Submit(ctx context.Context, sub Submission) (model.MailStatus, error) {
	ctx, span := tracer.Start(ctx, "IntakeService.Submit")
	defer span.End()
	span.SetAttributes(attribute.Int("application.files", len(sub.Files)))

	if err := s.validate(sub); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return "", err
	}

	now := s.now().UTC()
	files, err := s.storeFiles(ctx, sub.Files)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store files")
		return "", err
	}

	app := model.Application{
		ID:        model.NewID(now),
		CreatedAt: now,
		Name:      sub.Name,
		Kana:      sub.Kana,
		Email:     sub.Email,
		Phone:     sub.Phone,
		Age:       sub.Age,
		Height:    sub.Height,
		Size:      sub.Size,
		Category:  sub.Category,
		Message:   sub.Message,
		Files:     files,
	}
	app.MailStatus = s.notify(ctx, app, sub.Files)
	span.SetAttributes(attribute.String("application.mail_status", string(app.MailStatus)))

	s.audit(ctx, app)

	if err := s.apps.Append(ctx, app); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "append application")
		return "", fmt.Errorf("append application: %w", err)
	}
	s.accepted.WithLabelValues(string(app.MailStatus)).Inc()
	return app.MailStatus, nil
}

func (s *intakeService) validate(sub Submission) error {
	verr := &ValidationError{}
	if strings.TrimSpace(sub.Name) == "" {
		verr.add("name", "氏名は必須")
	}
	if !validEmail(sub.Email) {
		verr.add("email", "メール形式が不正")
	}
	if strings.TrimSpace(sub.Phone) == "" {
		verr.add("phone", "電話は必須")
	}
	if sub.Agree != "true" {
		verr.add("agree", "同意が必要")
	}
	if s.cfg.MaxFiles > 0 && len(sub.Files) > s.cfg.MaxFiles {
		verr.add("photos", fmt.Sprintf("画像は%d枚まで", s.cfg.MaxFiles))
	}
	for _, f := range sub.Files {
		if s.cfg.MaxFileSize > 0 && f.Size > s.cfg.MaxFileSize {
			verr.add("photos", fmt.Sprintf("%s: %dMB を超えています", f.Filename, s.cfg.MaxFileSize>>20))
		}
	}
	return verr.err()
}

// validEmail accepts a bare address; display names are rejected.
func validEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@"):], ".")
}

func (s *intakeService) storeFiles(ctx context.Context, uploads []FileUpload) ([]model.StoredFile, error) {
	ctx, span := tracer.Start(ctx, "IntakeService.storeFiles")
	defer span.End()

	files := make([]model.StoredFile, 0, len(uploads))
	for _, f := range uploads {
		key, err := putFile(ctx, s.store, storage.ObjectKey(s.now(), s.suffix(), f.Filename), f)
		if err != nil {
			return nil, err
		}
		files = append(files, model.StoredFile{
			Filename: key,
			MimeType: f.ContentType,
			Size:     f.Size,
			Path:     "uploads/" + key,
		})
	}
	return files, nil
}

func (s *intakeService) notify(ctx context.Context, app model.Application, uploads []FileUpload) model.MailStatus {
	if s.mailer == nil {
		return model.MailSkipped
	}
	ctx, span := tracer.Start(ctx, "IntakeService.notify")
	defer span.End()

	subject, body, err := mailer.RenderApplication(app)
	if err != nil {
		span.RecordError(err)
		slog.WarnContext(ctx, "render application mail failed", slog.String("application_id", app.ID), slog.Any("error", err))
		return model.MailFailed
	}
	msg := mailer.Message{
		From:    s.cfg.MailFrom,
		To:      s.cfg.MailTo,
		Subject: subject,
		Text:    body,
	}
	for _, f := range uploads {
		msg.Attachments = append(msg.Attachments, mailer.Attachment{
			Filename:    f.Filename,
			ContentType: f.ContentType,
			Open:        f.Open,
		})
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send mail")
		slog.WarnContext(ctx, "application mail failed", slog.String("application_id", app.ID), slog.Any("error", err))
		return model.MailFailed
	}
	return model.MailSent
}

// audit appends the CSV audit line. Failures are logged and otherwise ignored.
func (s *intakeService) audit(ctx context.Context, app model.Application) {
	if s.cfg.AuditPath == "" {
		return
	}
	line := csvRow(app.CreatedAt, app.Name, app.Email, app.Phone, app.Category)
	if err := jsonfile.AppendText(s.cfg.AuditPath, line); err != nil {
		slog.WarnContext(ctx, "audit log append failed", slog.String("path", s.cfg.AuditPath), slog.Any("error", err))
	}
}
