package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"agencysite/internal/mailer"
	mailMocks "agencysite/internal/mailer/mocks"
	"agencysite/internal/model"
	"agencysite/internal/repository/file"
	repoMocks "agencysite/internal/repository/mocks"
	"agencysite/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type intakeFixture struct {
	svc      *intakeService
	apps     *file.ApplicationLog
	auditLog string
	uploads  string
}

func newIntakeFixture(t *testing.T, m mailer.Mailer) intakeFixture {
	t.Helper()
	dir := t.TempDir()
	uploads := filepath.Join(dir, "uploads")
	store, err := storage.NewLocal(uploads)
	require.NoError(t, err)
	apps := file.NewApplicationLog(filepath.Join(dir, "data"))
	audit := filepath.Join(dir, "logs", "apply.csv")

	svc, err := NewIntakeService(apps, store, m, IntakeConfig{
		MaxFiles:    2,
		MaxFileSize: 1 << 20,
		MailFrom:    "site@example.com",
		MailTo:      "office@example.com",
		AuditPath:   audit,
	}, prometheus.NewRegistry())
	require.NoError(t, err)
	is := svc.(*intakeService)
	is.now = func() time.Time { return fixedNow }
	is.suffix = seqSuffix()
	return intakeFixture{svc: is, apps: apps, auditLog: audit, uploads: uploads}
}

// seqSuffix returns a suffix generator yielding 000001, 000002, ...
func seqSuffix() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%06d", n)
	}
}

func upload(name, content string) FileUpload {
	return FileUpload{
		Filename:    name,
		ContentType: "image/jpeg",
		Size:        int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func validSubmission() Submission {
	return Submission{
		Name:     `Hana"ko`,
		Email:    "hanako@example.com",
		Phone:    "090-0000-0000",
		Category: "ladies",
		Agree:    "true",
	}
}

func TestIntakeService_MissingAgreeWritesNothing(t *testing.T) {
	f := newIntakeFixture(t, nil)
	sub := validSubmission()
	sub.Agree = ""

	_, err := f.svc.Submit(context.Background(), sub)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []FieldError{{Field: "agree", Message: "同意が必要"}}, verr.Fields)

	apps, err := f.apps.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, apps)
	assert.NoFileExists(t, f.auditLog)
}

func TestIntakeService_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Submission)
		fields []string
	}{
		{name: "blank name", mutate: func(s *Submission) { s.Name = "  " }, fields: []string{"name"}},
		{name: "bad email", mutate: func(s *Submission) { s.Email = "hanako@" }, fields: []string{"email"}},
		{name: "display name email", mutate: func(s *Submission) { s.Email = "Hanako <h@example.com>" }, fields: []string{"email"}},
		{name: "missing phone", mutate: func(s *Submission) { s.Phone = "" }, fields: []string{"phone"}},
		{name: "agree not true", mutate: func(s *Submission) { s.Agree = "on" }, fields: []string{"agree"}},
		{
			name: "too many files",
			mutate: func(s *Submission) {
				s.Files = []FileUpload{upload("a.jpg", "a"), upload("b.jpg", "b"), upload("c.jpg", "c")}
			},
			fields: []string{"photos"},
		},
		{
			name: "file too large",
			mutate: func(s *Submission) {
				big := upload("big.jpg", "x")
				big.Size = 2 << 20
				s.Files = []FileUpload{big}
			},
			fields: []string{"photos"},
		},
		{
			name:   "everything missing",
			mutate: func(s *Submission) { *s = Submission{} },
			fields: []string{"name", "email", "phone", "agree"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newIntakeFixture(t, nil)
			sub := validSubmission()
			tt.mutate(&sub)

			_, err := f.svc.Submit(context.Background(), sub)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			got := make([]string, 0, len(verr.Fields))
			for _, fe := range verr.Fields {
				got = append(got, fe.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestIntakeService_SkippedWithoutMailer(t *testing.T) {
	f := newIntakeFixture(t, nil)
	sub := validSubmission()
	sub.Files = []FileUpload{upload("my photo.jpg", "jpeg-bytes")}

	status, err := f.svc.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, model.MailSkipped, status)

	apps, err := f.apps.List(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 1)
	app := apps[0]
	assert.Equal(t, model.MailSkipped, app.MailStatus)
	assert.Equal(t, fixedNow, app.CreatedAt)
	require.Len(t, app.Files, 1)
	assert.Equal(t, model.StoredFile{
		Filename: "1717234200000_000001_my_photo.jpg",
		MimeType: "image/jpeg",
		Size:     10,
		Path:     "uploads/1717234200000_000001_my_photo.jpg",
	}, app.Files[0])

	stored, err := os.ReadFile(filepath.Join(f.uploads, "1717234200000_000001_my_photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(stored))

	audit, err := os.ReadFile(f.auditLog)
	require.NoError(t, err)
	assert.Equal(t, `"2024-06-01T09:30:00.000Z","Hana""ko","hanako@example.com","090-0000-0000","ladies"`+"\n", string(audit))

	assert.Equal(t, 1.0, testutil.ToFloat64(f.svc.accepted.WithLabelValues("skipped")))
}

func TestIntakeService_MailOutcome(t *testing.T) {
	tests := []struct {
		name    string
		sendErr error
		want    model.MailStatus
	}{
		{name: "sent", want: model.MailSent},
		{name: "failed", sendErr: errors.New("connection refused"), want: model.MailFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mailMocks.MockMailer{}
			m.On("Send", mock.Anything, mock.MatchedBy(func(msg mailer.Message) bool {
				return msg.Subject == `【応募】Hana"ko さんより` &&
					msg.From == "site@example.com" &&
					msg.To == "office@example.com" &&
					len(msg.Attachments) == 1 &&
					msg.Attachments[0].Filename == "a.jpg"
			})).Return(tt.sendErr)
			f := newIntakeFixture(t, m)
			sub := validSubmission()
			sub.Files = []FileUpload{upload("a.jpg", "a")}

			status, err := f.svc.Submit(context.Background(), sub)
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)

			apps, err := f.apps.List(context.Background())
			require.NoError(t, err)
			require.Len(t, apps, 1)
			assert.Equal(t, tt.want, apps[0].MailStatus)
			m.AssertExpectations(t)
		})
	}
}

func TestIntakeService_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("append error", func(t *testing.T) {
		apps := &repoMocks.MockApplicationLog{}
		apps.On("Append", mock.Anything, mock.Anything).Return(errors.New("disk full"))
		store, err := storage.NewLocal(t.TempDir())
		require.NoError(t, err)
		svc, err := NewIntakeService(apps, store, nil, IntakeConfig{}, nil)
		require.NoError(t, err)

		_, err = svc.Submit(ctx, validSubmission())
		assert.EqualError(t, err, "append application: disk full")
	})

	t.Run("upload error", func(t *testing.T) {
		apps := &repoMocks.MockApplicationLog{}
		store, err := storage.NewLocal(t.TempDir())
		require.NoError(t, err)
		svc, err := NewIntakeService(apps, store, nil, IntakeConfig{}, nil)
		require.NoError(t, err)
		sub := validSubmission()
		broken := upload("a.jpg", "a")
		broken.Open = func() (io.ReadCloser, error) { return nil, errors.New("temp file gone") }
		sub.Files = []FileUpload{broken}

		_, err = svc.Submit(ctx, sub)
		assert.ErrorContains(t, err, "temp file gone")
		apps.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})
}

func TestIntakeService_SameNameUploadsKeptApart(t *testing.T) {
	f := newIntakeFixture(t, nil)
	sub := validSubmission()
	sub.Files = []FileUpload{upload("photo.jpg", "FIRST"), upload("photo.jpg", "SECOND")}

	_, err := f.svc.Submit(context.Background(), sub)
	require.NoError(t, err)

	apps, err := f.apps.List(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 1)
	require.Len(t, apps[0].Files, 2)
	assert.NotEqual(t, apps[0].Files[0].Path, apps[0].Files[1].Path)

	entries, err := os.ReadDir(f.uploads)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	for i, want := range []string{"FIRST", "SECOND"} {
		b, err := os.ReadFile(filepath.Join(f.uploads, apps[0].Files[i].Filename))
		require.NoError(t, err)
		assert.Equal(t, want, string(b))
	}
}

func TestIntakeService_DefaultSuffixKeepsSameNameApart(t *testing.T) {
	f := newIntakeFixture(t, nil)
	f.svc.suffix = model.NewSuffix
	sub := validSubmission()
	sub.Files = []FileUpload{upload("photo.jpg", "FIRST"), upload("photo.jpg", "SECOND")}

	_, err := f.svc.Submit(context.Background(), sub)
	require.NoError(t, err)

	entries, err := os.ReadDir(f.uploads)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Regexp(t, `^1717234200000_[0-9a-z]{6}_photo\.jpg$`, e.Name())
	}
}
