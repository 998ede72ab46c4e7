package config

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ADMIN_TOKEN", "s3cret")
	t.Setenv("ADMIN_TOKEN_TTL_MIN", "30")
	t.Setenv("FRONT_ORIGIN", "https://a.example, ,https://b.example")
	t.Setenv("MAX_UPLOAD_FILES", "3")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("SMTP_SECURE", "true")
	t.Setenv("SMTP_PORT", "465")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "s3cret", cfg.Admin.Token)
	assert.Equal(t, 30*time.Minute, cfg.Admin.TokenTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 3, cfg.Upload.MaxFiles)
	assert.Equal(t, int64(8<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.True(t, cfg.Mail.SMTP.Secure)
	assert.Equal(t, 465, cfg.Mail.SMTP.Port)
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATA_DIR", "STORE_BACKEND", "UPLOAD_BACKEND", "FRONT_ORIGIN", "ADMIN_TOKEN"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "5174", cfg.Port)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, BackendFile, cfg.StoreBackend)
	assert.Equal(t, BackendLocal, cfg.Upload.Backend)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Empty(t, cfg.Admin.Token)
	assert.Equal(t, 5, cfg.Upload.MaxFiles)
	assert.Equal(t, 8<<20*5+1<<20, cfg.BodyLimit())
}

func TestMailConfig_Enabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  MailConfig
		want bool
	}{
		{name: "nothing set", cfg: MailConfig{}, want: false},
		{name: "smtp host only", cfg: MailConfig{SMTP: SMTPConfig{Host: "smtp"}}, want: false},
		{name: "smtp missing recipient", cfg: MailConfig{From: "a@x", SMTP: SMTPConfig{Host: "smtp"}}, want: false},
		{name: "smtp complete", cfg: MailConfig{From: "a@x", To: "b@x", SMTP: SMTPConfig{Host: "smtp"}}, want: true},
		{name: "ses without region", cfg: MailConfig{Provider: "ses", From: "a@x", To: "b@x"}, want: false},
		{name: "ses complete", cfg: MailConfig{Provider: "ses", From: "a@x", To: "b@x", SES: SESConfig{Region: "ap-northeast-1"}}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Enabled())
		})
	}
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	t.Setenv(key, "value")

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT_AGENCYSITE", "default"))
}

func TestGetEnvBoolInt(t *testing.T) {
	key := "TEST_NUM_VAR"

	t.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	t.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))
	assert.True(t, getEnvBool(key, true))

	t.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "warn")

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "v", entry["k"])
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
}
