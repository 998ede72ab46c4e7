package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendLocal    = "local"
	BackendMinIO    = "minio"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// SMTPConfig describes the SMTP relay used for application notifications.
type SMTPConfig struct {
	Host     string
	Port     int
	Secure   bool
	User     string
	Password string
}

// SESConfig holds AWS SES credentials.
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// MailConfig selects the mail provider and the notification addresses.
type MailConfig struct {
	Provider string
	From     string
	To       string
	SMTP     SMTPConfig
	SES      SESConfig
}

// Enabled reports whether enough is configured to attempt delivery.
// Without it the notification step is skipped rather than failed.
func (m MailConfig) Enabled() bool {
	if m.From == "" || m.To == "" {
		return false
	}
	switch m.Provider {
	case "ses":
		return m.SES.Region != ""
	case "noop":
		return true
	default:
		return m.SMTP.Host != ""
	}
}

// UploadConfig bounds the files accepted per request.
type UploadConfig struct {
	Backend  string
	Dir      string
	MaxBytes int64
	MaxFiles int
}

// AdminConfig configures the admin gate.
type AdminConfig struct {
	// Token is the shared secret; empty leaves the admin API open.
	Token    string
	TokenTTL time.Duration
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Environment     string
	Port            string
	DataDir         string
	LogDir          string
	PublicDir       string
	StoreBackend    string
	AllowedOrigins  []string
	ApplyRatePerMin int
	Admin           AdminConfig
	Upload          UploadConfig
	Mail            MailConfig
	Database        DatabaseConfig
	MinIO           MinIOConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() *AppConfig {
	return &AppConfig{
		Environment:     getEnv("GO_ENV", "development"),
		Port:            getEnv("PORT", "5174"),
		DataDir:         getEnv("DATA_DIR", "data"),
		LogDir:          getEnv("LOG_DIR", "logs"),
		PublicDir:       getEnv("PUBLIC_DIR", "."),
		StoreBackend:    getEnv("STORE_BACKEND", BackendFile),
		AllowedOrigins:  getEnvList("FRONT_ORIGIN"),
		ApplyRatePerMin: getEnvInt("APPLY_RATE_PER_MIN", 10),
		Admin: AdminConfig{
			Token:    getEnv("ADMIN_TOKEN", ""),
			TokenTTL: time.Duration(getEnvInt("ADMIN_TOKEN_TTL_MIN", 720)) * time.Minute,
		},
		Upload: UploadConfig{
			Backend:  getEnv("UPLOAD_BACKEND", BackendLocal),
			Dir:      getEnv("UPLOAD_DIR", "uploads"),
			MaxBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 8<<20)),
			MaxFiles: getEnvInt("MAX_UPLOAD_FILES", 5),
		},
		Mail: MailConfig{
			Provider: getEnv("MAIL_PROVIDER", "smtp"),
			From:     getEnv("MAIL_FROM", ""),
			To:       getEnv("MAIL_TO", ""),
			SMTP: SMTPConfig{
				Host:     getEnv("SMTP_HOST", ""),
				Port:     getEnvInt("SMTP_PORT", 587),
				Secure:   getEnvBool("SMTP_SECURE", false),
				User:     getEnv("SMTP_USER", ""),
				Password: getEnv("SMTP_PASS", ""),
			},
			SES: SESConfig{
				Region:          getEnv("SES_REGION", ""),
				AccessKeyID:     getEnv("SES_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("SES_SECRET_ACCESS_KEY", ""),
			},
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}
}

// BodyLimit is the largest request body the HTTP server accepts:
// every allowed file at full size plus room for the text fields.
func (c *AppConfig) BodyLimit() int {
	return int(c.Upload.MaxBytes)*c.Upload.MaxFiles + 1<<20
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
