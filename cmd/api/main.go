package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agencysite/internal/auth"
	"agencysite/internal/config"
	"agencysite/internal/database"
	"agencysite/internal/database/migration"
	handlers "agencysite/internal/http/handler"
	"agencysite/internal/http/middleware"
	"agencysite/internal/mailer"
	"agencysite/internal/otel"
	"agencysite/internal/repository"
	"agencysite/internal/repository/file"
	"agencysite/internal/repository/postgres"
	"agencysite/internal/service"
	"agencysite/internal/storage"
)

// @title Agency Site API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey AdminToken
// @in header
// @name X-Admin-Token
func main() {
	cfg := config.Load()
	logger := config.NewLogger()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

type stores struct {
	news    repository.NewsRepository
	members repository.MemberRepository
	apps    repository.ApplicationLog
	db      *sql.DB
}

func run(cfg *config.AppConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if st.db != nil {
		defer st.db.Close()
	}

	objStore, err := openUploads(ctx, cfg)
	if err != nil {
		return err
	}

	var mail mailer.Mailer
	if cfg.Mail.Enabled() {
		if mail, err = mailer.New(cfg.Mail); err != nil {
			return err
		}
		logger.Info("mail notifications enabled", slog.String("provider", cfg.Mail.Provider))
	} else {
		logger.Info("mail notifications disabled; applications are recorded as skipped")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}

	intake, err := service.NewIntakeService(st.apps, objStore, mail, service.IntakeConfig{
		MaxFiles:    cfg.Upload.MaxFiles,
		MaxFileSize: cfg.Upload.MaxBytes,
		MailFrom:    cfg.Mail.From,
		MailTo:      cfg.Mail.To,
		AuditPath:   filepath.Join(cfg.LogDir, "apply.csv"),
	}, reg)
	if err != nil {
		return err
	}

	tokens := auth.NewTokenIssuer(cfg.Admin.Token, cfg.Admin.TokenTTL)
	admin := auth.AnyOf(auth.SharedSecret(cfg.Admin.Token), tokens)
	if cfg.Admin.Token == "" {
		admin = auth.SharedSecret("")
		logger.Warn("ADMIN_TOKEN is not set; the admin API is open")
	}

	checks := []handlers.Check{{Name: "storage", Ping: objStore.Ping}}
	if st.db != nil {
		checks = append(checks, handlers.Check{Name: "postgres", Ping: st.db.PingContext})
	}

	app := fiber.New(fiber.Config{
		AppName:      "agencysite",
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.BodyLimit(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.Logger(logger))
	app.Use(promMiddleware.Handler())
	app.Use("/api", cors.New(cors.Config{
		AllowOrigins: allowOrigins(cfg.AllowedOrigins),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Admin-Token, X-Request-ID",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	var applyLimiter fiber.Handler
	if cfg.ApplyRatePerMin > 0 {
		applyLimiter = limiter.New(limiter.Config{
			Max:        cfg.ApplyRatePerMin,
			Expiration: time.Minute,
			LimitReached: func(*fiber.Ctx) error {
				return fiber.ErrTooManyRequests
			},
		})
	}

	handlers.RegisterRoutes(app, handlers.Dependencies{
		News:         service.NewNewsService(st.news),
		Members:      service.NewMemberService(st.members),
		Applications: service.NewApplicationService(st.apps),
		Intake:       intake,
		Uploads:      service.NewUploadService(objStore),
		Storage:      objStore,
		Admin:        admin,
		Tokens:       tokens,
		Checks:       checks,
		ApplyLimiter: applyLimiter,
		PublicDir:    cfg.PublicDir,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", ":"+cfg.Port), slog.String("store", cfg.StoreBackend), slog.String("uploads", cfg.Upload.Backend))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}

func openStores(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (stores, error) {
	switch cfg.StoreBackend {
	case config.BackendFile:
		return stores{
			news:    file.NewNewsRepository(cfg.DataDir),
			members: file.NewMemberRepository(cfg.DataDir),
			apps:    file.NewApplicationLog(cfg.DataDir),
		}, nil
	case config.BackendPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return stores{}, err
		}
		if err := migration.EnsureMigrated(ctx, db, logger); err != nil {
			db.Close()
			return stores{}, err
		}
		return stores{
			news:    postgres.NewNewsPostgres(db),
			members: postgres.NewMemberPostgres(db),
			apps:    postgres.NewApplicationLog(db),
			db:      db,
		}, nil
	default:
		return stores{}, errors.New("unknown STORE_BACKEND " + cfg.StoreBackend)
	}
}

func openUploads(ctx context.Context, cfg *config.AppConfig) (storage.Storage, error) {
	switch cfg.Upload.Backend {
	case config.BackendLocal:
		return storage.NewLocal(cfg.Upload.Dir)
	case config.BackendMinIO:
		return storage.NewMinIO(ctx, cfg.MinIO)
	default:
		return nil, errors.New("unknown UPLOAD_BACKEND " + cfg.Upload.Backend)
	}
}

// allowOrigins renders FRONT_ORIGIN for the cors middleware; an empty list
// allows any origin.
func allowOrigins(origins []string) string {
	if len(origins) == 0 {
		return "*"
	}
	return strings.Join(origins, ",")
}
