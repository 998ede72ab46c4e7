package handler

import (
	"github.com/gofiber/fiber/v2"

	"agencysite/internal/auth"
	"agencysite/internal/http/middleware"
	"agencysite/internal/service"
	"agencysite/internal/storage"
)

// Dependencies are the collaborators the routes are built from.
type Dependencies struct {
	News         service.NewsService
	Members      service.MemberService
	Applications service.ApplicationService
	Intake       service.IntakeService
	Uploads      service.UploadService
	Storage      storage.Storage
	// Admin guards /api/admin. Nil leaves the admin API open.
	Admin  auth.Authorizer
	Tokens *auth.TokenIssuer
	Checks []Check
	// ApplyLimiter, when set, runs before the intake handler.
	ApplyLimiter fiber.Handler
	// PublicDir holds the site pages; empty disables static serving.
	PublicDir string
}

// RegisterRoutes attaches every HTTP route to app.
func RegisterRoutes(app *fiber.App, d Dependencies) {
	app.Get("/healthz", LivenessProbe())
	app.Get("/health", HealthCheck(d.Checks...))
	app.Get("/swagger/*", SwaggerUI())

	api := app.Group("/api")
	api.Get("/news", ListPublicNews(d.News))
	api.Get("/members", ListPublicMembers(d.Members))
	if d.ApplyLimiter != nil {
		api.Post("/apply", d.ApplyLimiter, Apply(d.Intake))
	} else {
		api.Post("/apply", Apply(d.Intake))
	}

	gate := d.Admin
	if gate == nil {
		gate = auth.SharedSecret("")
	}
	admin := api.Group("/admin", middleware.AdminGate(gate))
	admin.Get("/news", ListNews(d.News))
	admin.Post("/news", CreateNews(d.News))
	admin.Put("/news/:id", UpdateNews(d.News))
	admin.Delete("/news/:id", DeleteNews(d.News))
	admin.Get("/members", ListMembers(d.Members))
	admin.Post("/members", CreateMember(d.Members))
	admin.Put("/members/:id", UpdateMember(d.Members))
	admin.Delete("/members/:id", DeleteMember(d.Members))
	admin.Get("/applications", ListApplications(d.Applications))
	admin.Get("/applications.csv", ExportApplications(d.Applications))
	admin.Post("/upload", UploadFile(d.Uploads))
	admin.Post("/token", IssueToken(d.Tokens))

	app.Get("/uploads/:key", ServeUpload(d.Storage))

	if d.PublicDir != "" {
		RegisterStatic(app, d.PublicDir)
	}
}
