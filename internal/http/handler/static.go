package handler

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// RegisterStatic serves the site pages and assets from dir. Only pages,
// /assets and /image are exposed so data and log directories that may
// live next to them stay private. Other extensionless GETs outside /api
// get index.html so client-side routes such as /members/ladies load.
// It must be registered after every other route.
func RegisterStatic(app *fiber.App, dir string) {
	app.Get("/", sendPage(dir, "index.html"))
	app.Get("/apply", sendPage(dir, "apply.html"))
	app.Get("/admin", sendPage(dir, "admin.html"))
	app.Get("/:page.html", func(c *fiber.Ctx) error {
		return c.SendFile(filepath.Join(dir, filepath.Base(c.Params("page"))+".html"))
	})
	app.Static("/assets", filepath.Join(dir, "assets"))
	app.Static("/image", filepath.Join(dir, "image"))
	app.Get("/*", spaFallback(filepath.Join(dir, "index.html")))
}

func spaFallback(index string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := c.Path()
		if p == "/api" || strings.HasPrefix(p, "/api/") || path.Ext(p) != "" {
			return fiber.ErrNotFound
		}
		return c.SendFile(index)
	}
}

func sendPage(dir, name string) fiber.Handler {
	path := filepath.Join(dir, name)
	return func(c *fiber.Ctx) error {
		return c.SendFile(path)
	}
}
