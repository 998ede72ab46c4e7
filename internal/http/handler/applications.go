package handler

import (
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"agencysite/internal/service"
)

// Apply accepts the public application form (multipart, photos in "photos").
//
// @Summary Submit an application
// @Tags apply
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "full name"
// @Param email formData string true "email"
// @Param phone formData string true "phone"
// @Param agree formData string true "must be true"
// @Param photos formData file false "up to 5 photos"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Failure 429 {object} errorPayload
// @Router /api/apply [post]
func Apply(svc service.IntakeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sub := service.Submission{
			Name:     c.FormValue("name"),
			Kana:     c.FormValue("kana"),
			Email:    c.FormValue("email"),
			Phone:    c.FormValue("phone"),
			Age:      c.FormValue("age"),
			Height:   c.FormValue("height"),
			Size:     c.FormValue("size"),
			Category: c.FormValue("category"),
			Message:  c.FormValue("message"),
			Agree:    c.FormValue("agree"),
		}
		if form, err := c.MultipartForm(); err == nil {
			for _, fh := range form.File["photos"] {
				sub.Files = append(sub.Files, fileUpload(fh))
			}
		}

		status, err := svc.Submit(c.UserContext(), sub)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"ok": true, "mailStatus": status})
	}
}

// fileUpload adapts a multipart file header. The file can be opened more
// than once, which the intake pipeline needs for storage and mail.
func fileUpload(fh *multipart.FileHeader) service.FileUpload {
	ct := fh.Header.Get(fiber.HeaderContentType)
	if ct == "" {
		ct = fiber.MIMEOctetStream
	}
	return service.FileUpload{
		Filename:    fh.Filename,
		ContentType: ct,
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// ListApplications returns applications newest first, filtered by q.
//
// @Summary List applications
// @Tags admin
// @Security AdminToken
// @Produce json
// @Param q query string false "matches name, email, phone or category"
// @Success 200 {object} map[string]any
// @Router /api/admin/applications [get]
func ListApplications(svc service.ApplicationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext(), c.Query("q"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"ok": true, "items": items})
	}
}

// ExportApplications downloads the applications as CSV.
//
// @Summary Export applications
// @Tags admin
// @Security AdminToken
// @Produce text/csv
// @Success 200 {string} string
// @Router /api/admin/applications.csv [get]
func ExportApplications(svc service.ApplicationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := svc.ExportCSV(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="applications.csv"`)
		return c.Send(out)
	}
}
