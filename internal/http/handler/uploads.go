package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"agencysite/internal/auth"
	"agencysite/internal/service"
	"agencysite/internal/storage"
)

// UploadFile stores a single admin file sent in the "file" field.
//
// @Summary Upload an image
// @Tags admin
// @Security AdminToken
// @Accept multipart/form-data
// @Param file formData file true "file"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Router /api/admin/upload [post]
func UploadFile(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_FAILED", "validation failed",
				service.FieldError{Field: "file", Message: "file_required"})
		}
		f := fileUpload(fh)
		stored, err := svc.Upload(c.UserContext(), &f)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"ok":       true,
			"path":     stored.Path,
			"filename": stored.Filename,
			"mimetype": stored.MimeType,
			"size":     stored.Size,
		})
	}
}

// ServeUpload streams a stored upload from whichever storage backend is configured.
//
// @Summary Download an upload
// @Tags uploads
// @Param key path string true "stored key"
// @Success 200 {file} file
// @Failure 404 {object} errorPayload
// @Router /uploads/{key} [get]
func ServeUpload(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc, info, err := store.Get(c.UserContext(), c.Params("key"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
			}
			return respondError(c, err)
		}
		ct := info.ContentType
		if ct == "" {
			ct = fiber.MIMEOctetStream
		}
		c.Set(fiber.HeaderContentType, ct)
		c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
		return c.SendStream(rc, int(info.Size))
	}
}

// IssueToken returns a signed admin token for clients that should not
// keep the shared secret.
//
// @Summary Issue an admin token
// @Tags admin
// @Security AdminToken
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 404 {object} errorPayload
// @Router /api/admin/token [post]
func IssueToken(issuer *auth.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if issuer == nil || !issuer.Enabled() {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "admin token is not configured")
		}
		token, exp, err := issuer.Issue()
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"ok": true, "token": token, "expiresAt": exp})
	}
}
