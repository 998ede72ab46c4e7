package handler

import (
	"github.com/gofiber/fiber/v2"

	"agencysite/internal/model"
	"agencysite/internal/service"
)

// ListPublicNews returns active news, newest first.
//
// @Summary Public news feed
// @Tags news
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/news [get]
func ListPublicNews(svc service.NewsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListPublic(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"ok": true, "items": items})
	}
}

// ListNews returns every news item in storage order.
//
// @Summary List all news
// @Tags admin
// @Security AdminToken
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} errorPayload
// @Router /api/admin/news [get]
func ListNews(svc service.NewsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListAll(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"ok": true, "items": items})
	}
}

// CreateNews adds a news item.
//
// @Summary Create news
// @Tags admin
// @Security AdminToken
// @Accept json
// @Produce json
// @Param body body model.NewsInput true "news item"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Router /api/admin/news [post]
func CreateNews(svc service.NewsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.NewsInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}
		item, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"ok": true, "item": item})
	}
}

// UpdateNews merges the present fields into an existing item.
//
// @Summary Update news
// @Tags admin
// @Security AdminToken
// @Accept json
// @Produce json
// @Param id path string true "news id"
// @Param body body model.NewsPatch true "fields to change"
// @Success 200 {object} map[string]any
// @Failure 404 {object} errorPayload
// @Router /api/admin/news/{id} [put]
func UpdateNews(svc service.NewsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p model.NewsPatch
		if err := c.BodyParser(&p); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}
		item, err := svc.Update(c.UserContext(), c.Params("id"), p)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"ok": true, "item": item})
	}
}

// DeleteNews removes a news item.
//
// @Summary Delete news
// @Tags admin
// @Security AdminToken
// @Param id path string true "news id"
// @Success 200 {object} map[string]any
// @Failure 404 {object} errorPayload
// @Router /api/admin/news/{id} [delete]
func DeleteNews(svc service.NewsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"ok": true})
	}
}
