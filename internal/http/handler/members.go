package handler

import (
	"github.com/gofiber/fiber/v2"

	"agencysite/internal/model"
	"agencysite/internal/service"
)

// ListPublicMembers returns active members, optionally of one category.
//
// @Summary Public member roster
// @Tags members
// @Produce json
// @Param category query string false "Ladies, Men, Mrs or Kids"
// @Success 200 {object} map[string]any
// @Router /api/members [get]
func ListPublicMembers(svc service.MemberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListPublic(c.UserContext(), c.Query("category"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"ok": true, "items": items})
	}
}

// @Summary List all members
// @Tags admin
// @Security AdminToken
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/admin/members [get]
func ListMembers(svc service.MemberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListAll(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"ok": true, "items": items})
	}
}

// @Summary Create member
// @Tags admin
// @Security AdminToken
// @Accept json
// @Param body body model.MemberInput true "member"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Router /api/admin/members [post]
func CreateMember(svc service.MemberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.MemberInput
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

// @Summary Update member
// @Tags admin
// @Security AdminToken
// @Accept json
// @Param id path string true "member id"
// @Param body body model.MemberPatch true "fields to change"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/admin/members/{id} [put]
func UpdateMember(svc service.MemberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p model.MemberPatch
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

// @Summary Delete member
// @Tags admin
// @Security AdminToken
// @Param id path string true "member id"
// @Success 200 {object} map[string]any
// @Failure 404 {object} errorPayload
// @Router /api/admin/members/{id} [delete]
func DeleteMember(svc service.MemberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"ok": true})
	}
}
