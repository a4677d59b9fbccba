package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/devrobins/linkpost/internal/service"
)

type PublishHandler struct {
	s     service.PublishService
	stats service.StatsService
}

func NewPublishHandler(publish service.PublishService, stats service.StatsService) *PublishHandler {
	return &PublishHandler{s: publish, stats: stats}
}

func (h *PublishHandler) PublishNow(c *fiber.Ctx) error {
	userID := GetUserID(c)

	form, err := c.MultipartForm()
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse form",
		})
	}

	postID, err := h.s.PublishNow(c.Context(), userID, c.FormValue("content"), form.File["images"])
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"linkedin_post_id": postID,
		"message":          "Post published successfully",
	})
}

func (h *PublishHandler) ListPublished(c *fiber.Ctx) error {
	posts, err := h.s.ListPublished(c.Context(), GetUserID(c))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": "Unable to list published posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PublishHandler) RefreshStats(c *fiber.Ctx) error {
	updated, err := h.stats.RefreshForUser(c.Context(), GetUserID(c))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"updated": updated,
		"message": "Post statistics refreshed",
	})
}
