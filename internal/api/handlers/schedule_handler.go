package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"github.com/devrobins/linkpost/internal/queue"
	"github.com/devrobins/linkpost/internal/service"
	"github.com/devrobins/linkpost/internal/transfer"
)

type ScheduleHandler struct {
	s           service.ScheduleService
	AsynqClient *asynq.Client
}

func NewScheduleHandler(service service.ScheduleService, asynqClient *asynq.Client) *ScheduleHandler {
	return &ScheduleHandler{s: service, AsynqClient: asynqClient}
}

func (h *ScheduleHandler) CreateScheduledPost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	form, err := c.MultipartForm()
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse form",
		})
	}

	post, delay, err := h.s.Schedule(c.Context(), userID, &transfer.ScheduleCreation{
		Content:     c.FormValue("content"),
		ScheduledAt: c.FormValue("scheduled_at"),
	}, form.File["images"])
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	// Best-effort prompt dispatch; the recurring timer will still pick the
	// row up if the task queue is unavailable.
	if err := queue.EnqueueDispatch(h.AsynqClient, delay); err != nil {
		slog.Info(err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":           post.ID,
		"content":      post.Content,
		"scheduled_at": post.ScheduledAt.Format(time.RFC3339),
		"status":       post.Status,
		"message":      "Post scheduled successfully",
	})
}

func (h *ScheduleHandler) ListScheduledPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	posts, err := h.s.List(c.Context(), userID, c.Query("date_range"), c.Query("search"))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": "Unable to list scheduled posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *ScheduleHandler) UpdateScheduledPost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	var upd transfer.ScheduleUpdate
	if err := c.BodyParser(&upd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse body",
		})
	}

	post, err := h.s.Update(c.Context(), userID, int64(postID), &upd)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *ScheduleHandler) CancelScheduledPost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	if err := h.s.Cancel(c.Context(), userID, int64(postID)); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Scheduled post cancelled",
	})
}

// RunDispatch triggers an immediate dispatch run through the task queue.
func (h *ScheduleHandler) RunDispatch(c *fiber.Ctx) error {
	if err := queue.EnqueueDispatch(h.AsynqClient, 0); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to trigger dispatch",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Dispatch triggered",
	})
}
