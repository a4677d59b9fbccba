package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/devrobins/linkpost/internal/service"
)

// GetUserID returns the owner key for the request: the signed-in user's id,
// or nil for anonymous requests.
func GetUserID(c *fiber.Ctx) *int64 {
	v, ok := c.Locals("user_id").(string)
	if !ok || v == "" {
		return nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

func statusForError(err error) int {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrInvalidState):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrNotConnected), errors.Is(err, service.ErrTokenExpired), errors.Is(err, service.ErrNotSignedIn):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}
