package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	gonanoid "github.com/matoous/go-nanoid/v2"

	config "github.com/devrobins/linkpost/configs"
	"github.com/devrobins/linkpost/internal/service"
	"github.com/devrobins/linkpost/pkg/utils"
)

const (
	actionLogin   = "login"
	actionConnect = "connect"
)

type AccountHandler struct {
	s   service.AccountService
	li  service.LinkedInService
	cfg config.Config
}

func NewAccountHandler(cfg config.Config, accounts service.AccountService, linkedin service.LinkedInService) *AccountHandler {
	return &AccountHandler{s: accounts, li: linkedin, cfg: cfg}
}

// Login starts the LinkedIn OAuth flow. action=login signs the visitor in,
// action=connect attaches a LinkedIn account to the current session.
func (h *AccountHandler) Login(c *fiber.Ctx) error {
	action := c.Query("action", actionLogin)
	if action != actionLogin && action != actionConnect {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown action",
		})
	}

	nonce, err := gonanoid.New()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	state := fmt.Sprintf("%s.%s", action, nonce)
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.StateCookieName,
		Value:    state,
		HTTPOnly: true,
		Secure:   false,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
	})

	return c.Redirect(h.li.AuthURL(state))
}

func (h *AccountHandler) LoginCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || state != c.Cookies(h.cfg.StateCookieName) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid OAuth state",
		})
	}
	c.ClearCookie(h.cfg.StateCookieName)

	action, _, _ := strings.Cut(state, ".")
	code := c.Query("code")

	if action == actionConnect {
		if err := h.s.ConnectCallback(c.Context(), code, GetUserID(c)); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "something went wrong",
			})
		}
		return c.Redirect(h.cfg.FrontendURL, fiber.StatusTemporaryRedirect)
	}

	userID, err := h.s.LoginCallback(c.Context(), code)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	token, err := utils.GenerateToken(h.cfg.SecretKey, fmt.Sprintf("%d", userID), 24*time.Hour)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		HTTPOnly: true,
		Secure:   false,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
		Expires:  time.Now().Add(24 * time.Hour),
	})

	return c.Redirect(h.cfg.FrontendURL, fiber.StatusTemporaryRedirect)
}

func (h *AccountHandler) Status(c *fiber.Ctx) error {
	status, err := h.s.Status(c.Context(), GetUserID(c))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": "Unable to check account status",
		})
	}

	return c.Status(fiber.StatusOK).JSON(status)
}

func (h *AccountHandler) Disconnect(c *fiber.Ctx) error {
	if err := h.s.Disconnect(c.Context(), GetUserID(c)); err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": "Unable to disconnect account",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "LinkedIn account disconnected",
	})
}
