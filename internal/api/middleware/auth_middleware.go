package middleware

import (
	"github.com/gofiber/fiber/v2"

	config "github.com/devrobins/linkpost/configs"
	"github.com/devrobins/linkpost/pkg/utils"
)

type AuthMiddleware struct {
	cfg config.Config
}

func NewAuthMiddleware(cfg config.Config) *AuthMiddleware {
	return &AuthMiddleware{cfg: cfg}
}

// OptionalAuth resolves the owner key for the request. A valid session
// cookie yields the signed-in user's id; anything else leaves the request
// anonymous, which is a regular owner value rather than an error.
func (m *AuthMiddleware) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(m.cfg.CookieName)
		if tokenString == "" {
			return c.Next()
		}

		claims, err := utils.ValidateToken(m.cfg.SecretKey, tokenString)
		if err != nil {
			c.Cookie(&fiber.Cookie{
				Name:   m.cfg.CookieName,
				Value:  "",
				Path:   "/",
				MaxAge: -1, // Delete cookie
			})
			return c.Next()
		}

		c.Locals("user_id", claims.UserID)
		return c.Next()
	}
}
