package oauth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const LocalsAccessToken = "oauthAccessToken"

// ExtractAccessToken reads the access token from the access_token query
// parameter, falling back to an "Authorization: Bearer" header, and stores it in
// c.Locals(LocalsAccessToken). Requests carrying neither are rejected with 400.
func ExtractAccessToken() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("access_token")
		if token == "" {
			auth := c.Get(fiber.HeaderAuthorization)
			if strings.HasPrefix(auth, "Bearer ") {
				token = strings.TrimSpace(auth[len("Bearer "):])
			}
		}
		if token == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "access_token is required",
			})
		}
		c.Locals(LocalsAccessToken, token)
		return c.Next()
	}
}

func AccessTokenFromLocals(c *fiber.Ctx) string {
	token, _ := c.Locals(LocalsAccessToken).(string)
	return token
}
