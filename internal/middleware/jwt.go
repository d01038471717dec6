package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/provaboard/prova-api/internal/utils"
)

// Keep these exact values: the dashboard matches on statusCode 418 or the
// literal "Invalid token" message to run its session-expiry flow.
const invalidTokenMessage = "Invalid token"

// JWTProtected returns a middleware that validates JWT bearer tokens. Any
// missing, malformed or expired token is answered with 418 and the invalid
// token message.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.SendError(c, fiber.StatusTeapot, invalidTokenMessage)
		}

		const bearer = "Bearer "
		if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
			return utils.SendError(c, fiber.StatusTeapot, invalidTokenMessage)
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusTeapot, invalidTokenMessage)
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusTeapot, invalidTokenMessage)
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.SendError(c, fiber.StatusTeapot, invalidTokenMessage)
		}

		if subject, err := claims.GetSubject(); err == nil && subject != "" {
			c.Locals("user_id", subject)
		}
		if email, ok := claims["email"].(string); ok && email != "" {
			c.Locals("user_email", email)
		}

		return c.Next()
	}
}

// UserID returns the authenticated subject bound to the request, if any.
func UserID(c *fiber.Ctx) string {
	if value := c.Locals("user_id"); value != nil {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
