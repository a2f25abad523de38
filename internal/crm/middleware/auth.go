package middleware

import (
	"strings"

	"github.com/edvantage/crm-backend/internal/core/workspace"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const identityKey = "identity"

// Auth validates the bearer token and stashes the caller identity in the
// request locals. Tokens are issued by the external auth service; we only
// verify the shared-secret signature.
func Auth(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(401).JSON(fiber.Map{"error": "missing bearer token"})
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			return c.Status(401).JSON(fiber.Map{"error": "invalid token"})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"error": "invalid token claims"})
		}

		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "invalid subject claim"})
		}

		email, _ := claims["email"].(string)
		c.Locals(identityKey, &workspace.Identity{UserID: userID, Email: email})
		return c.Next()
	}
}

// Identity returns the authenticated caller, or nil on unauthenticated routes.
func Identity(c *fiber.Ctx) *workspace.Identity {
	id, _ := c.Locals(identityKey).(*workspace.Identity)
	return id
}
