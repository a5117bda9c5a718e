package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theleywin/friendlynk/src/services"
)

// AuthCookie is the name of the session cookie.
const AuthCookie = "Authorization"

const userIDKey = "userId"

// ProtectRoute checks for a valid session token and attaches the caller id to
// the request context. The token is read from the session cookie first, then
// from an "Authorization: Bearer <token>" header.
func ProtectRoute(auth services.Auth) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.Authenticate(token(c))
		if err != nil {
			return err
		}

		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// UserID returns the caller id set by ProtectRoute.
func UserID(c *fiber.Ctx) primitive.ObjectID {
	id, _ := c.Locals(userIDKey).(primitive.ObjectID)
	return id
}

func token(c *fiber.Ctx) string {
	if cookie := c.Cookies(AuthCookie); cookie != "" {
		return cookie
	}

	header := c.Get(fiber.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
