package lib

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/theleywin/friendlynk/src/ecode"
)

// Success writes the {success, msg, ...payload} envelope.
func Success(c *fiber.Ctx, status int, msg string, payload fiber.Map) error {
	body := fiber.Map{"success": true}
	if msg != "" {
		body["msg"] = msg
	}
	for k, v := range payload {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

// ErrorResponse returns the failure envelope for err.
func ErrorResponse(err error) (int, fiber.Map) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fiber.Map{"success": false, "msg": fe.Message}
	}

	kind := ecode.KindOf(err)
	return kind.Status(), fiber.Map{
		"success": false,
		"msg":     ecode.Message(err),
		"code":    kind.String(),
	}
}

// ErrorHandler is the single place where errors become HTTP responses.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status, body := ErrorResponse(err)
		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		return c.Status(status).JSON(body)
	}
}
