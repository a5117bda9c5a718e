// Package controllers holds the Fiber handlers. Handlers parse the request,
// call a service and write the success envelope; every failure is returned
// to the app's error handler.
package controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theleywin/friendlynk/src/ecode"
	"github.com/theleywin/friendlynk/src/lib"
)

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return ecode.Wrap(ecode.Validation, "Invalid request body", err)
	}
	return nil
}

func pathID(c *fiber.Ctx, what string) (primitive.ObjectID, error) {
	return lib.ParseID(c.Params("id"), what)
}
