package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/friendlynk/src/controllers"
)

// UserRoutes sets up profile, user listing and bookmark routes
func UserRoutes(api fiber.Router, uc *controllers.UserController, protect fiber.Handler) {
	api.Get("/profile", protect, uc.GetProfile)
	api.Put("/profile", protect, uc.UpdateProfile)
	api.Get("/user/:id", protect, uc.GetPublicProfile)
	api.Get("/users", protect, uc.GetUsers)

	api.Post("/posts/:id/bookmark", protect, uc.BookmarkPost)
	api.Get("/bookmarks", protect, uc.GetBookmarks)
}
