package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/friendlynk/src/controllers"
)

// ConnectionRoutes sets up follow toggling, follower lists and suggestions
func ConnectionRoutes(api fiber.Router, cc *controllers.ConnectionController, protect fiber.Handler) {
	api.Post("/follow/:id", protect, cc.FollowUser)
	api.Get("/user/:id/followers", protect, cc.GetFollowers)
	api.Get("/user/:id/following", protect, cc.GetFollowing)
	api.Get("/suggest-users", protect, cc.GetSuggestedConnections)
}
