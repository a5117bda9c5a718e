package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/friendlynk/src/controllers"
)

// PostRoutes sets up post, like, comment and search routes
func PostRoutes(api fiber.Router, pc *controllers.PostController, protect fiber.Handler) {
	api.Post("/posts", protect, pc.CreatePost)
	api.Get("/posts", protect, pc.GetFeedPosts)
	api.Get("/my-posts", protect, pc.GetMyPosts)
	api.Post("/posts/:id/like", protect, pc.LikePost)
	api.Put("/posts/:id", protect, pc.UpdatePost)
	api.Delete("/posts/:id", protect, pc.DeletePost)

	api.Post("/posts/:id/comments", protect, pc.CreateComment)
	api.Delete("/comments/:id", protect, pc.DeleteComment)

	api.Get("/search", protect, pc.Search)
}
