package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/friendlynk/src/controllers"
)

// AuthRoutes sets up registration, login and logout
func AuthRoutes(api fiber.Router, ac *controllers.AuthController, protect fiber.Handler) {
	api.Post("/register", ac.Register)
	api.Post("/login", ac.Login)
	api.Get("/logout", protect, ac.Logout)
	api.Post("/logout", protect, ac.Logout)
}
