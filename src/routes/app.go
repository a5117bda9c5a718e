// Package routes wires the controllers into a Fiber app under /api.
package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/theleywin/friendlynk/src/controllers"
	"github.com/theleywin/friendlynk/src/lib"
	"github.com/theleywin/friendlynk/src/middleware"
	"github.com/theleywin/friendlynk/src/services"
)

// NewApp builds the HTTP API with its middleware and every route registered.
func NewApp(cfg *lib.Config, svc *services.Service, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "friendlynk",
		ErrorHandler:          lib.ErrorHandler(logger),
		DisableStartupMessage: true,
	})

	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(logger))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.ClientURL,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return lib.Success(c, fiber.StatusOK, "ok", nil)
	})

	api := app.Group("/api")
	protect := middleware.ProtectRoute(svc.Auth)

	AuthRoutes(api, controllers.NewAuthController(svc.Auth, cfg), protect)
	UserRoutes(api, controllers.NewUserController(svc), protect)
	ConnectionRoutes(api, controllers.NewConnectionController(svc.Relationship), protect)
	PostRoutes(api, controllers.NewPostController(svc), protect)

	return app
}
