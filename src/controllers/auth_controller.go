package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/friendlynk/src/lib"
	"github.com/theleywin/friendlynk/src/middleware"
	"github.com/theleywin/friendlynk/src/services"
)

type AuthController struct {
	auth   services.Auth
	secure bool
	ttl    time.Duration
}

func NewAuthController(auth services.Auth, cfg *lib.Config) *AuthController {
	return &AuthController{auth: auth, secure: cfg.CookieSecure, ttl: cfg.TokenTTL}
}

// Register creates an account. It does not log the user in.
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	if _, err := ac.auth.Register(c.UserContext(), input); err != nil {
		return err
	}
	return lib.Success(c, fiber.StatusCreated, "User created", nil)
}

// Login checks the credentials and sets the session cookie.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input services.LoginInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	user, token, err := ac.auth.Login(c.UserContext(), input)
	if err != nil {
		return err
	}

	c.Cookie(ac.cookie(token, time.Now().Add(ac.ttl)))
	return lib.Success(c, fiber.StatusOK, "Login success!", fiber.Map{"user": user})
}

// Logout clears the session cookie.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	c.Cookie(ac.cookie("", time.Now().Add(-time.Hour)))
	return lib.Success(c, fiber.StatusOK, "Logged out successfully", nil)
}

func (ac *AuthController) cookie(value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     middleware.AuthCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   ac.secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	}
}
