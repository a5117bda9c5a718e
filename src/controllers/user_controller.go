package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/friendlynk/src/lib"
	"github.com/theleywin/friendlynk/src/middleware"
	"github.com/theleywin/friendlynk/src/models"
	"github.com/theleywin/friendlynk/src/services"
)

type UserController struct {
	users   services.Users
	content services.Content
}

func NewUserController(svc *services.Service) *UserController {
	return &UserController{users: svc.Users, content: svc.Content}
}

// GetProfile returns the authenticated user's profile.
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	user, err := uc.users.Profile(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return lib.Success(c, fiber.StatusOK, "", fiber.Map{"user": user})
}

// UpdateProfile applies the non-empty fields of the body to the caller's profile.
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	var update models.ProfileUpdate
	if err := parseBody(c, &update); err != nil {
		return err
	}

	user, err := uc.users.UpdateProfile(c.UserContext(), middleware.UserID(c), update)
	if err != nil {
		return err
	}
	return lib.Success(c, fiber.StatusOK, "Profile updated successfully", fiber.Map{"user": user})
}

// GetPublicProfile returns another user's profile by id.
func (uc *UserController) GetPublicProfile(c *fiber.Ctx) error {
	id, err := pathID(c, "user")
	if err != nil {
		return err
	}

	user, err := uc.users.Profile(c.UserContext(), id)
	if err != nil {
		return err
	}
	return lib.Success(c, fiber.StatusOK, "", fiber.Map{"user": user})
}

// GetUsers pages through all users with the page and limit query params.
func (uc *UserController) GetUsers(c *fiber.Ctx) error {
	page := int64(c.QueryInt("page", 1))
	limit := int64(c.QueryInt("limit", 10))

	users, err := uc.users.List(c.UserContext(), page, limit)
	if err != nil {
		return err
	}
	return lib.Success(c, fiber.StatusOK, "", fiber.Map{"users": users})
}

func (uc *UserController) BookmarkPost(c *fiber.Ctx) error {
	postID, err := pathID(c, "post")
	if err != nil {
		return err
	}

	bookmarked, bookmarks, err := uc.content.BookmarkToggle(c.UserContext(), middleware.UserID(c), postID)
	if err != nil {
		return err
	}

	msg := "Post removed from bookmarks"
	if bookmarked {
		msg = "Post bookmarked"
	}
	return lib.Success(c, fiber.StatusOK, msg, fiber.Map{"bookmarks": bookmarks})
}

// GetBookmarks returns the caller's bookmarked posts, populated.
func (uc *UserController) GetBookmarks(c *fiber.Ctx) error {
	posts, err := uc.content.Bookmarks(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return lib.Success(c, fiber.StatusOK, "", fiber.Map{"bookmarks": posts})
}
