package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/friendlynk/src/lib"
	"github.com/theleywin/friendlynk/src/middleware"
	"github.com/theleywin/friendlynk/src/services"
)

// ConnectionController serves the follow graph.
type ConnectionController struct {
	relationship services.Relationship
}

func NewConnectionController(relationship services.Relationship) *ConnectionController {
	return &ConnectionController{relationship: relationship}
}

// FollowUser follows the user in the path, or unfollows them if the caller
// already follows them.
func (cc *ConnectionController) FollowUser(c *fiber.Ctx) error {
	targetID, err := pathID(c, "user")
	if err != nil {
		return err
	}

	following, err := cc.relationship.FollowToggle(c.UserContext(), middleware.UserID(c), targetID)
	if err != nil {
		return err
	}

	msg := "Unfollowed user"
	if following {
		msg = "Followed user"
	}
	return lib.Success(c, fiber.StatusOK, msg, fiber.Map{"following": following})
}

func (cc *ConnectionController) GetFollowers(c *fiber.Ctx) error {
	id, err := pathID(c, "user")
	if err != nil {
		return err
	}

	followers, err := cc.relationship.Followers(c.UserContext(), id)
	if err != nil {
		return err
	}
	return lib.Success(c, fiber.StatusOK, "", fiber.Map{"followers": followers})
}

func (cc *ConnectionController) GetFollowing(c *fiber.Ctx) error {
	id, err := pathID(c, "user")
	if err != nil {
		return err
	}

	following, err := cc.relationship.Following(c.UserContext(), id)
	if err != nil {
		return err
	}
	return lib.Success(c, fiber.StatusOK, "", fiber.Map{"following": following})
}

// GetSuggestedConnections returns up to ten users the caller does not follow.
func (cc *ConnectionController) GetSuggestedConnections(c *fiber.Ctx) error {
	suggested, err := cc.relationship.Suggest(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return lib.Success(c, fiber.StatusOK, "", fiber.Map{"suggestedUsers": suggested})
}
