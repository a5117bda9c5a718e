package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/theleywin/friendlynk/src/lib"
	"github.com/theleywin/friendlynk/src/middleware"
	"github.com/theleywin/friendlynk/src/models"
	"github.com/theleywin/friendlynk/src/services"
)

type PostController struct {
	content services.Content
	search  services.Searcher
}

func NewPostController(svc *services.Service) *PostController {
	return &PostController{content: svc.Content, search: svc.Searcher}
}

func (pc *PostController) CreatePost(c *fiber.Ctx) error {
	var input services.CreatePostInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	post, err := pc.content.CreatePost(c.UserContext(), middleware.UserID(c), input)
	if err != nil {
		return err
	}
	return lib.Success(c, fiber.StatusCreated, "Post created", fiber.Map{"post": post})
}

// GetFeedPosts returns every post, newest first.
func (pc *PostController) GetFeedPosts(c *fiber.Ctx) error {
	posts, err := pc.content.ListPosts(c.UserContext(), models.PostFilter{})
	if err != nil {
		return err
	}
	return lib.Success(c, fiber.StatusOK, "", fiber.Map{"posts": posts})
}

func (pc *PostController) GetMyPosts(c *fiber.Ctx) error {
	posts, err := pc.content.ListPosts(c.UserContext(), models.PostFilter{Owner: middleware.UserID(c)})
	if err != nil {
		return err
	}
	return lib.Success(c, fiber.StatusOK, "", fiber.Map{"posts": posts})
}

// LikePost toggles the caller's like and returns the new like count.
func (pc *PostController) LikePost(c *fiber.Ctx) error {
	postID, err := pathID(c, "post")
	if err != nil {
		return err
	}

	liked, count, err := pc.content.LikeToggle(c.UserContext(), middleware.UserID(c), postID)
	if err != nil {
		return err
	}

	msg := "Post unliked"
	if liked {
		msg = "Post liked"
	}
	return lib.Success(c, fiber.StatusOK, msg, fiber.Map{"likes": count})
}

func (pc *PostController) UpdatePost(c *fiber.Ctx) error {
	postID, err := pathID(c, "post")
	if err != nil {
		return err
	}

	var update models.PostUpdate
	if err := parseBody(c, &update); err != nil {
		return err
	}

	post, err := pc.content.UpdatePost(c.UserContext(), middleware.UserID(c), postID, update)
	if err != nil {
		return err
	}
	return lib.Success(c, fiber.StatusOK, "Post updated successfully", fiber.Map{"post": post})
}

// DeletePost removes the post and its comments.
func (pc *PostController) DeletePost(c *fiber.Ctx) error {
	postID, err := pathID(c, "post")
	if err != nil {
		return err
	}

	if err := pc.content.DeletePost(c.UserContext(), middleware.UserID(c), postID); err != nil {
		return err
	}
	return lib.Success(c, fiber.StatusOK, "Post deleted successfully", nil)
}

func (pc *PostController) CreateComment(c *fiber.Ctx) error {
	postID, err := pathID(c, "post")
	if err != nil {
		return err
	}

	var input struct {
		Text string `json:"text"`
	}
	if err := parseBody(c, &input); err != nil {
		return err
	}

	comment, err := pc.content.AddComment(c.UserContext(), middleware.UserID(c), postID, input.Text)
	if err != nil {
		return err
	}
	return lib.Success(c, fiber.StatusCreated, "Comment added", fiber.Map{"comment": comment})
}

func (pc *PostController) DeleteComment(c *fiber.Ctx) error {
	commentID, err := pathID(c, "comment")
	if err != nil {
		return err
	}

	if err := pc.content.DeleteComment(c.UserContext(), middleware.UserID(c), commentID); err != nil {
		return err
	}
	return lib.Success(c, fiber.StatusOK, "Comment deleted", nil)
}

// Search matches users and posts against the query param.
func (pc *PostController) Search(c *fiber.Ctx) error {
	users, posts, err := pc.search.Search(c.UserContext(), c.Query("query"))
	if err != nil {
		return err
	}
	return lib.Success(c, fiber.StatusOK, "", fiber.Map{"users": users, "posts": posts})
}
