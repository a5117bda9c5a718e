package services

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theleywin/friendlynk/src/events"
	"github.com/theleywin/friendlynk/src/models"
)

type CreatePostInput struct {
	Content      string `json:"content"`
	ContentImage string `json:"contentImage"`
}

type contentService struct {
	*base
}

func newContentService(b *base) Content {
	return &contentService{base: b}
}

func (s *contentService) CreatePost(ctx context.Context, ownerID primitive.ObjectID, input CreatePostInput) (*models.PostDto, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, ErrContentRequired
	}

	post := &models.Post{
		UserID:       ownerID,
		Content:      input.Content,
		ContentImage: input.ContentImage,
	}
	if err := s.repo.Posts.Create(ctx, post); err != nil {
		return nil, s.storeError(err, nil, "create post")
	}

	return s.one(ctx, *post)
}

func (s *contentService) ListPosts(ctx context.Context, filter models.PostFilter) ([]models.PostDto, error) {
	posts, err := s.repo.Posts.List(ctx, filter)
	if err != nil {
		return nil, s.storeError(err, nil, "list posts")
	}
	return s.hydrate(ctx, posts)
}

// LikeToggle flips the caller's like and returns the new like count.
func (s *contentService) LikeToggle(ctx context.Context, userID, postID primitive.ObjectID) (bool, int, error) {
	post, err := s.repo.Posts.FindByID(ctx, postID)
	if err != nil {
		return false, 0, s.storeError(err, ErrPostNotFound, "find post")
	}

	liked, count, err := s.repo.Posts.ToggleLike(ctx, postID, userID)
	if err != nil {
		return false, 0, s.storeError(err, ErrPostNotFound, "toggle like")
	}

	if liked && post.UserID != userID {
		s.publish(ctx, events.WithPost(events.New(models.EventPostLiked, userID, post.UserID), postID))
	}
	return liked, count, nil
}

func (s *contentService) UpdatePost(ctx context.Context, userID, postID primitive.ObjectID, update models.PostUpdate) (*models.PostDto, error) {
	post, err := s.repo.Posts.FindByID(ctx, postID)
	if err != nil {
		return nil, s.storeError(err, ErrPostNotFound, "find post")
	}
	if post.UserID != userID {
		return nil, ErrNotPostOwner
	}

	updated, err := s.repo.Posts.Update(ctx, postID, update)
	if err != nil {
		return nil, s.storeError(err, ErrPostNotFound, "update post")
	}
	return s.one(ctx, *updated)
}

// DeletePost removes the post together with its comments.
func (s *contentService) DeletePost(ctx context.Context, userID, postID primitive.ObjectID) error {
	post, err := s.repo.Posts.FindByID(ctx, postID)
	if err != nil {
		return s.storeError(err, ErrPostNotFound, "find post")
	}
	if post.UserID != userID {
		return ErrNotPostDeleter
	}

	if err := s.repo.Posts.Delete(ctx, postID); err != nil {
		return s.storeError(err, ErrPostNotFound, "delete post")
	}
	return nil
}

func (s *contentService) AddComment(ctx context.Context, userID, postID primitive.ObjectID, text string) (*models.CommentDto, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrCommentRequired
	}

	post, err := s.repo.Posts.FindByID(ctx, postID)
	if err != nil {
		return nil, s.storeError(err, ErrPostNotFound, "find post")
	}

	comment := &models.Comment{UserID: userID, Post: postID, Text: text}
	if err := s.repo.Comments.Create(ctx, comment); err != nil {
		return nil, s.storeError(err, ErrPostNotFound, "create comment")
	}

	summaries, err := s.repo.Users.Summaries(ctx, []primitive.ObjectID{userID})
	if err != nil {
		return nil, s.storeError(err, nil, "load user summary")
	}
	owner, ok := summaries[userID]
	if !ok {
		owner = models.UserSummary{Id: userID}
	}

	if post.UserID != userID {
		event := events.New(models.EventPostCommented, userID, post.UserID)
		s.publish(ctx, events.WithComment(events.WithPost(event, postID), comment.Id))
	}

	dto := commentDto(*comment, owner)
	return &dto, nil
}

func (s *contentService) DeleteComment(ctx context.Context, userID, commentID primitive.ObjectID) error {
	comment, err := s.repo.Comments.FindByID(ctx, commentID)
	if err != nil {
		return s.storeError(err, ErrCommentNotFound, "find comment")
	}
	if comment.UserID != userID {
		return ErrNotCommentOwner
	}

	if err := s.repo.Comments.Delete(ctx, comment); err != nil {
		return s.storeError(err, ErrCommentNotFound, "delete comment")
	}
	return nil
}

// BookmarkToggle flips postID in the caller's bookmarks and returns them.
func (s *contentService) BookmarkToggle(ctx context.Context, userID, postID primitive.ObjectID) (bool, []primitive.ObjectID, error) {
	if _, err := s.repo.Posts.FindByID(ctx, postID); err != nil {
		return false, nil, s.storeError(err, ErrPostNotFound, "find post")
	}

	bookmarked, bookmarks, err := s.repo.Users.ToggleBookmark(ctx, userID, postID)
	if err != nil {
		return false, nil, s.storeError(err, ErrUserNotFound, "toggle bookmark")
	}
	return bookmarked, bookmarks, nil
}

// Bookmarks returns the caller's bookmarked posts in bookmark order.
func (s *contentService) Bookmarks(ctx context.Context, userID primitive.ObjectID) ([]models.PostDto, error) {
	user, err := s.repo.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, s.storeError(err, ErrUserNotFound, "find user")
	}

	posts, err := s.repo.Posts.FindByIDs(ctx, user.Bookmarks)
	if err != nil {
		return nil, s.storeError(err, nil, "load bookmarked posts")
	}
	return s.hydrate(ctx, posts)
}

func (s *contentService) one(ctx context.Context, post models.Post) (*models.PostDto, error) {
	dtos, err := s.hydrate(ctx, []models.Post{post})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}
