package services

import (
	"errors"

	"github.com/theleywin/friendlynk/src/ecode"
	"github.com/theleywin/friendlynk/src/repository"
)

var (
	ErrUsernameTaken = ecode.ConflictError("Username already exists")
	ErrEmailTaken    = ecode.ConflictError("Email already exists")
	ErrUserNotFound  = ecode.NotFoundError("User not found")
	ErrInvalidPass   = ecode.New(ecode.InvalidCredential, "Invalid password")
	ErrSelfFollow    = ecode.New(ecode.SelfFollow, "You can't follow yourself")

	ErrPostNotFound     = ecode.NotFoundError("Post not found")
	ErrCommentNotFound  = ecode.NotFoundError("Comment not found")
	ErrContentRequired  = ecode.ValidationError("Content is required")
	ErrCommentRequired  = ecode.ValidationError("Comment text is required")
	ErrQueryRequired    = ecode.ValidationError("Search query is required")
	ErrNotPostOwner     = ecode.ForbiddenError("You can only edit your own posts")
	ErrNotPostDeleter   = ecode.ForbiddenError("You can only delete your own posts")
	ErrNotCommentOwner  = ecode.ForbiddenError("You can only delete your own comments")
	ErrConcurrentUpdate = ecode.ConflictError("Too many concurrent updates, try again")
)

// storeError translates a repository failure. notFound is returned for
// repository.ErrNotFound; anything unrecognised is logged and becomes Internal.
func (b *base) storeError(err error, notFound error, action string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound) && notFound != nil:
		return notFound
	case errors.Is(err, repository.ErrDuplicateUsername):
		return ErrUsernameTaken
	case errors.Is(err, repository.ErrDuplicateEmail):
		return ErrEmailTaken
	case errors.Is(err, repository.ErrToggleContention):
		return ErrConcurrentUpdate
	}

	b.logger.Sugar().Errorf("failed to %s: %s", action, err.Error())
	return ecode.InternalError(err)
}
