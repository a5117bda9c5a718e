// Package repository declares the identity and content store contracts. The
// mongostore and sqlstore packages implement them.
package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theleywin/friendlynk/src/models"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)

// ToggleRetries bounds how often a toggle re-evaluates membership after
// losing a race to a concurrent toggle on the same pair.
const ToggleRetries = 3

// ErrToggleContention is returned when a toggle keeps losing races.
var ErrToggleContention = errors.New("toggle contention, retry later")

type Users interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	// Update applies the supplied profile fields and returns the new document.
	Update(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error)
	List(ctx context.Context, skip, limit int64) ([]models.UserSummary, error)
	// Suggest returns users other than exclude and not in skip, most followed first.
	Suggest(ctx context.Context, exclude primitive.ObjectID, skip []primitive.ObjectID, limit int64) ([]models.SuggestedUser, error)
	// Summaries resolves ids to summaries; unknown ids are absent from the map.
	Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error)
	Search(ctx context.Context, query string) ([]models.UserSummary, error)
	// ToggleFollow flips actor->target and keeps both sides symmetric.
	// It reports whether actor follows target afterwards.
	ToggleFollow(ctx context.Context, actor, target primitive.ObjectID) (bool, error)
	// ToggleBookmark flips postID in the user's bookmarks and returns the new list.
	ToggleBookmark(ctx context.Context, userID, postID primitive.ObjectID) (bool, []primitive.ObjectID, error)
}

type Posts interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	// FindByIDs returns the existing posts in the order of ids.
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error)
	// List returns posts newest first.
	List(ctx context.Context, filter models.PostFilter) ([]models.Post, error)
	Update(ctx context.Context, id primitive.ObjectID, update models.PostUpdate) (*models.Post, error)
	// Delete removes the post with its comments and bookmark references.
	Delete(ctx context.Context, id primitive.ObjectID) error
	// ToggleLike flips userID in the post's likes and returns the new count.
	ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, int, error)
	Search(ctx context.Context, query string) ([]models.Post, error)
}

type Comments interface {
	// Create stores the comment and appends it to its post. ErrNotFound means
	// the post does not exist and nothing was written.
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error)
	// Delete removes the comment and its reference on the parent post.
	Delete(ctx context.Context, comment *models.Comment) error
}

// Repository groups the stores used by the services.
type Repository struct {
	Users    Users
	Posts    Posts
	Comments Comments
	close    func(ctx context.Context) error
}

func New(users Users, posts Posts, comments Comments, close func(ctx context.Context) error) *Repository {
	return &Repository{Users: users, Posts: posts, Comments: comments, close: close}
}

// Close releases the underlying connection.
func (r *Repository) Close(ctx context.Context) error {
	if r.close == nil {
		return nil
	}
	return r.close(ctx)
}
