// Package services holds the business rules of the social network: who may
// change what, and how relationship and content state evolves.
package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/theleywin/friendlynk/src/events"
	"github.com/theleywin/friendlynk/src/lib"
	"github.com/theleywin/friendlynk/src/models"
	"github.com/theleywin/friendlynk/src/repository"
)

type Auth interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*models.User, string, error)
	Authenticate(token string) (primitive.ObjectID, error)
}

type Users interface {
	Profile(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, update models.ProfileUpdate) (*models.User, error)
	List(ctx context.Context, page, limit int64) ([]models.UserSummary, error)
}

type Relationship interface {
	FollowToggle(ctx context.Context, actor, target primitive.ObjectID) (bool, error)
	Followers(ctx context.Context, userID primitive.ObjectID) ([]models.UserSummary, error)
	Following(ctx context.Context, userID primitive.ObjectID) ([]models.UserSummary, error)
	Suggest(ctx context.Context, userID primitive.ObjectID) ([]models.SuggestedUser, error)
}

type Content interface {
	CreatePost(ctx context.Context, ownerID primitive.ObjectID, input CreatePostInput) (*models.PostDto, error)
	ListPosts(ctx context.Context, filter models.PostFilter) ([]models.PostDto, error)
	LikeToggle(ctx context.Context, userID, postID primitive.ObjectID) (bool, int, error)
	UpdatePost(ctx context.Context, userID, postID primitive.ObjectID, update models.PostUpdate) (*models.PostDto, error)
	DeletePost(ctx context.Context, userID, postID primitive.ObjectID) error
	AddComment(ctx context.Context, userID, postID primitive.ObjectID, text string) (*models.CommentDto, error)
	DeleteComment(ctx context.Context, userID, commentID primitive.ObjectID) error
	BookmarkToggle(ctx context.Context, userID, postID primitive.ObjectID) (bool, []primitive.ObjectID, error)
	Bookmarks(ctx context.Context, userID primitive.ObjectID) ([]models.PostDto, error)
}

type Searcher interface {
	Search(ctx context.Context, query string) ([]models.UserSummary, []models.PostDto, error)
}

type Service struct {
	Auth
	Users
	Relationship
	Content
	Searcher
}

func New(repo *repository.Repository, tokens *lib.TokenManager, publisher events.Publisher, logger *zap.Logger) *Service {
	b := &base{repo: repo, publisher: publisher, logger: logger}
	return &Service{
		Auth:         newAuthService(b, tokens),
		Users:        newUsersService(b),
		Relationship: newRelationshipService(b),
		Content:      newContentService(b),
		Searcher:     newSearchService(b),
	}
}

// base carries the dependencies shared by every service.
type base struct {
	repo      *repository.Repository
	publisher events.Publisher
	logger    *zap.Logger
}

// publish sends event without failing the caller; the write it describes has
// already succeeded.
func (b *base) publish(ctx context.Context, event models.Event) {
	if b.publisher == nil {
		return
	}
	if err := b.publisher.Publish(ctx, event); err != nil {
		b.logger.Sugar().Warnf("failed to publish %s event: %s", event.Type, err.Error())
	}
}
