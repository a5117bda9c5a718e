package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theleywin/friendlynk/src/events"
	"github.com/theleywin/friendlynk/src/models"
)

const suggestionLimit = 10

type relationshipService struct {
	*base
}

func newRelationshipService(b *base) Relationship {
	return &relationshipService{base: b}
}

// FollowToggle follows target if actor does not follow it yet and unfollows
// it otherwise. It reports whether actor follows target afterwards.
func (s *relationshipService) FollowToggle(ctx context.Context, actor, target primitive.ObjectID) (bool, error) {
	if actor == target {
		return false, ErrSelfFollow
	}

	if _, err := s.repo.Users.FindByID(ctx, target); err != nil {
		return false, s.storeError(err, ErrUserNotFound, "find follow target")
	}

	following, err := s.repo.Users.ToggleFollow(ctx, actor, target)
	if err != nil {
		return false, s.storeError(err, ErrUserNotFound, "toggle follow")
	}

	kind := models.EventUserUnfollowed
	if following {
		kind = models.EventUserFollowed
	}
	s.publish(ctx, events.New(kind, actor, target))

	return following, nil
}

func (s *relationshipService) Followers(ctx context.Context, userID primitive.ObjectID) ([]models.UserSummary, error) {
	user, err := s.repo.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, s.storeError(err, ErrUserNotFound, "find user")
	}
	return s.resolve(ctx, user.Followers)
}

func (s *relationshipService) Following(ctx context.Context, userID primitive.ObjectID) ([]models.UserSummary, error) {
	user, err := s.repo.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, s.storeError(err, ErrUserNotFound, "find user")
	}
	return s.resolve(ctx, user.Following)
}

// resolve maps ids to summaries, keeping order and dropping unknown users.
func (s *relationshipService) resolve(ctx context.Context, ids []primitive.ObjectID) ([]models.UserSummary, error) {
	summaries, err := s.repo.Users.Summaries(ctx, ids)
	if err != nil {
		return nil, s.storeError(err, nil, "load user summaries")
	}

	out := make([]models.UserSummary, 0, len(ids))
	for _, id := range ids {
		if summary, ok := summaries[id]; ok {
			out = append(out, summary)
		}
	}
	return out, nil
}

// Suggest lists users the caller does not follow yet, most followed first.
// Users with equal follower counts come back in storage order.
func (s *relationshipService) Suggest(ctx context.Context, userID primitive.ObjectID) ([]models.SuggestedUser, error) {
	user, err := s.repo.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, s.storeError(err, ErrUserNotFound, "find user")
	}

	suggested, err := s.repo.Users.Suggest(ctx, user.Id, user.Following, suggestionLimit)
	if err != nil {
		return nil, s.storeError(err, nil, "suggest users")
	}
	return suggested, nil
}
