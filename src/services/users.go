package services

import (
	"context"
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theleywin/friendlynk/src/lib"
	"github.com/theleywin/friendlynk/src/models"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type usersService struct {
	*base
}

func newUsersService(b *base) Users {
	return &usersService{base: b}
}

func (s *usersService) Profile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.repo.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, s.storeError(err, ErrUserNotFound, "find user")
	}
	user.Password = ""
	return user, nil
}

func (s *usersService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	if err := lib.Validate(update); err != nil {
		return nil, err
	}

	user, err := s.repo.Users.Update(ctx, userID, update)
	if err != nil {
		return nil, s.storeError(err, ErrUserNotFound, "update profile")
	}
	user.Password = ""
	return user, nil
}

// List pages through users. page starts at 1.
func (s *usersService) List(ctx context.Context, page, limit int64) ([]models.UserSummary, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	// A skip past MaxInt64 cannot be expressed; such pages are empty.
	if page-1 > math.MaxInt64/limit {
		return []models.UserSummary{}, nil
	}

	users, err := s.repo.Users.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, s.storeError(err, nil, "list users")
	}
	return users, nil
}
