package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/theleywin/friendlynk/src/lib"
	"github.com/theleywin/friendlynk/src/models"
	"github.com/theleywin/friendlynk/src/repository"
)

const passwordCost = 10

type RegisterInput struct {
	Username string `json:"username" validate:"required"`
	Fullname string `json:"fullname"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authService struct {
	*base
	tokens *lib.TokenManager
}

func newAuthService(b *base, tokens *lib.TokenManager) Auth {
	return &authService{base: b, tokens: tokens}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if err := lib.Validate(input); err != nil {
		return nil, err
	}

	_, err := s.repo.Users.FindByUsername(ctx, input.Username)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, s.storeError(err, nil, "look up username")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), passwordCost)
	if err != nil {
		return nil, s.storeError(err, nil, "hash password")
	}

	user := &models.User{
		Username: input.Username,
		Fullname: input.Fullname,
		Email:    input.Email,
		Password: string(hash),
	}
	if err := s.repo.Users.Create(ctx, user); err != nil {
		return nil, s.storeError(err, nil, "create user")
	}

	s.logger.Sugar().Infof("user registered: %s", user.Id.Hex())
	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.User, string, error) {
	input.Email = strings.TrimSpace(input.Email)
	if err := lib.Validate(input); err != nil {
		return nil, "", err
	}

	user, err := s.repo.Users.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, "", s.storeError(err, ErrUserNotFound, "find user by email")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, "", ErrInvalidPass
	}

	token, err := s.tokens.Generate(user.Id)
	if err != nil {
		return nil, "", s.storeError(err, nil, "sign token")
	}

	user.Password = ""
	return user, token, nil
}

func (s *authService) Authenticate(token string) (primitive.ObjectID, error) {
	return s.tokens.Verify(token)
}
