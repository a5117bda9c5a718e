package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/theleywin/friendlynk/src/ecode"
	"github.com/theleywin/friendlynk/src/lib"
	"github.com/theleywin/friendlynk/src/models"
	"github.com/theleywin/friendlynk/src/repository"
	"github.com/theleywin/friendlynk/src/repository/repotest"
)

type recorder struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recorder) Publish(_ context.Context, e models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) types() []models.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	svc    *Service
	repo   *repository.Repository
	events *recorder
	tokens *lib.TokenManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := repotest.SQLite(t)
	events := &recorder{}
	tokens := lib.NewTokenManager("test-secret", time.Hour)
	return &fixture{
		svc:    New(repo, tokens, events, zap.NewNop()),
		repo:   repo,
		events: events,
		tokens: tokens,
	}
}

// register creates a user through the auth service.
func (f *fixture) register(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), RegisterInput{
		Username: username,
		Fullname: username + " Example",
		Email:    username + "@x.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register(%s) error = %v", username, err)
	}
	return user
}

func (f *fixture) post(t *testing.T, owner primitive.ObjectID, content string) *models.PostDto {
	t.Helper()
	post, err := f.svc.CreatePost(context.Background(), owner, CreatePostInput{Content: content})
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	return post
}

func wantKind(t *testing.T, err error, want ecode.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("error = nil, want %v", want)
	}
	if got := ecode.KindOf(err); got != want {
		t.Fatalf("error kind = %v (%v), want %v", got, err, want)
	}
}
