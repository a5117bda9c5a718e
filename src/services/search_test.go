package services

import (
	"context"
	"testing"

	"github.com/theleywin/friendlynk/src/ecode"
)

func TestSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	f.register(t, "bob")
	f.post(t, alice.Id, "Hello World")
	f.post(t, alice.Id, "something else")

	users, posts, err := f.svc.Search(ctx, "ALI")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(users) != 1 || users[0].Username != "alice" {
		t.Errorf("Search(ALI) users = %v, want [alice]", users)
	}
	if len(posts) != 0 {
		t.Errorf("Search(ALI) posts = %v, want none", posts)
	}

	_, posts, err = f.svc.Search(ctx, " world ")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(posts) != 1 || posts[0].User.Username != "alice" {
		t.Errorf("Search(world) posts = %v", posts)
	}

	users, posts, err = f.svc.Search(ctx, "zzz")
	if err != nil {
		t.Fatalf("Search(zzz) error = %v", err)
	}
	if len(users) != 0 || len(posts) != 0 {
		t.Errorf("Search(zzz) = %v, %v, want empty", users, posts)
	}

	f.post(t, alice.Id, "Visiting the ÉCOLE today")
	_, posts, err = f.svc.Search(ctx, "école")
	if err != nil {
		t.Fatalf("Search(école) error = %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("Search(école) matched %d posts, want 1", len(posts))
	}

	_, _, err = f.svc.Search(ctx, "  ")
	wantKind(t, err, ecode.Validation)
}
