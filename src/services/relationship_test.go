package services

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theleywin/friendlynk/src/ecode"
	"github.com/theleywin/friendlynk/src/models"
)

// TestFollowRoundTrip follows and unfollows, checking both sides each time.
func TestFollowRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	following, err := f.svc.FollowToggle(ctx, alice.Id, bob.Id)
	if err != nil || !following {
		t.Fatalf("FollowToggle() = %v, %v, want true", following, err)
	}

	followers, err := f.svc.Followers(ctx, bob.Id)
	if err != nil {
		t.Fatalf("Followers() error = %v", err)
	}
	if len(followers) != 1 || followers[0].Username != "alice" {
		t.Errorf("Followers(bob) = %v, want [alice]", followers)
	}
	followed, err := f.svc.Following(ctx, alice.Id)
	if err != nil {
		t.Fatalf("Following() error = %v", err)
	}
	if len(followed) != 1 || followed[0].Username != "bob" {
		t.Errorf("Following(alice) = %v, want [bob]", followed)
	}

	following, err = f.svc.FollowToggle(ctx, alice.Id, bob.Id)
	if err != nil || following {
		t.Fatalf("FollowToggle() again = %v, %v, want false", following, err)
	}
	followers, _ = f.svc.Followers(ctx, bob.Id)
	if len(followers) != 0 {
		t.Errorf("Followers(bob) after unfollow = %v, want empty", followers)
	}

	got := f.events.types()
	want := []models.EventType{models.EventUserFollowed, models.EventUserUnfollowed}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestFollowRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")

	_, err := f.svc.FollowToggle(ctx, alice.Id, alice.Id)
	wantKind(t, err, ecode.SelfFollow)

	_, err = f.svc.FollowToggle(ctx, alice.Id, primitive.NewObjectID())
	wantKind(t, err, ecode.NotFound)

	user, _ := f.svc.Profile(ctx, alice.Id)
	if len(user.Following) != 0 || len(user.Followers) != 0 {
		t.Errorf("rejected follow changed state: %+v", user)
	}

	_, err = f.svc.Followers(ctx, primitive.NewObjectID())
	wantKind(t, err, ecode.NotFound)
}

// TestSuggestSkipsFollowed checks exclusion only; equal follower counts have
// no defined order.
func TestSuggestSkipsFollowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	carol := f.register(t, "carol")

	if _, err := f.svc.FollowToggle(ctx, alice.Id, bob.Id); err != nil {
		t.Fatalf("FollowToggle() error = %v", err)
	}

	got, err := f.svc.Suggest(ctx, alice.Id)
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if len(got) != 1 || got[0].Id != carol.Id {
		t.Errorf("Suggest(alice) = %v, want [carol]", got)
	}

	got, err = f.svc.Suggest(ctx, carol.Id)
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if len(got) != 2 || got[0].Id != bob.Id || got[0].FollowersCount != 1 {
		t.Errorf("Suggest(carol) = %v, want bob first", got)
	}
}
