package models

import (
	"encoding/json"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func strPtr(s string) *string { return &s }

// TestProfileUpdateFields treats nil and empty values as absent.
func TestProfileUpdateFields(t *testing.T) {
	update := ProfileUpdate{
		Username: strPtr("alice2"),
		Fullname: strPtr(""),
		Bio:      strPtr("hi"),
	}

	got := update.Fields()
	if len(got) != 2 {
		t.Fatalf("Fields() = %v, want 2 entries", got)
	}
	if got["username"] != "alice2" || got["bio"] != "hi" {
		t.Errorf("Fields() = %v", got)
	}
	if _, ok := got["fullname"]; ok {
		t.Error("Fields() kept an empty fullname")
	}
}

func TestPostUpdateFields(t *testing.T) {
	tests := []struct {
		name   string
		update PostUpdate
		want   int
	}{
		{"empty", PostUpdate{}, 0},
		{"blank content", PostUpdate{Content: strPtr("")}, 0},
		{"content", PostUpdate{Content: strPtr("edited")}, 1},
		{"both", PostUpdate{Content: strPtr("edited"), ContentImage: strPtr("http://img")}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(tt.update.Fields()); got != tt.want {
				t.Errorf("len(Fields()) = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestUserJSONOmitsPassword guards the one field that must never leave the server.
func TestUserJSONOmitsPassword(t *testing.T) {
	u := User{Id: primitive.NewObjectID(), Username: "alice", Password: "$2a$10$hash"}

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(data), "hash") || strings.Contains(string(data), "password") {
		t.Errorf("Marshal() = %s, leaked password", data)
	}
}

func TestMembershipHelpers(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	u := User{Following: []primitive.ObjectID{a}, Bookmarks: []primitive.ObjectID{b}}
	p := Post{Likes: []primitive.ObjectID{a}}

	if !u.IsFollowing(a) || u.IsFollowing(b) {
		t.Error("IsFollowing() mismatch")
	}
	if !u.HasBookmarked(b) || u.HasBookmarked(a) {
		t.Error("HasBookmarked() mismatch")
	}
	if !p.LikedBy(a) || p.LikedBy(b) {
		t.Error("LikedBy() mismatch")
	}
}
