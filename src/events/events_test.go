package events

import (
	"context"
	"encoding/json"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/theleywin/friendlynk/src/models"
)

func TestNewEvent(t *testing.T) {
	actor, recipient, post := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	e := WithPost(New(models.EventPostLiked, actor, recipient), post)
	if e.Id == "" || e.CreatedAt.IsZero() {
		t.Errorf("New() = %+v, want id and timestamp", e)
	}
	if e.Post == nil || *e.Post != post {
		t.Errorf("Post = %v, want %v", e.Post, post)
	}

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var back map[string]interface{}
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back["type"] != "post.liked" {
		t.Errorf("type = %v, want post.liked", back["type"])
	}
	if _, ok := back["comment"]; ok {
		t.Error("comment should be omitted when unset")
	}
}

// TestBindingsCoverEveryType makes sure no event type is published into the void.
func TestBindingsCoverEveryType(t *testing.T) {
	bound := map[models.EventType]bool{}
	for _, types := range bindings {
		for _, typ := range types {
			bound[typ] = true
		}
	}
	for _, typ := range []models.EventType{
		models.EventUserFollowed,
		models.EventUserUnfollowed,
		models.EventPostLiked,
		models.EventPostCommented,
	} {
		if !bound[typ] {
			t.Errorf("%s is not bound to any queue", typ)
		}
	}
}

func TestLogPublisher(t *testing.T) {
	p := NewLogPublisher(zap.NewNop())
	if err := p.Publish(context.Background(), New(models.EventUserFollowed, primitive.NewObjectID(), primitive.NewObjectID())); err != nil {
		t.Errorf("Publish() error = %v", err)
	}
}
