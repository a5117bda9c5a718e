package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a domain fact published after a successful write.
type Event struct {
	Id        string              `json:"id"`
	Type      EventType           `json:"type"`
	Actor     primitive.ObjectID  `json:"actor"`
	Recipient primitive.ObjectID  `json:"recipient"`
	Post      *primitive.ObjectID `json:"post,omitempty"`
	Comment   *primitive.ObjectID `json:"comment,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
}

type EventType string

const (
	EventUserFollowed   EventType = "user.followed"
	EventUserUnfollowed EventType = "user.unfollowed"
	EventPostLiked      EventType = "post.liked"
	EventPostCommented  EventType = "post.commented"
)
