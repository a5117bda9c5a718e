package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Post struct {
	Id           primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	UserID       primitive.ObjectID   `json:"userID" bson:"userID"`
	Content      string               `json:"content" bson:"content"`
	ContentImage string               `json:"contentImage" bson:"contentImage"`
	Likes        []primitive.ObjectID `json:"likes" bson:"likes"`
	Comments     []primitive.ObjectID `json:"comments" bson:"comments"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// LikedBy reports whether userID is in the post's likes.
func (p Post) LikedBy(userID primitive.ObjectID) bool {
	return containsID(p.Likes, userID)
}

// PostFilter selects posts for listing. A zero Owner selects every post.
type PostFilter struct {
	Owner primitive.ObjectID
}

// PostUpdate carries the optional fields of a post edit. Empty strings are
// treated as absent.
type PostUpdate struct {
	Content      *string `json:"content,omitempty"`
	ContentImage *string `json:"contentImage,omitempty"`
}

// Fields returns the supplied values keyed by document field name.
func (p PostUpdate) Fields() map[string]string {
	fields := map[string]string{}
	if p.Content != nil && *p.Content != "" {
		fields["content"] = *p.Content
	}
	if p.ContentImage != nil && *p.ContentImage != "" {
		fields["contentImage"] = *p.ContentImage
	}
	return fields
}

type PostDto struct {
	Id           primitive.ObjectID   `json:"_id"`
	User         UserSummary          `json:"userID"`
	Content      string               `json:"content"`
	ContentImage string               `json:"contentImage"`
	Likes        []primitive.ObjectID `json:"likes"`
	Comments     []CommentDto         `json:"comments"`
	CreatedAt    time.Time            `json:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt"`
}
