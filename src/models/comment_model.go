package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Comment struct {
	Id        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userID" bson:"userID"`
	Text      string             `json:"text" bson:"text"`
	Post      primitive.ObjectID `json:"post" bson:"post"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type CommentDto struct {
	Id        primitive.ObjectID `json:"_id"`
	User      UserSummary        `json:"userID"`
	Text      string             `json:"text"`
	Post      primitive.ObjectID `json:"post"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
