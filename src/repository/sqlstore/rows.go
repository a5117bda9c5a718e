package sqlstore

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theleywin/friendlynk/src/models"
)

// Identifiers are ObjectID hex strings so both stores hand out the same ids.

type userRow struct {
	ID           string `gorm:"primaryKey;size:24"`
	Username     string `gorm:"uniqueIndex;not null"`
	Fullname     string
	Email        string `gorm:"uniqueIndex;not null"`
	Password     string `gorm:"not null"`
	Bio          string
	ProfileImage string
	CoverImage   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

func (u userRow) summary() models.UserSummary {
	return models.UserSummary{
		Id:           oid(u.ID),
		Username:     u.Username,
		Fullname:     u.Fullname,
		ProfileImage: u.ProfileImage,
	}
}

// followRow is one edge: FollowerID follows FollowingID. The same row backs
// both the follower's following list and the target's followers list.
type followRow struct {
	ID          uint   `gorm:"primaryKey"`
	FollowerID  string `gorm:"size:24;not null;uniqueIndex:idx_follow_pair"`
	FollowingID string `gorm:"size:24;not null;uniqueIndex:idx_follow_pair;index"`
	CreatedAt   time.Time
}

func (followRow) TableName() string { return "follows" }

type bookmarkRow struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    string `gorm:"size:24;not null;uniqueIndex:idx_bookmark_pair"`
	PostID    string `gorm:"size:24;not null;uniqueIndex:idx_bookmark_pair;index"`
	CreatedAt time.Time
}

func (bookmarkRow) TableName() string { return "bookmarks" }

type postRow struct {
	ID           string `gorm:"primaryKey;size:24"`
	UserID       string `gorm:"size:24;not null;index"`
	Content      string `gorm:"type:text;not null"`
	ContentImage string
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
}

func (postRow) TableName() string { return "posts" }

type likeRow struct {
	ID        uint   `gorm:"primaryKey"`
	PostID    string `gorm:"size:24;not null;uniqueIndex:idx_like_pair"`
	UserID    string `gorm:"size:24;not null;uniqueIndex:idx_like_pair"`
	CreatedAt time.Time
}

func (likeRow) TableName() string { return "likes" }

type commentRow struct {
	ID        string `gorm:"primaryKey;size:24"`
	UserID    string `gorm:"size:24;not null"`
	PostID    string `gorm:"size:24;not null;index"`
	Text      string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (commentRow) TableName() string { return "comments" }

func (c commentRow) model() models.Comment {
	return models.Comment{
		Id:        oid(c.ID),
		UserID:    oid(c.UserID),
		Text:      c.Text,
		Post:      oid(c.PostID),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// oid parses an id written by this package; stored ids are always valid hex.
func oid(hex string) primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(hex)
	return id
}

func hexes(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}
