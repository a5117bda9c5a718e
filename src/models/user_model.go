package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	Id           primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Username     string               `json:"username" bson:"username"`
	Fullname     string               `json:"fullname" bson:"fullname"`
	Email        string               `json:"email" bson:"email"`
	Password     string               `json:"-" bson:"password"`
	Bio          string               `json:"bio" bson:"bio"`
	ProfileImage string               `json:"profileImage" bson:"profileImage"`
	CoverImage   string               `json:"coverImage" bson:"coverImage"`
	Followers    []primitive.ObjectID `json:"followers" bson:"followers"`
	Following    []primitive.ObjectID `json:"following" bson:"following"`
	Bookmarks    []primitive.ObjectID `json:"bookmarks" bson:"bookmarks"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// Summary returns the denormalized form embedded in posts, comments and lists.
func (u User) Summary() UserSummary {
	return UserSummary{
		Id:           u.Id,
		Username:     u.Username,
		Fullname:     u.Fullname,
		ProfileImage: u.ProfileImage,
	}
}

// IsFollowing reports whether the user follows id.
func (u User) IsFollowing(id primitive.ObjectID) bool {
	return containsID(u.Following, id)
}

// HasBookmarked reports whether postID is in the user's bookmarks.
func (u User) HasBookmarked(postID primitive.ObjectID) bool {
	return containsID(u.Bookmarks, postID)
}

type UserSummary struct {
	Id           primitive.ObjectID `json:"_id" bson:"_id"`
	Username     string             `json:"username" bson:"username"`
	Fullname     string             `json:"fullname" bson:"fullname"`
	ProfileImage string             `json:"profileImage" bson:"profileImage"`
}

type SuggestedUser struct {
	UserSummary    `bson:",inline"`
	FollowersCount int `json:"followersCount" bson:"followersCount"`
}

// ProfileUpdate carries the optional fields of a profile edit. A nil field is
// absent; an empty string is treated the same way.
type ProfileUpdate struct {
	Username     *string `json:"username,omitempty"`
	Fullname     *string `json:"fullname,omitempty"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Bio          *string `json:"bio,omitempty"`
	ProfileImage *string `json:"profileImage,omitempty"`
	CoverImage   *string `json:"coverImage,omitempty"`
}

// Fields returns the supplied values keyed by document field name.
func (p ProfileUpdate) Fields() map[string]string {
	fields := map[string]string{}
	set := func(name string, v *string) {
		if v != nil && *v != "" {
			fields[name] = *v
		}
	}
	set("username", p.Username)
	set("fullname", p.Fullname)
	set("email", p.Email)
	set("bio", p.Bio)
	set("profileImage", p.ProfileImage)
	set("coverImage", p.CoverImage)
	return fields
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
