package client

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theleywin/friendlynk/src/models"
)

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return nil
	}
	return append([]primitive.ObjectID{}, ids...)
}

func cloneUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	out := *u
	out.Followers = cloneIDs(u.Followers)
	out.Following = cloneIDs(u.Following)
	out.Bookmarks = cloneIDs(u.Bookmarks)
	return &out
}

func clonePost(p models.PostDto) models.PostDto {
	p.Likes = cloneIDs(p.Likes)
	if p.Comments != nil {
		p.Comments = append([]models.CommentDto{}, p.Comments...)
	}
	return p
}

func clonePosts(posts []models.PostDto) []models.PostDto {
	if posts == nil {
		return nil
	}
	out := make([]models.PostDto, len(posts))
	for i, p := range posts {
		out[i] = clonePost(p)
	}
	return out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append([]T{}, s...)
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
