package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theleywin/friendlynk/src/models"
)

// hydrate attaches author summaries and full comments to posts. Comments
// that no longer exist are skipped.
func (b *base) hydrate(ctx context.Context, posts []models.Post) ([]models.PostDto, error) {
	var commentIDs []primitive.ObjectID
	for _, p := range posts {
		commentIDs = append(commentIDs, p.Comments...)
	}

	comments, err := b.repo.Comments.FindByIDs(ctx, commentIDs)
	if err != nil {
		return nil, b.storeError(err, nil, "load comments")
	}
	commentByID := make(map[primitive.ObjectID]models.Comment, len(comments))

	seen := map[primitive.ObjectID]bool{}
	var userIDs []primitive.ObjectID
	addUser := func(id primitive.ObjectID) {
		if !seen[id] {
			seen[id] = true
			userIDs = append(userIDs, id)
		}
	}
	for _, p := range posts {
		addUser(p.UserID)
	}
	for _, c := range comments {
		commentByID[c.Id] = c
		addUser(c.UserID)
	}

	summaries, err := b.repo.Users.Summaries(ctx, userIDs)
	if err != nil {
		return nil, b.storeError(err, nil, "load user summaries")
	}
	summary := func(id primitive.ObjectID) models.UserSummary {
		if s, ok := summaries[id]; ok {
			return s
		}
		return models.UserSummary{Id: id}
	}

	dtos := make([]models.PostDto, 0, len(posts))
	for _, p := range posts {
		dto := models.PostDto{
			Id:           p.Id,
			User:         summary(p.UserID),
			Content:      p.Content,
			ContentImage: p.ContentImage,
			Likes:        p.Likes,
			Comments:     make([]models.CommentDto, 0, len(p.Comments)),
			CreatedAt:    p.CreatedAt,
			UpdatedAt:    p.UpdatedAt,
		}
		if dto.Likes == nil {
			dto.Likes = []primitive.ObjectID{}
		}
		for _, id := range p.Comments {
			c, ok := commentByID[id]
			if !ok {
				continue
			}
			dto.Comments = append(dto.Comments, commentDto(c, summary(c.UserID)))
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}

func commentDto(c models.Comment, owner models.UserSummary) models.CommentDto {
	return models.CommentDto{
		Id:        c.Id,
		User:      owner,
		Text:      c.Text,
		Post:      c.Post,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
