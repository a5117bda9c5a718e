package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/theleywin/friendlynk/src/models"
	"github.com/theleywin/friendlynk/src/repository"
)

type commentRepository struct {
	comments *mongo.Collection
	posts    *mongo.Collection
	tx       runner
	logger   *zap.Logger
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	now := time.Now()
	comment.Id = primitive.NewObjectID()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	_, err := r.tx.run(ctx, func(ctx context.Context, compensate bool) (interface{}, error) {
		if _, err := r.comments.InsertOne(ctx, comment); err != nil {
			return nil, err
		}

		res, err := r.posts.UpdateOne(ctx,
			bson.M{"_id": comment.Post},
			bson.M{
				"$push": bson.M{"comments": comment.Id},
				"$set":  bson.M{"updatedAt": now},
			},
		)
		if err == nil && res.MatchedCount == 0 {
			err = repository.ErrNotFound
		}
		if err != nil && compensate {
			if _, undoErr := r.comments.DeleteOne(ctx, bson.M{"_id": comment.Id}); undoErr != nil {
				r.logger.Error("failed to remove orphan comment",
					zap.String("comment", comment.Id.Hex()),
					zap.Error(undoErr),
				)
			}
		}
		return nil, err
	})
	return err
}

func (r *commentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	if err := r.comments.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		return nil, notFound(err)
	}
	return &comment, nil
}

func (r *commentRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error) {
	if len(ids) == 0 {
		return []models.Comment{}, nil
	}

	cursor, err := r.comments.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var found []models.Comment
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]models.Comment, len(found))
	for _, c := range found {
		byID[c.Id] = c
	}
	comments := make([]models.Comment, 0, len(found))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			comments = append(comments, c)
		}
	}
	return comments, nil
}

// Delete removes the comment, then its reference on the post. If the second
// step fails the comment is restored.
func (r *commentRepository) Delete(ctx context.Context, comment *models.Comment) error {
	_, err := r.tx.run(ctx, func(ctx context.Context, compensate bool) (interface{}, error) {
		res, err := r.comments.DeleteOne(ctx, bson.M{"_id": comment.Id})
		if err != nil {
			return nil, err
		}
		if res.DeletedCount == 0 {
			return nil, repository.ErrNotFound
		}

		if _, err := r.posts.UpdateOne(ctx,
			bson.M{"_id": comment.Post},
			bson.M{
				"$pull": bson.M{"comments": comment.Id},
				"$set":  bson.M{"updatedAt": time.Now()},
			},
		); err != nil {
			if compensate {
				if _, undoErr := r.comments.InsertOne(ctx, comment); undoErr != nil {
					r.logger.Error("failed to restore comment",
						zap.String("comment", comment.Id.Hex()),
						zap.Error(undoErr),
					)
				}
			}
			return nil, err
		}
		return nil, nil
	})
	return err
}
