package mongostore

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/theleywin/friendlynk/src/models"
	"github.com/theleywin/friendlynk/src/repository"
)

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

type postRepository struct {
	posts    *mongo.Collection
	comments *mongo.Collection
	users    *mongo.Collection
	tx       runner
	logger   *zap.Logger
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	now := time.Now()
	post.Id = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	post.Likes = []primitive.ObjectID{}
	post.Comments = []primitive.ObjectID{}

	_, err := r.posts.InsertOne(ctx, post)
	return err
}

func (r *postRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	if err := r.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

func (r *postRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	if len(ids) == 0 {
		return []models.Post{}, nil
	}

	found, err := r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
	if err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]models.Post, len(found))
	for _, p := range found {
		byID[p.Id] = p
	}
	posts := make([]models.Post, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

func (r *postRepository) List(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	query := bson.M{}
	if !filter.Owner.IsZero() {
		query["userID"] = filter.Owner
	}
	return r.find(ctx, query, options.Find().SetSort(newestFirst))
}

func (r *postRepository) Search(ctx context.Context, query string) ([]models.Post, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	return r.find(ctx, bson.M{"content": pattern}, options.Find())
}

func (r *postRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Post, error) {
	cursor, err := r.posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, id primitive.ObjectID, update models.PostUpdate) (*models.Post, error) {
	set := bson.M{"updatedAt": time.Now()}
	for field, value := range update.Fields() {
		set[field] = value
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post models.Post
	if err := r.posts.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&post); err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

// Delete removes the comments, then the post, then bookmark references to
// it. A failure before the post is gone leaves it listing only the comments
// that still exist.
func (r *postRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.tx.run(ctx, func(ctx context.Context, compensate bool) (interface{}, error) {
		return nil, r.delete(ctx, id, compensate)
	})
	return err
}

func (r *postRepository) delete(ctx context.Context, id primitive.ObjectID, compensate bool) error {
	if _, err := r.comments.DeleteMany(ctx, bson.M{"post": id}); err != nil {
		if compensate {
			r.reconcileComments(ctx, id)
		}
		return err
	}

	res, err := r.posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		if compensate {
			r.reconcileComments(ctx, id)
		}
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}

	// Comments created between the two deletes were attached to a post that
	// no longer exists.
	if _, err := r.comments.DeleteMany(ctx, bson.M{"post": id}); err != nil {
		return r.leftover(err, compensate, "comments", id)
	}
	if _, err := r.users.UpdateMany(ctx,
		bson.M{"bookmarks": id},
		bson.M{"$pull": bson.M{"bookmarks": id}},
	); err != nil {
		return r.leftover(err, compensate, "bookmarks", id)
	}
	return nil
}

// leftover handles a cleanup failure after the post itself was deleted. In a
// transaction the error aborts the delete. Otherwise the delete stands and the
// leftovers stay unreachable, since hydration skips missing posts.
func (r *postRepository) leftover(err error, compensate bool, what string, id primitive.ObjectID) error {
	if !compensate {
		return err
	}
	r.logger.Warn("post deleted but cleanup failed",
		zap.String("post", id.Hex()),
		zap.String("cleanup", what),
		zap.Error(err),
	)
	return nil
}

// reconcileComments rewrites the post's comment list to the comments that
// still exist, keeping their order.
func (r *postRepository) reconcileComments(ctx context.Context, postID primitive.ObjectID) {
	post, err := r.FindByID(ctx, postID)
	if err != nil {
		r.logger.Error("failed to load post for comment reconciliation", zap.String("post", postID.Hex()), zap.Error(err))
		return
	}

	cursor, err := r.comments.Find(ctx, bson.M{"post": postID}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		r.logger.Error("failed to list comments for reconciliation", zap.String("post", postID.Hex()), zap.Error(err))
		return
	}
	var remaining []struct {
		Id primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &remaining); err != nil {
		r.logger.Error("failed to decode comments for reconciliation", zap.String("post", postID.Hex()), zap.Error(err))
		return
	}

	alive := make(map[primitive.ObjectID]bool, len(remaining))
	for _, c := range remaining {
		alive[c.Id] = true
	}
	kept := []primitive.ObjectID{}
	for _, id := range post.Comments {
		if alive[id] {
			kept = append(kept, id)
		}
	}

	if _, err := r.posts.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$set": bson.M{"comments": kept}}); err != nil {
		r.logger.Error("failed to reconcile post comments", zap.String("post", postID.Hex()), zap.Error(err))
	}
}

func (r *postRepository) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, int, error) {
	liked, err := toggle(ctx, r.posts, postID, "likes", userID)
	if err != nil {
		return false, 0, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": postID}}},
		{{Key: "$project", Value: bson.M{"count": bson.M{"$size": bson.M{"$ifNull": bson.A{"$likes", bson.A{}}}}}}},
	}
	cursor, err := r.posts.Aggregate(ctx, pipeline)
	if err != nil {
		return false, 0, err
	}
	defer cursor.Close(ctx)

	var counts []struct {
		Count int `bson:"count"`
	}
	if err := cursor.All(ctx, &counts); err != nil {
		return false, 0, err
	}
	if len(counts) == 0 {
		return false, 0, repository.ErrNotFound
	}
	return liked, counts[0].Count, nil
}
