// Package mongostore implements the repository contracts on MongoDB.
//
// Membership toggles are conditional single-document updates: an element is
// pushed only by a filter that requires its absence and pulled only by a
// filter that requires its presence, so ModifiedCount tells which branch won.
// Writes spanning two documents run inside a transaction when enabled and
// otherwise undo their first step if the second one fails.
package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/theleywin/friendlynk/src/repository"
)

const (
	usersCollection    = "users"
	postsCollection    = "posts"
	commentsCollection = "comments"
)

// Options tunes the store.
type Options struct {
	// Transactions requires a replica set or sharded cluster.
	Transactions bool
}

// New builds a repository backed by db.
func New(client *mongo.Client, db *mongo.Database, opts Options, logger *zap.Logger) *repository.Repository {
	tx := runner{client: client, enabled: opts.Transactions}
	users := db.Collection(usersCollection)
	posts := db.Collection(postsCollection)
	comments := db.Collection(commentsCollection)

	return repository.New(
		&userRepository{users: users, tx: tx, logger: logger},
		&postRepository{posts: posts, comments: comments, users: users, tx: tx, logger: logger},
		&commentRepository{comments: comments, posts: posts, tx: tx, logger: logger},
		func(ctx context.Context) error {
			if client == nil {
				return nil
			}
			return client.Disconnect(ctx)
		},
	)
}

// EnsureIndexes creates the unique and lookup indexes the store relies on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		postsCollection: {
			{Keys: bson.D{{Key: "userID", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		commentsCollection: {
			{Keys: bson.D{{Key: "post", Value: 1}}},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}

// runner executes multi-document writes. The callback learns whether it must
// compensate failures itself.
type runner struct {
	client  *mongo.Client
	enabled bool
}

func (r runner) run(ctx context.Context, fn func(ctx context.Context, compensate bool) (interface{}, error)) (interface{}, error) {
	if !r.enabled || r.client == nil {
		return fn(ctx, true)
	}

	session, err := r.client.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	return session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return fn(sc, false)
	})
}

// collection is the part of *mongo.Collection the membership helpers need.
type collection interface {
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

// addToSet appends value to the array field of document id unless present.
func addToSet(ctx context.Context, coll collection, id interface{}, field string, value interface{}) (bool, error) {
	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": id, field: bson.M{"$ne": value}},
		bson.M{
			"$push": bson.M{field: value},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// pull removes value from the array field of document id if present.
func pull(ctx context.Context, coll collection, id interface{}, field string, value interface{}) (bool, error) {
	res, err := coll.UpdateOne(ctx,
		bson.M{"_id": id, field: value},
		bson.M{
			"$pull": bson.M{field: value},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func exists(ctx context.Context, coll collection, id interface{}) (bool, error) {
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// toggle flips value in the array field of document id and reports whether
// it is present afterwards.
func toggle(ctx context.Context, coll collection, id interface{}, field string, value interface{}) (bool, error) {
	for attempt := 0; attempt < repository.ToggleRetries; attempt++ {
		removed, err := pull(ctx, coll, id, field, value)
		if err != nil {
			return false, err
		}
		if removed {
			return false, nil
		}

		added, err := addToSet(ctx, coll, id, field, value)
		if err != nil {
			return false, err
		}
		if added {
			return true, nil
		}

		ok, err := exists(ctx, coll, id)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, repository.ErrNotFound
		}
	}
	return false, repository.ErrToggleContention
}

func notFound(err error) error {
	if err == mongo.ErrNoDocuments {
		return repository.ErrNotFound
	}
	return err
}
