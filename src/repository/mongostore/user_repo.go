package mongostore

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/theleywin/friendlynk/src/models"
	"github.com/theleywin/friendlynk/src/repository"
)

var summaryProjection = bson.M{
	"username":     1,
	"fullname":     1,
	"profileImage": 1,
}

type userRepository struct {
	users  *mongo.Collection
	tx     runner
	logger *zap.Logger
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.Id = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Followers = []primitive.ObjectID{}
	user.Following = []primitive.ObjectID{}
	user.Bookmarks = []primitive.ObjectID{}

	if _, err := r.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateError(err)
		}
		return err
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.users.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now()}
	for field, value := range update.Fields() {
		set[field] = value
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateError(err)
		}
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, skip, limit int64) ([]models.UserSummary, error) {
	opts := options.Find().
		SetProjection(summaryProjection).
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)

	return r.findSummaries(ctx, bson.M{}, opts)
}

func (r *userRepository) Suggest(ctx context.Context, exclude primitive.ObjectID, skip []primitive.ObjectID, limit int64) ([]models.SuggestedUser, error) {
	if skip == nil {
		skip = []primitive.ObjectID{}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": bson.M{"$ne": exclude, "$nin": skip}}}},
		{{Key: "$addFields", Value: bson.M{
			"followersCount": bson.M{"$size": bson.M{"$ifNull": bson.A{"$followers", bson.A{}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "followersCount", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.M{
			"username":       1,
			"fullname":       1,
			"profileImage":   1,
			"followersCount": 1,
		}}},
	}

	cursor, err := r.users.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	suggested := []models.SuggestedUser{}
	if err := cursor.All(ctx, &suggested); err != nil {
		return nil, err
	}
	return suggested, nil
}

func (r *userRepository) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	result := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	summaries, err := r.findSummaries(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(summaryProjection),
	)
	if err != nil {
		return nil, err
	}
	for _, s := range summaries {
		result[s.Id] = s
	}
	return result, nil
}

func (r *userRepository) Search(ctx context.Context, query string) ([]models.UserSummary, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"username": pattern},
		bson.M{"fullname": pattern},
	}}
	return r.findSummaries(ctx, filter, options.Find().SetProjection(summaryProjection))
}

func (r *userRepository) findSummaries(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.UserSummary, error) {
	cursor, err := r.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	summaries := []models.UserSummary{}
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *userRepository) ToggleFollow(ctx context.Context, actor, target primitive.ObjectID) (bool, error) {
	res, err := r.tx.run(ctx, func(ctx context.Context, compensate bool) (interface{}, error) {
		return r.toggleFollow(ctx, actor, target, compensate)
	})
	if err != nil {
		return false, err
	}
	return res.(bool), nil
}

func (r *userRepository) toggleFollow(ctx context.Context, actor, target primitive.ObjectID, compensate bool) (bool, error) {
	following, err := toggle(ctx, r.users, actor, "following", target)
	if err != nil {
		return false, err
	}

	err = mirrorFollower(ctx, r.users, actor, target, following)
	if err == nil {
		return following, nil
	}

	if compensate {
		var undoErr error
		if following {
			_, undoErr = pull(ctx, r.users, actor, "following", target)
		} else {
			_, undoErr = addToSet(ctx, r.users, actor, "following", target)
		}
		if undoErr != nil {
			r.logger.Error("failed to revert following after followers update failed",
				zap.String("actor", actor.Hex()),
				zap.String("target", target.Hex()),
				zap.Error(undoErr),
			)
		}
	}
	return false, err
}

// mirrorFollower makes target's followers agree with actor's following. A
// concurrent toggle of the same pair can flip following after the write, so
// the write repeats until the check that follows it agrees.
func mirrorFollower(ctx context.Context, users collection, actor, target primitive.ObjectID, following bool) error {
	for {
		var err error
		if following {
			_, err = addToSet(ctx, users, target, "followers", actor)
		} else {
			_, err = pull(ctx, users, target, "followers", actor)
		}
		if err != nil {
			return err
		}

		n, err := users.CountDocuments(ctx, bson.M{"_id": actor, "following": target}, options.Count().SetLimit(1))
		if err != nil {
			return err
		}
		if now := n > 0; now != following {
			following = now
			if err := ctx.Err(); err != nil {
				return err
			}
			continue
		}
		return nil
	}
}

func (r *userRepository) ToggleBookmark(ctx context.Context, userID, postID primitive.ObjectID) (bool, []primitive.ObjectID, error) {
	bookmarked, err := toggle(ctx, r.users, userID, "bookmarks", postID)
	if err != nil {
		return false, nil, err
	}

	var doc struct {
		Bookmarks []primitive.ObjectID `bson:"bookmarks"`
	}
	opts := options.FindOne().SetProjection(bson.M{"bookmarks": 1})
	if err := r.users.FindOne(ctx, bson.M{"_id": userID}, opts).Decode(&doc); err != nil {
		return false, nil, notFound(err)
	}
	if doc.Bookmarks == nil {
		doc.Bookmarks = []primitive.ObjectID{}
	}
	return bookmarked, doc.Bookmarks, nil
}

func duplicateError(err error) error {
	if strings.Contains(err.Error(), "email") {
		return repository.ErrDuplicateEmail
	}
	return repository.ErrDuplicateUsername
}
