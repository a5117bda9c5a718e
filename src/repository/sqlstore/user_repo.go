package sqlstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/theleywin/friendlynk/src/models"
	"github.com/theleywin/friendlynk/src/repository"
)

var profileColumns = map[string]string{
	"username":     "username",
	"fullname":     "fullname",
	"email":        "email",
	"bio":          "bio",
	"profileImage": "profile_image",
	"coverImage":   "cover_image",
}

type userRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.Id = primitive.NewObjectID()
	row := userRow{
		ID:           user.Id.Hex(),
		Username:     user.Username,
		Fullname:     user.Fullname,
		Email:        user.Email,
		Password:     user.Password,
		Bio:          user.Bio,
		ProfileImage: user.ProfileImage,
		CoverImage:   user.CoverImage,
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return duplicateError(err)
	}

	user.CreatedAt = row.CreatedAt
	user.UpdatedAt = row.UpdatedAt
	user.Followers = []primitive.ObjectID{}
	user.Following = []primitive.ObjectID{}
	user.Bookmarks = []primitive.ObjectID{}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, "id = ?", id.Hex())
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *userRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	db := r.db.WithContext(ctx)

	var row userRow
	if err := db.Where(query, arg).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	return r.load(db, row)
}

// load assembles the document view of a user from its row and edge tables.
func (r *userRepository) load(db *gorm.DB, row userRow) (*models.User, error) {
	user := &models.User{
		Id:           oid(row.ID),
		Username:     row.Username,
		Fullname:     row.Fullname,
		Email:        row.Email,
		Password:     row.Password,
		Bio:          row.Bio,
		ProfileImage: row.ProfileImage,
		CoverImage:   row.CoverImage,
		Followers:    []primitive.ObjectID{},
		Following:    []primitive.ObjectID{},
		Bookmarks:    []primitive.ObjectID{},
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}

	var edges []followRow
	if err := db.Where("follower_id = ? OR following_id = ?", row.ID, row.ID).Order("id").Find(&edges).Error; err != nil {
		return nil, err
	}
	for _, e := range edges {
		if e.FollowerID == row.ID {
			user.Following = append(user.Following, oid(e.FollowingID))
		}
		if e.FollowingID == row.ID {
			user.Followers = append(user.Followers, oid(e.FollowerID))
		}
	}

	bookmarks, err := r.bookmarks(db, row.ID)
	if err != nil {
		return nil, err
	}
	user.Bookmarks = bookmarks
	return user, nil
}

func (r *userRepository) bookmarks(db *gorm.DB, userID string) ([]primitive.ObjectID, error) {
	var rows []bookmarkRow
	if err := db.Where("user_id = ?", userID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, b := range rows {
		ids = append(ids, oid(b.PostID))
	}
	return ids, nil
}

func (r *userRepository) Update(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	db := r.db.WithContext(ctx)

	changes := map[string]interface{}{"updated_at": time.Now()}
	for field, value := range update.Fields() {
		changes[profileColumns[field]] = value
	}

	res := db.Model(&userRow{}).Where("id = ?", id.Hex()).Updates(changes)
	if res.Error != nil {
		return nil, duplicateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, repository.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *userRepository) List(ctx context.Context, skip, limit int64) ([]models.UserSummary, error) {
	var rows []userRow
	err := r.db.WithContext(ctx).
		Order("id").
		Offset(int(skip)).
		Limit(int(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return summaries(rows), nil
}

func (r *userRepository) Suggest(ctx context.Context, exclude primitive.ObjectID, skip []primitive.ObjectID, limit int64) ([]models.SuggestedUser, error) {
	q := r.db.WithContext(ctx).
		Table("users").
		Select("users.id, users.username, users.fullname, users.profile_image, COUNT(follows.id) AS followers_count").
		Joins("LEFT JOIN follows ON follows.following_id = users.id").
		Where("users.id <> ?", exclude.Hex())
	if len(skip) > 0 {
		q = q.Where("users.id NOT IN ?", hexes(skip))
	}

	var rows []struct {
		ID             string
		Username       string
		Fullname       string
		ProfileImage   string
		FollowersCount int
	}
	err := q.Group("users.id").
		Order("followers_count DESC, users.id ASC").
		Limit(int(limit)).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	suggested := make([]models.SuggestedUser, 0, len(rows))
	for _, row := range rows {
		suggested = append(suggested, models.SuggestedUser{
			UserSummary: models.UserSummary{
				Id:           oid(row.ID),
				Username:     row.Username,
				Fullname:     row.Fullname,
				ProfileImage: row.ProfileImage,
			},
			FollowersCount: row.FollowersCount,
		})
	}
	return suggested, nil
}

func (r *userRepository) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	result := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []userRow
	if err := r.db.WithContext(ctx).Where("id IN ?", hexes(ids)).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[oid(row.ID)] = row.summary()
	}
	return result, nil
}

func (r *userRepository) Search(ctx context.Context, query string) ([]models.UserSummary, error) {
	pattern := containsPattern(query)

	var rows []userRow
	err := r.db.WithContext(ctx).
		Where(`unicode_lower(username) LIKE ? ESCAPE '\' OR unicode_lower(COALESCE(fullname, '')) LIKE ? ESCAPE '\'`, pattern, pattern).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return summaries(rows), nil
}

func (r *userRepository) ToggleFollow(ctx context.Context, actor, target primitive.ObjectID) (bool, error) {
	var following bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range []primitive.ObjectID{actor, target} {
			if err := mustExist(tx, "users", id.Hex()); err != nil {
				return err
			}
		}

		res := tx.Where("follower_id = ? AND following_id = ?", actor.Hex(), target.Hex()).Delete(&followRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			following = false
			return nil
		}

		following = true
		return tx.Create(&followRow{FollowerID: actor.Hex(), FollowingID: target.Hex()}).Error
	})
	if err != nil {
		return false, err
	}
	return following, nil
}

func (r *userRepository) ToggleBookmark(ctx context.Context, userID, postID primitive.ObjectID) (bool, []primitive.ObjectID, error) {
	var (
		bookmarked bool
		list       []primitive.ObjectID
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, "users", userID.Hex()); err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND post_id = ?", userID.Hex(), postID.Hex()).Delete(&bookmarkRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			bookmarked = true
			if err := tx.Create(&bookmarkRow{UserID: userID.Hex(), PostID: postID.Hex()}).Error; err != nil {
				return err
			}
		}

		var err error
		list, err = r.bookmarks(tx, userID.Hex())
		return err
	})
	if err != nil {
		return false, nil, err
	}
	return bookmarked, list, nil
}

func summaries(rows []userRow) []models.UserSummary {
	out := make([]models.UserSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.summary())
	}
	return out
}
