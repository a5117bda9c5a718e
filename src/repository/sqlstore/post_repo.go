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

var postColumns = map[string]string{
	"content":      "content",
	"contentImage": "content_image",
}

type postRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	post.Id = primitive.NewObjectID()
	row := postRow{
		ID:           post.Id.Hex(),
		UserID:       post.UserID.Hex(),
		Content:      post.Content,
		ContentImage: post.ContentImage,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}

	post.CreatedAt = row.CreatedAt
	post.UpdatedAt = row.UpdatedAt
	post.Likes = []primitive.ObjectID{}
	post.Comments = []primitive.ObjectID{}
	return nil
}

func (r *postRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	db := r.db.WithContext(ctx)

	var row postRow
	if err := db.Where("id = ?", id.Hex()).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	posts, err := r.attach(db, []postRow{row})
	if err != nil {
		return nil, err
	}
	return &posts[0], nil
}

func (r *postRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	if len(ids) == 0 {
		return []models.Post{}, nil
	}
	db := r.db.WithContext(ctx)

	var rows []postRow
	if err := db.Where("id IN ?", hexes(ids)).Find(&rows).Error; err != nil {
		return nil, err
	}
	found, err := r.attach(db, rows)
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
	db := r.db.WithContext(ctx)

	q := db.Order("created_at DESC, id DESC")
	if !filter.Owner.IsZero() {
		q = q.Where("user_id = ?", filter.Owner.Hex())
	}

	var rows []postRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.attach(db, rows)
}

func (r *postRepository) Search(ctx context.Context, query string) ([]models.Post, error) {
	db := r.db.WithContext(ctx)

	var rows []postRow
	if err := db.Where(`unicode_lower(content) LIKE ? ESCAPE '\'`, containsPattern(query)).Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.attach(db, rows)
}

// attach converts rows to posts with their likes and comment ids filled in.
func (r *postRepository) attach(db *gorm.DB, rows []postRow) ([]models.Post, error) {
	posts := make([]models.Post, 0, len(rows))
	if len(rows) == 0 {
		return posts, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	var likes []likeRow
	if err := db.Where("post_id IN ?", ids).Order("id").Find(&likes).Error; err != nil {
		return nil, err
	}
	var comments []commentRow
	if err := db.Select("id", "post_id").Where("post_id IN ?", ids).Order("created_at, id").Find(&comments).Error; err != nil {
		return nil, err
	}

	likesByPost := map[string][]primitive.ObjectID{}
	for _, l := range likes {
		likesByPost[l.PostID] = append(likesByPost[l.PostID], oid(l.UserID))
	}
	commentsByPost := map[string][]primitive.ObjectID{}
	for _, c := range comments {
		commentsByPost[c.PostID] = append(commentsByPost[c.PostID], oid(c.ID))
	}

	for _, row := range rows {
		post := models.Post{
			Id:           oid(row.ID),
			UserID:       oid(row.UserID),
			Content:      row.Content,
			ContentImage: row.ContentImage,
			Likes:        likesByPost[row.ID],
			Comments:     commentsByPost[row.ID],
			CreatedAt:    row.CreatedAt,
			UpdatedAt:    row.UpdatedAt,
		}
		if post.Likes == nil {
			post.Likes = []primitive.ObjectID{}
		}
		if post.Comments == nil {
			post.Comments = []primitive.ObjectID{}
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, id primitive.ObjectID, update models.PostUpdate) (*models.Post, error) {
	changes := map[string]interface{}{"updated_at": time.Now()}
	for field, value := range update.Fields() {
		changes[postColumns[field]] = value
	}

	res := r.db.WithContext(ctx).Model(&postRow{}).Where("id = ?", id.Hex()).Updates(changes)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, repository.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *postRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, "posts", id.Hex()); err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id.Hex()).Delete(&bookmarkRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id.Hex()).Delete(&likeRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id.Hex()).Delete(&commentRow{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id.Hex()).Delete(&postRow{}).Error
	})
}

func (r *postRepository) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, int, error) {
	var (
		liked bool
		count int64
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, "posts", postID.Hex()); err != nil {
			return err
		}

		res := tx.Where("post_id = ? AND user_id = ?", postID.Hex(), userID.Hex()).Delete(&likeRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			liked = true
			if err := tx.Create(&likeRow{PostID: postID.Hex(), UserID: userID.Hex()}).Error; err != nil {
				return err
			}
		}

		return tx.Model(&likeRow{}).Where("post_id = ?", postID.Hex()).Count(&count).Error
	})
	if err != nil {
		return false, 0, err
	}
	return liked, int(count), nil
}
