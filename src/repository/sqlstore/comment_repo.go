package sqlstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/theleywin/friendlynk/src/models"
	"github.com/theleywin/friendlynk/src/repository"
)

type commentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	comment.Id = primitive.NewObjectID()
	row := commentRow{
		ID:     comment.Id.Hex(),
		UserID: comment.UserID.Hex(),
		PostID: comment.Post.Hex(),
		Text:   comment.Text,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, "posts", row.PostID); err != nil {
			return err
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return tx.Model(&postRow{}).Where("id = ?", row.PostID).Update("updated_at", row.CreatedAt).Error
	})
	if err != nil {
		return err
	}

	comment.CreatedAt = row.CreatedAt
	comment.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *commentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var row commentRow
	if err := r.db.WithContext(ctx).Where("id = ?", id.Hex()).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	comment := row.model()
	return &comment, nil
}

func (r *commentRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error) {
	if len(ids) == 0 {
		return []models.Comment{}, nil
	}

	var rows []commentRow
	if err := r.db.WithContext(ctx).Where("id IN ?", hexes(ids)).Find(&rows).Error; err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]models.Comment, len(rows))
	for _, row := range rows {
		byID[oid(row.ID)] = row.model()
	}
	comments := make([]models.Comment, 0, len(rows))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			comments = append(comments, c)
		}
	}
	return comments, nil
}

// Delete removes the comment row. The post's comment list is derived from
// the comments table, so the reference goes with it.
func (r *commentRepository) Delete(ctx context.Context, comment *models.Comment) error {
	res := r.db.WithContext(ctx).Where("id = ?", comment.Id.Hex()).Delete(&commentRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
