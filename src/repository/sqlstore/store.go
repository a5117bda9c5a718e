// Package sqlstore implements the repository contracts on SQLite through GORM.
// Relationship sets are rows with unique pair indexes, and every toggle runs
// in a transaction that deletes the row if present and inserts it otherwise.
package sqlstore

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/theleywin/friendlynk/src/repository"
)

// New builds a repository backed by db. Tables must already exist.
func New(db *gorm.DB, logger *zap.Logger) *repository.Repository {
	return repository.New(
		&userRepository{db: db, logger: logger},
		&postRepository{db: db, logger: logger},
		&commentRepository{db: db, logger: logger},
		func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	return err
}

func duplicateError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed: users.email"):
		return repository.ErrDuplicateEmail
	case strings.Contains(msg, "UNIQUE constraint failed: users.username"):
		return repository.ErrDuplicateUsername
	}
	return err
}

// mustExist returns ErrNotFound unless table has a row with id.
func mustExist(tx *gorm.DB, table, id string) error {
	var n int64
	if err := tx.Table(table).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching q anywhere. Columns are
// compared through unicode_lower, which folds the same way as strings.ToLower.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
}
