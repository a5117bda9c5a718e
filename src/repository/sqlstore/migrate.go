package sqlstore

import (
	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table the store uses.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userRow{},
		&followRow{},
		&bookmarkRow{},
		&postRow{},
		&likeRow{},
		&commentRow{},
	)
}
