package db

import (
	"fmt"

	"github.com/morgan8889/design-flow/internal/models"
	"gorm.io/gorm"
)

// AllModels returns every GORM model in migration order (parents first so
// foreign key constraints resolve).
func AllModels() []interface{} {
	return []interface{}{
		&models.Project{},
		&models.Plan{},
		&models.AttentionItem{},
		&models.PullRequest{},
		&models.Setting{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}
