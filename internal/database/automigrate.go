package database

import (
	"fmt"

	"gorm.io/gorm"

	"workspace-service/internal/domain"
)

// AutoMigrate creates or updates the workspace tables and their indexes
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&domain.PresenceRecord{},
		&domain.WorkspaceItem{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run auto-migration: %w", err)
	}

	return nil
}
