package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"workspace-service/internal/domain"
)

// ItemRepository defines the interface for workspace item data access
type ItemRepository interface {
	Create(ctx context.Context, item *domain.WorkspaceItem) error
	FindByID(ctx context.Context, workspaceID string, id uuid.UUID) (*domain.WorkspaceItem, error)
	FindByType(ctx context.Context, workspaceID string, itemType domain.ItemType) ([]*domain.WorkspaceItem, error)
	FindLatestByType(ctx context.Context, workspaceID string, itemType domain.ItemType) (*domain.WorkspaceItem, error)
	FindPreference(ctx context.Context, workspaceID, userSession, preferenceType, value string) (*domain.WorkspaceItem, error)
	MaxPosition(ctx context.Context, workspaceID string, itemType domain.ItemType) (int, error)
	Update(ctx context.Context, item *domain.WorkspaceItem) error
	Delete(ctx context.Context, workspaceID string, id uuid.UUID) error
}

// itemRepositoryImpl is the GORM implementation of ItemRepository
type itemRepositoryImpl struct {
	db *gorm.DB
}

// NewItemRepository creates a new instance of ItemRepository
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepositoryImpl{db: db}
}

// Create creates a new workspace item
func (r *itemRepositoryImpl) Create(ctx context.Context, item *domain.WorkspaceItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return err
	}
	return nil
}

// FindByID finds an item inside a workspace
func (r *itemRepositoryImpl) FindByID(ctx context.Context, workspaceID string, id uuid.UUID) (*domain.WorkspaceItem, error) {
	var item domain.WorkspaceItem
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByType lists items of one type ordered by position
func (r *itemRepositoryImpl) FindByType(ctx context.Context, workspaceID string, itemType domain.ItemType) ([]*domain.WorkspaceItem, error) {
	var items []*domain.WorkspaceItem
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND item_type = ?", workspaceID, itemType).
		Order("position_x ASC, created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindLatestByType returns the newest item of a type, or nil when none exists
func (r *itemRepositoryImpl) FindLatestByType(ctx context.Context, workspaceID string, itemType domain.ItemType) (*domain.WorkspaceItem, error) {
	var item domain.WorkspaceItem
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND item_type = ?", workspaceID, itemType).
		Order("created_at DESC").
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// FindPreference finds a session's preference by type and value, or nil
func (r *itemRepositoryImpl) FindPreference(ctx context.Context, workspaceID, userSession, preferenceType, value string) (*domain.WorkspaceItem, error) {
	var item domain.WorkspaceItem
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND item_type = ? AND created_by = ?", workspaceID, domain.ItemTypeUserPreference, userSession).
		Where(datatypes.JSONQuery("content").Equals(preferenceType, "preference_type")).
		Where(datatypes.JSONQuery("content").Equals(value, "value")).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// MaxPosition returns the highest position_x for a type, 0 when empty
func (r *itemRepositoryImpl) MaxPosition(ctx context.Context, workspaceID string, itemType domain.ItemType) (int, error) {
	var maxPos int
	if err := r.db.WithContext(ctx).
		Model(&domain.WorkspaceItem{}).
		Where("workspace_id = ? AND item_type = ?", workspaceID, itemType).
		Select("COALESCE(MAX(position_x), 0)").
		Scan(&maxPos).Error; err != nil {
		return 0, err
	}
	return maxPos, nil
}

// Update saves an item
func (r *itemRepositoryImpl) Update(ctx context.Context, item *domain.WorkspaceItem) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return err
	}
	return nil
}

// Delete removes an item; gorm.ErrRecordNotFound when nothing matched
func (r *itemRepositoryImpl) Delete(ctx context.Context, workspaceID string, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		Delete(&domain.WorkspaceItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
