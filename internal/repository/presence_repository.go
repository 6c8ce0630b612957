package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"workspace-service/internal/domain"
)

// PresenceRepository defines the interface for presence data access
type PresenceRepository interface {
	Upsert(ctx context.Context, record *domain.PresenceRecord) error
	FindOnline(ctx context.Context, workspaceID string, since time.Time) ([]*domain.PresenceRecord, error)
	DeleteStale(ctx context.Context, workspaceID string, before time.Time) (int64, error)
	DeleteStaleAll(ctx context.Context, before time.Time) (int64, error)
	Delete(ctx context.Context, workspaceID, userSession string) (int64, error)
	FindStaleWorkspaces(ctx context.Context, before time.Time) ([]string, error)
}

// presenceRepositoryImpl is the GORM implementation of PresenceRepository
type presenceRepositoryImpl struct {
	db *gorm.DB
}

// NewPresenceRepository creates a new instance of PresenceRepository
func NewPresenceRepository(db *gorm.DB) PresenceRepository {
	return &presenceRepositoryImpl{db: db}
}

// Upsert inserts the record or, on (workspace_id, user_session) conflict,
// refreshes user_name and last_seen. created_at keeps its first value.
func (r *presenceRepositoryImpl) Upsert(ctx context.Context, record *domain.PresenceRecord) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "workspace_id"}, {Name: "user_session"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_name", "last_seen"}),
		}).
		Create(record).Error
}

// FindOnline returns records seen at or after since, oldest join first
func (r *presenceRepositoryImpl) FindOnline(ctx context.Context, workspaceID string, since time.Time) ([]*domain.PresenceRecord, error) {
	var records []*domain.PresenceRecord
	if err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND last_seen >= ?", workspaceID, since).
		Order("created_at ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteStale removes records of one workspace last seen before the cutoff
func (r *presenceRepositoryImpl) DeleteStale(ctx context.Context, workspaceID string, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("workspace_id = ? AND last_seen < ?", workspaceID, before).
		Delete(&domain.PresenceRecord{})
	return result.RowsAffected, result.Error
}

// DeleteStaleAll removes stale records across every workspace
func (r *presenceRepositoryImpl) DeleteStaleAll(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("last_seen < ?", before).
		Delete(&domain.PresenceRecord{})
	return result.RowsAffected, result.Error
}

// Delete removes a single session's record
func (r *presenceRepositoryImpl) Delete(ctx context.Context, workspaceID, userSession string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("workspace_id = ? AND user_session = ?", workspaceID, userSession).
		Delete(&domain.PresenceRecord{})
	return result.RowsAffected, result.Error
}

// FindStaleWorkspaces lists workspaces holding at least one stale record
func (r *presenceRepositoryImpl) FindStaleWorkspaces(ctx context.Context, before time.Time) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&domain.PresenceRecord{}).
		Where("last_seen < ?", before).
		Distinct("workspace_id").
		Order("workspace_id ASC").
		Pluck("workspace_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
