package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"workspace-service/internal/domain"
	"workspace-service/internal/metrics"
	"workspace-service/internal/notify"
	"workspace-service/internal/repository"
	"workspace-service/internal/response"
)

const maxIngredientLength = 100

// ItemService manages ingredients and preferences shared inside a workspace
type ItemService interface {
	AddIngredient(ctx context.Context, workspaceID, session, userName, name string) (*domain.Ingredient, error)
	ListIngredients(ctx context.Context, workspaceID string) ([]*domain.Ingredient, error)
	RenameIngredient(ctx context.Context, workspaceID string, id uuid.UUID, name string) (*domain.Ingredient, error)
	DeleteIngredient(ctx context.Context, workspaceID string, id uuid.UUID) error
	TogglePreference(ctx context.Context, workspaceID, session, preferenceType, value string) (bool, error)
	ListPreferences(ctx context.Context, workspaceID string) ([]*domain.Preference, error)
}

// itemServiceImpl is the implementation of ItemService
type itemServiceImpl struct {
	repo     repository.ItemRepository
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewItemService creates a new instance of ItemService
func NewItemService(repo repository.ItemRepository, notifier notify.Notifier, m *metrics.Metrics, logger *zap.Logger) ItemService {
	return &itemServiceImpl{
		repo:     repo,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
	}
}

// AddIngredient appends an ingredient after the current last position
func (s *itemServiceImpl) AddIngredient(ctx context.Context, workspaceID, session, userName, name string) (*domain.Ingredient, error) {
	if err := validateIDs(workspaceID, session); err != nil {
		return nil, err
	}
	name, err := validateIngredientName(name)
	if err != nil {
		return nil, err
	}

	maxPos, err := s.repo.MaxPosition(ctx, workspaceID, domain.ItemTypeIngredient)
	if err != nil {
		return nil, response.WrapAppError(response.ErrCodeInternal, "Failed to load ingredients", err)
	}

	content, err := domain.NewContent(domain.IngredientContent{Name: name, Available: true})
	if err != nil {
		return nil, response.WrapAppError(response.ErrCodeInternal, "Failed to encode ingredient", err)
	}

	item := &domain.WorkspaceItem{
		WorkspaceID:   workspaceID,
		ItemType:      domain.ItemTypeIngredient,
		Content:       content,
		PositionX:     maxPos + 1,
		CreatedBy:     session,
		CreatedByName: NormalizeName(userName, session),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, response.WrapAppError(response.ErrCodeInternal, "Failed to add ingredient", err)
	}

	s.metrics.IncrementItemCreated(string(domain.ItemTypeIngredient))
	s.logger.Info("Ingredient added",
		zap.String("workspace_id", workspaceID),
		zap.String("item_id", item.ID.String()),
		zap.String("name", name),
	)
	s.publish(ctx, workspaceID, session, notify.EventCreated, domain.ItemTypeIngredient)

	return toIngredient(item)
}

// ListIngredients returns the workspace's ingredients in position order
func (s *itemServiceImpl) ListIngredients(ctx context.Context, workspaceID string) ([]*domain.Ingredient, error) {
	if err := validateWorkspace(workspaceID); err != nil {
		return nil, err
	}

	items, err := s.repo.FindByType(ctx, workspaceID, domain.ItemTypeIngredient)
	if err != nil {
		return nil, response.WrapAppError(response.ErrCodeInternal, "Failed to load ingredients", err)
	}

	ingredients := make([]*domain.Ingredient, 0, len(items))
	for _, item := range items {
		ing, err := toIngredient(item)
		if err != nil {
			s.logger.Warn("Skipping malformed ingredient",
				zap.String("item_id", item.ID.String()),
				zap.Error(err),
			)
			continue
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, nil
}

func (s *itemServiceImpl) RenameIngredient(ctx context.Context, workspaceID string, id uuid.UUID, name string) (*domain.Ingredient, error) {
	if err := validateWorkspace(workspaceID); err != nil {
		return nil, err
	}
	name, err := validateIngredientName(name)
	if err != nil {
		return nil, err
	}

	item, err := s.findIngredient(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}

	content, err := domain.NewContent(domain.IngredientContent{Name: name, Available: true})
	if err != nil {
		return nil, response.WrapAppError(response.ErrCodeInternal, "Failed to encode ingredient", err)
	}
	item.Content = content

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, response.WrapAppError(response.ErrCodeInternal, "Failed to update ingredient", err)
	}
	s.publish(ctx, workspaceID, item.CreatedBy, notify.EventUpdated, domain.ItemTypeIngredient)

	return toIngredient(item)
}

func (s *itemServiceImpl) DeleteIngredient(ctx context.Context, workspaceID string, id uuid.UUID) error {
	if err := validateWorkspace(workspaceID); err != nil {
		return err
	}

	item, err := s.findIngredient(ctx, workspaceID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, workspaceID, item.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewAppError(response.ErrCodeNotFound, "Ingredient not found", "")
		}
		return response.WrapAppError(response.ErrCodeInternal, "Failed to delete ingredient", err)
	}
	s.publish(ctx, workspaceID, item.CreatedBy, notify.EventDeleted, domain.ItemTypeIngredient)
	return nil
}

// TogglePreference adds the preference if the session lacks it and removes it
// otherwise. It reports whether the preference is selected afterwards.
func (s *itemServiceImpl) TogglePreference(ctx context.Context, workspaceID, session, preferenceType, value string) (bool, error) {
	if err := validateIDs(workspaceID, session); err != nil {
		return false, err
	}
	if !domain.IsValidPreference(preferenceType, value) {
		return false, response.NewAppError(response.ErrCodeValidation, "Invalid preference", preferenceType+"="+value)
	}

	existing, err := s.repo.FindPreference(ctx, workspaceID, session, preferenceType, value)
	if err != nil {
		return false, response.WrapAppError(response.ErrCodeInternal, "Failed to load preference", err)
	}

	if existing != nil {
		if err := s.repo.Delete(ctx, workspaceID, existing.ID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, response.WrapAppError(response.ErrCodeInternal, "Failed to remove preference", err)
		}
		s.publish(ctx, workspaceID, session, notify.EventDeleted, domain.ItemTypeUserPreference)
		return false, nil
	}

	content, err := domain.NewContent(domain.PreferenceContent{PreferenceType: preferenceType, Value: value})
	if err != nil {
		return false, response.WrapAppError(response.ErrCodeInternal, "Failed to encode preference", err)
	}
	item := &domain.WorkspaceItem{
		WorkspaceID: workspaceID,
		ItemType:    domain.ItemTypeUserPreference,
		Content:     content,
		CreatedBy:   session,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return false, response.WrapAppError(response.ErrCodeInternal, "Failed to add preference", err)
	}
	s.metrics.IncrementItemCreated(string(domain.ItemTypeUserPreference))
	s.publish(ctx, workspaceID, session, notify.EventCreated, domain.ItemTypeUserPreference)
	return true, nil
}

// ListPreferences returns every session's preferences in the workspace
func (s *itemServiceImpl) ListPreferences(ctx context.Context, workspaceID string) ([]*domain.Preference, error) {
	if err := validateWorkspace(workspaceID); err != nil {
		return nil, err
	}

	items, err := s.repo.FindByType(ctx, workspaceID, domain.ItemTypeUserPreference)
	if err != nil {
		return nil, response.WrapAppError(response.ErrCodeInternal, "Failed to load preferences", err)
	}

	prefs := make([]*domain.Preference, 0, len(items))
	for _, item := range items {
		var c domain.PreferenceContent
		if err := item.DecodeContent(&c); err != nil {
			continue
		}
		prefs = append(prefs, &domain.Preference{
			ID:             item.ID.String(),
			PreferenceType: c.PreferenceType,
			Value:          c.Value,
			UserSession:    item.CreatedBy,
		})
	}
	return prefs, nil
}

func (s *itemServiceImpl) findIngredient(ctx context.Context, workspaceID string, id uuid.UUID) (*domain.WorkspaceItem, error) {
	item, err := s.repo.FindByID(ctx, workspaceID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Ingredient not found", "")
		}
		return nil, response.WrapAppError(response.ErrCodeInternal, "Failed to load ingredient", err)
	}
	if item.ItemType != domain.ItemTypeIngredient {
		return nil, response.NewAppError(response.ErrCodeNotFound, "Ingredient not found", "")
	}
	return item, nil
}

func (s *itemServiceImpl) publish(ctx context.Context, workspaceID, session, eventType string, itemType domain.ItemType) {
	err := s.notifier.Publish(ctx, notify.Event{
		Topic:       notify.TopicItems,
		Type:        eventType,
		WorkspaceID: workspaceID,
		Session:     session,
		ItemType:    string(itemType),
	})
	s.metrics.RecordNotifierEvent(notify.TopicItems, eventType, err)
	if err != nil {
		s.logger.Warn("Failed to publish item event",
			zap.String("workspace_id", workspaceID),
			zap.String("type", eventType),
			zap.Error(err),
		)
	}
}

func validateIngredientName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", response.NewAppError(response.ErrCodeValidation, "Ingredient name is required", "")
	}
	if utf8.RuneCountInString(name) > maxIngredientLength {
		return "", response.NewAppError(response.ErrCodeValidation, "Ingredient name is too long", "")
	}
	return name, nil
}

func toIngredient(item *domain.WorkspaceItem) (*domain.Ingredient, error) {
	var c domain.IngredientContent
	if err := item.DecodeContent(&c); err != nil {
		return nil, err
	}
	return &domain.Ingredient{
		ID:            item.ID.String(),
		Name:          c.Name,
		Position:      item.PositionX,
		Available:     c.Available,
		CreatedBy:     item.CreatedBy,
		CreatedByName: item.CreatedByName,
	}, nil
}
