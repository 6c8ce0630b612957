package handler

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"workspace-service/internal/domain"
	"workspace-service/internal/notify"
	"workspace-service/internal/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockPresenceService is a mock implementation of PresenceService
type MockPresenceService struct {
	HeartbeatFunc  func(ctx context.Context, workspaceID, session, userName string) error
	ListOnlineFunc func(ctx context.Context, workspaceID string) ([]domain.OnlineUser, error)
	ReapFunc       func(ctx context.Context, workspaceID string) (int64, error)
	ReapAllFunc    func(ctx context.Context) (int64, error)
	RemoveFunc     func(ctx context.Context, workspaceID, session string) error
	SubscribeFunc  func(ctx context.Context, workspaceID string, handler notify.Handler) (notify.Unsubscribe, error)
}

func (m *MockPresenceService) Heartbeat(ctx context.Context, workspaceID, session, userName string) error {
	if m.HeartbeatFunc != nil {
		return m.HeartbeatFunc(ctx, workspaceID, session, userName)
	}
	return nil
}

func (m *MockPresenceService) ListOnline(ctx context.Context, workspaceID string) ([]domain.OnlineUser, error) {
	if m.ListOnlineFunc != nil {
		return m.ListOnlineFunc(ctx, workspaceID)
	}
	return nil, nil
}

func (m *MockPresenceService) Reap(ctx context.Context, workspaceID string) (int64, error) {
	if m.ReapFunc != nil {
		return m.ReapFunc(ctx, workspaceID)
	}
	return 0, nil
}

func (m *MockPresenceService) ReapAll(ctx context.Context) (int64, error) {
	if m.ReapAllFunc != nil {
		return m.ReapAllFunc(ctx)
	}
	return 0, nil
}

func (m *MockPresenceService) Remove(ctx context.Context, workspaceID, session string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, workspaceID, session)
	}
	return nil
}

func (m *MockPresenceService) Subscribe(ctx context.Context, workspaceID string, handler notify.Handler) (notify.Unsubscribe, error) {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx, workspaceID, handler)
	}
	return func() {}, nil
}

// MockItemService is a mock implementation of ItemService
type MockItemService struct {
	AddIngredientFunc    func(ctx context.Context, workspaceID, session, userName, name string) (*domain.Ingredient, error)
	ListIngredientsFunc  func(ctx context.Context, workspaceID string) ([]*domain.Ingredient, error)
	RenameIngredientFunc func(ctx context.Context, workspaceID string, id uuid.UUID, name string) (*domain.Ingredient, error)
	DeleteIngredientFunc func(ctx context.Context, workspaceID string, id uuid.UUID) error
	TogglePreferenceFunc func(ctx context.Context, workspaceID, session, preferenceType, value string) (bool, error)
	ListPreferencesFunc  func(ctx context.Context, workspaceID string) ([]*domain.Preference, error)
}

func (m *MockItemService) AddIngredient(ctx context.Context, workspaceID, session, userName, name string) (*domain.Ingredient, error) {
	if m.AddIngredientFunc != nil {
		return m.AddIngredientFunc(ctx, workspaceID, session, userName, name)
	}
	return &domain.Ingredient{}, nil
}

func (m *MockItemService) ListIngredients(ctx context.Context, workspaceID string) ([]*domain.Ingredient, error) {
	if m.ListIngredientsFunc != nil {
		return m.ListIngredientsFunc(ctx, workspaceID)
	}
	return nil, nil
}

func (m *MockItemService) RenameIngredient(ctx context.Context, workspaceID string, id uuid.UUID, name string) (*domain.Ingredient, error) {
	if m.RenameIngredientFunc != nil {
		return m.RenameIngredientFunc(ctx, workspaceID, id, name)
	}
	return &domain.Ingredient{}, nil
}

func (m *MockItemService) DeleteIngredient(ctx context.Context, workspaceID string, id uuid.UUID) error {
	if m.DeleteIngredientFunc != nil {
		return m.DeleteIngredientFunc(ctx, workspaceID, id)
	}
	return nil
}

func (m *MockItemService) TogglePreference(ctx context.Context, workspaceID, session, preferenceType, value string) (bool, error) {
	if m.TogglePreferenceFunc != nil {
		return m.TogglePreferenceFunc(ctx, workspaceID, session, preferenceType, value)
	}
	return false, nil
}

func (m *MockItemService) ListPreferences(ctx context.Context, workspaceID string) ([]*domain.Preference, error) {
	if m.ListPreferencesFunc != nil {
		return m.ListPreferencesFunc(ctx, workspaceID)
	}
	return nil, nil
}

// MockRecipeService is a mock implementation of RecipeService
type MockRecipeService struct {
	SuggestFunc func(ctx context.Context, workspaceID, session string) (*domain.SuggestionContent, error)
	LatestFunc  func(ctx context.Context, workspaceID string) (*domain.SuggestionContent, error)
}

func (m *MockRecipeService) Suggest(ctx context.Context, workspaceID, session string) (*domain.SuggestionContent, error) {
	if m.SuggestFunc != nil {
		return m.SuggestFunc(ctx, workspaceID, session)
	}
	return &domain.SuggestionContent{}, nil
}

func (m *MockRecipeService) Latest(ctx context.Context, workspaceID string) (*domain.SuggestionContent, error) {
	if m.LatestFunc != nil {
		return m.LatestFunc(ctx, workspaceID)
	}
	return nil, nil
}

// MockWorkspaceService is a mock implementation of WorkspaceService
type MockWorkspaceService struct {
	CreateFunc   func() (*domain.WorkspaceInfo, error)
	DescribeFunc func(workspaceID string) (*domain.WorkspaceInfo, error)
}

func (m *MockWorkspaceService) Create() (*domain.WorkspaceInfo, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc()
	}
	return &domain.WorkspaceInfo{}, nil
}

func (m *MockWorkspaceService) Describe(workspaceID string) (*domain.WorkspaceInfo, error) {
	if m.DescribeFunc != nil {
		return m.DescribeFunc(workspaceID)
	}
	return &domain.WorkspaceInfo{ID: workspaceID}, nil
}

// envelope mirrors the success envelope with raw data
type envelope struct {
	Success bool               `json:"success"`
	Data    json.RawMessage    `json:"data"`
	Error   response.ErrorBody `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}
