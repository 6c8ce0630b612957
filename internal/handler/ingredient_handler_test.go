package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspace-service/internal/domain"
	"workspace-service/internal/response"
	"workspace-service/internal/service"
)

func setupIngredientRouter(svc service.ItemService) *gin.Engine {
	h := NewIngredientHandler(svc)
	p := NewPreferenceHandler(svc)
	r := gin.New()
	r.GET("/workspaces/:workspaceId/ingredients", h.ListIngredients)
	r.POST("/workspaces/:workspaceId/ingredients", h.AddIngredient)
	r.PUT("/workspaces/:workspaceId/ingredients/:itemId", h.RenameIngredient)
	r.DELETE("/workspaces/:workspaceId/ingredients/:itemId", h.DeleteIngredient)
	r.GET("/workspaces/:workspaceId/preferences", p.ListPreferences)
	r.POST("/workspaces/:workspaceId/preferences", p.TogglePreference)
	return r
}

func TestIngredientHandler_AddIngredient(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		mockService    func(*MockItemService)
		expectedStatus int
	}{
		{
			name: "created",
			body: map[string]string{"session": "s1", "userName": "Chef Sizzle", "name": "garlic"},
			mockService: func(m *MockItemService) {
				m.AddIngredientFunc = func(ctx context.Context, workspaceID, session, userName, name string) (*domain.Ingredient, error) {
					assert.Equal(t, "w1", workspaceID)
					assert.Equal(t, "s1", session)
					assert.Equal(t, "Chef Sizzle", userName)
					return &domain.Ingredient{ID: uuid.NewString(), Name: name, Position: 1, Available: true}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing name",
			body:           map[string]string{"session": "s1"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing session",
			body:           map[string]string{"name": "garlic"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "service validation",
			body: map[string]string{"session": "s1", "name": "   "},
			mockService: func(m *MockItemService) {
				m.AddIngredientFunc = func(ctx context.Context, workspaceID, session, userName, name string) (*domain.Ingredient, error) {
					return nil, response.NewAppError(response.ErrCodeValidation, "Ingredient name is required", "")
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := &MockItemService{}
			if tt.mockService != nil {
				tt.mockService(mockSvc)
			}
			router := setupIngredientRouter(mockSvc)

			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/workspaces/w1/ingredients", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusCreated {
				var ing domain.Ingredient
				require.NoError(t, json.Unmarshal(decodeEnvelope(t, w.Body.Bytes()).Data, &ing))
				assert.Equal(t, "garlic", ing.Name)
				assert.Equal(t, 1, ing.Position)
			}
		})
	}
}

func TestIngredientHandler_ListIngredients(t *testing.T) {
	mockSvc := &MockItemService{
		ListIngredientsFunc: func(ctx context.Context, workspaceID string) ([]*domain.Ingredient, error) {
			return []*domain.Ingredient{
				{ID: "a", Name: "rice", Position: 1},
				{ID: "b", Name: "egg", Position: 2},
			}, nil
		},
	}
	router := setupIngredientRouter(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/workspaces/w1/ingredients", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var list []domain.Ingredient
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w.Body.Bytes()).Data, &list))
	require.Len(t, list, 2)
	assert.Equal(t, "rice", list[0].Name)
	assert.Equal(t, "egg", list[1].Name)
}

func TestIngredientHandler_RenameIngredient(t *testing.T) {
	itemID := uuid.New()

	t.Run("renamed", func(t *testing.T) {
		mockSvc := &MockItemService{
			RenameIngredientFunc: func(ctx context.Context, workspaceID string, id uuid.UUID, name string) (*domain.Ingredient, error) {
				assert.Equal(t, itemID, id)
				return &domain.Ingredient{ID: id.String(), Name: name, Position: 3}, nil
			},
		}
		router := setupIngredientRouter(mockSvc)

		req := httptest.NewRequest(http.MethodPut, "/workspaces/w1/ingredients/"+itemID.String(), bytes.NewBufferString(`{"name":"basil"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var ing domain.Ingredient
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, w.Body.Bytes()).Data, &ing))
		assert.Equal(t, "basil", ing.Name)
	})

	t.Run("invalid id", func(t *testing.T) {
		router := setupIngredientRouter(&MockItemService{})

		req := httptest.NewRequest(http.MethodPut, "/workspaces/w1/ingredients/not-a-uuid", bytes.NewBufferString(`{"name":"basil"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc := &MockItemService{
			RenameIngredientFunc: func(ctx context.Context, workspaceID string, id uuid.UUID, name string) (*domain.Ingredient, error) {
				return nil, response.NewAppError(response.ErrCodeNotFound, "Ingredient not found", "")
			},
		}
		router := setupIngredientRouter(mockSvc)

		req := httptest.NewRequest(http.MethodPut, "/workspaces/w1/ingredients/"+itemID.String(), bytes.NewBufferString(`{"name":"basil"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, response.ErrCodeNotFound, decodeEnvelope(t, w.Body.Bytes()).Error.Code)
	})
}

func TestIngredientHandler_DeleteIngredient(t *testing.T) {
	itemID := uuid.New()
	var deleted uuid.UUID
	mockSvc := &MockItemService{
		DeleteIngredientFunc: func(ctx context.Context, workspaceID string, id uuid.UUID) error {
			deleted = id
			return nil
		},
	}
	router := setupIngredientRouter(mockSvc)

	req := httptest.NewRequest(http.MethodDelete, "/workspaces/w1/ingredients/"+itemID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, itemID, deleted)
}

func TestPreferenceHandler_TogglePreference(t *testing.T) {
	var selected bool
	mockSvc := &MockItemService{
		TogglePreferenceFunc: func(ctx context.Context, workspaceID, session, preferenceType, value string) (bool, error) {
			if value == "Martian" {
				return false, response.NewAppError(response.ErrCodeValidation, "Unknown preference value", "")
			}
			selected = !selected
			return selected, nil
		},
	}
	router := setupIngredientRouter(mockSvc)

	toggle := func(value string) *httptest.ResponseRecorder {
		body := `{"session":"s1","preferenceType":"cuisine","value":"` + value + `"}`
		req := httptest.NewRequest(http.MethodPost, "/workspaces/w1/preferences", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := toggle("Thai")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decodeEnvelope(t, w.Body.Bytes()).Data), `"selected":true`)

	w = toggle("Thai")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decodeEnvelope(t, w.Body.Bytes()).Data), `"selected":false`)

	w = toggle("Martian")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreferenceHandler_ListPreferences(t *testing.T) {
	mockSvc := &MockItemService{
		ListPreferencesFunc: func(ctx context.Context, workspaceID string) ([]*domain.Preference, error) {
			return []*domain.Preference{{ID: "p1", PreferenceType: "cuisine", Value: "Thai", UserSession: "s1"}}, nil
		},
	}
	router := setupIngredientRouter(mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/workspaces/w1/preferences", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var prefs []domain.Preference
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w.Body.Bytes()).Data, &prefs))
	require.Len(t, prefs, 1)
	assert.Equal(t, "Thai", prefs[0].Value)
}
