package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ItemType distinguishes the kinds of rows stored in workspace_items
type ItemType string

const (
	ItemTypeIngredient       ItemType = "ingredient"
	ItemTypeUserPreference   ItemType = "user_preference"
	ItemTypeRecipeSuggestion ItemType = "recipe_suggestion"
)

// WorkspaceItem is a shared piece of workspace state. Content holds a
// type-specific JSON document.
type WorkspaceItem struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID   string         `gorm:"type:varchar(128);not null;index:idx_items_workspace_type,priority:1" json:"workspace_id"`
	ItemType      ItemType       `gorm:"type:varchar(32);not null;index:idx_items_workspace_type,priority:2" json:"item_type"`
	Content       datatypes.JSON `json:"content"`
	PositionX     int            `gorm:"not null;default:0" json:"position_x"`
	CreatedBy     string         `gorm:"type:varchar(128)" json:"created_by"`
	CreatedByName string         `gorm:"type:varchar(64)" json:"created_by_name"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
}

func (WorkspaceItem) TableName() string {
	return "workspace_items"
}

func (i *WorkspaceItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// DecodeContent unmarshals Content into v.
func (i *WorkspaceItem) DecodeContent(v interface{}) error {
	if len(i.Content) == 0 {
		return nil
	}
	return json.Unmarshal(i.Content, v)
}

// NewContent marshals v into a JSON column value.
func NewContent(v interface{}) (datatypes.JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

// IngredientContent is the payload of an ingredient item
type IngredientContent struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// PreferenceContent is the payload of a user preference item
type PreferenceContent struct {
	PreferenceType string `json:"preference_type"`
	Value          string `json:"value"`
}

// SuggestionContent is the payload of a stored recipe suggestion
type SuggestionContent struct {
	Recipes                 []Recipe `json:"recipes"`
	GeneratedForIngredients []string `json:"generated_for_ingredients"`
}

// Recipe is one generated recipe.
type Recipe struct {
	Title                string            `json:"title"`
	IngredientsAvailable []string          `json:"ingredients_available"`
	IngredientsMissing   []string          `json:"ingredients_missing"`
	Substitutions        map[string]string `json:"substitutions"`
	Instructions         []string          `json:"instructions"`
	PrepTime             string            `json:"prep_time"`
	Difficulty           string            `json:"difficulty"`
}
