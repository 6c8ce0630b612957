package dto

// AddIngredientRequest adds one ingredient on behalf of a session
type AddIngredientRequest struct {
	Session  string `json:"session" binding:"required,max=128" example:"3f2b8c1e-9a4d-4e57-b1a0-7c6d5e4f3a2b"`
	UserName string `json:"userName" binding:"max=256" example:"Chef Sizzle"`
	Name     string `json:"name" binding:"required" example:"tomato"`
}

// RenameIngredientRequest replaces an ingredient's name
type RenameIngredientRequest struct {
	Name string `json:"name" binding:"required" example:"cherry tomato"`
}

// TogglePreferenceRequest selects or deselects one preference value
// @Description preferenceType is one of cuisine, dish_type or dietary
type TogglePreferenceRequest struct {
	Session        string `json:"session" binding:"required,max=128" example:"3f2b8c1e-9a4d-4e57-b1a0-7c6d5e4f3a2b"`
	PreferenceType string `json:"preferenceType" binding:"required" example:"cuisine"`
	Value          string `json:"value" binding:"required" example:"Thai"`
}

// TogglePreferenceResponse reports whether the value is selected afterwards
type TogglePreferenceResponse struct {
	PreferenceType string `json:"preference_type" example:"cuisine"`
	Value          string `json:"value" example:"Thai"`
	Selected       bool   `json:"selected" example:"true"`
}

// SuggestRecipesRequest asks for recipes built from the workspace's ingredients
type SuggestRecipesRequest struct {
	Session string `json:"session" binding:"max=128" example:"3f2b8c1e-9a4d-4e57-b1a0-7c6d5e4f3a2b"`
}
