package domain

// Preference types a session can toggle.
const (
	PreferenceCuisine  = "cuisine"
	PreferenceDishType = "dish_type"
	PreferenceDietary  = "dietary"
)

var preferenceOptions = map[string][]string{
	PreferenceCuisine: {
		"Italian", "Asian", "Mexican", "Indian", "Mediterranean",
		"American", "French", "Thai", "Japanese", "Chinese",
	},
	PreferenceDishType: {
		"Curry", "Rice dish", "Pasta dish", "Soup", "Salad",
		"Stir-fry", "Sandwich", "Pizza", "Dessert", "Breakfast",
	},
	PreferenceDietary: {
		"Vegetarian", "Vegan", "Gluten-free", "Low-carb",
		"High-protein", "Dairy-free", "Keto", "Paleo",
	},
}

// PreferenceOptions returns the selectable values for a preference type,
// or nil when the type is unknown.
func PreferenceOptions(preferenceType string) []string {
	opts, ok := preferenceOptions[preferenceType]
	if !ok {
		return nil
	}
	return append([]string(nil), opts...)
}

// IsValidPreference reports whether value is selectable for preferenceType.
func IsValidPreference(preferenceType, value string) bool {
	for _, v := range preferenceOptions[preferenceType] {
		if v == value {
			return true
		}
	}
	return false
}

// Preference is the read view of a user_preference item
type Preference struct {
	ID             string `json:"id"`
	PreferenceType string `json:"preference_type"`
	Value          string `json:"value"`
	UserSession    string `json:"user_session"`
}

// Ingredient is the read view of an ingredient item
type Ingredient struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Position      int    `json:"position"`
	Available     bool   `json:"available"`
	CreatedBy     string `json:"created_by,omitempty"`
	CreatedByName string `json:"created_by_name,omitempty"`
}
