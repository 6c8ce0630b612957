package client

import (
	"context"
	"encoding/json"

	"workspace-service/internal/domain"
)

// mockTextGenerator answers every prompt with the same three recipes
type mockTextGenerator struct{}

func NewMockTextGenerator() TextGenerator {
	return mockTextGenerator{}
}

func (mockTextGenerator) Generate(_ context.Context, _ string) (string, error) {
	data, err := json.Marshal(struct {
		Recipes []domain.Recipe `json:"recipes"`
	}{Recipes: MockRecipes()})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// MockRecipes returns the canned development recipes
func MockRecipes() []domain.Recipe {
	return []domain.Recipe{
		{
			Title:                "Mediterranean Pasta Delight",
			IngredientsAvailable: []string{"pasta", "garlic", "olive oil"},
			IngredientsMissing:   []string{"cherry tomatoes", "fresh basil", "parmesan"},
			Substitutions: map[string]string{
				"cherry tomatoes": "canned diced tomatoes or tomato paste",
				"fresh basil":     "dried basil or oregano",
				"parmesan":        "any hard cheese or nutritional yeast",
			},
			Instructions: []string{
				"Cook pasta according to package instructions until al dente",
				"Heat olive oil in a large pan over medium heat",
				"Add minced garlic and sauté until fragrant (about 1 minute)",
				"Add tomatoes and cook for 3-4 minutes",
				"Toss cooked pasta with the garlic oil mixture",
				"Add cheese and herbs, season with salt and pepper",
				"Serve immediately while hot",
			},
			PrepTime:   "20 minutes",
			Difficulty: "Easy",
		},
		{
			Title:                "Asian-Inspired Veggie Bowl",
			IngredientsAvailable: []string{"vegetables", "oil", "garlic"},
			IngredientsMissing:   []string{"soy sauce", "sesame oil", "rice"},
			Substitutions: map[string]string{
				"soy sauce":  "salt with a splash of vinegar or worcestershire",
				"sesame oil": "any cooking oil with a pinch of toasted seeds",
				"rice":       "pasta, bread, or quinoa as base",
			},
			Instructions: []string{
				"Heat oil in a wok or large skillet over high heat",
				"Add minced garlic and stir-fry for 30 seconds",
				"Add harder vegetables first, then softer ones",
				"Stir-fry for 3-5 minutes until tender-crisp",
				"Season with available seasonings",
				"Serve over your chosen base",
				"Garnish with any available herbs or nuts",
			},
			PrepTime:   "15 minutes",
			Difficulty: "Easy",
		},
		{
			Title:                "Hearty Comfort Soup",
			IngredientsAvailable: []string{"vegetables", "oil"},
			IngredientsMissing:   []string{"broth", "herbs", "protein"},
			Substitutions: map[string]string{
				"broth":   "water with bouillon cube or salt",
				"herbs":   "any available spices or dried herbs",
				"protein": "beans, lentils, eggs, or cheese if available",
			},
			Instructions: []string{
				"Heat oil in a large pot over medium heat",
				"Chop all vegetables into bite-sized pieces",
				"Sauté harder vegetables first for 5 minutes",
				"Add softer vegetables and cook 2 more minutes",
				"Add liquid to cover vegetables by 2 inches",
				"Bring to boil, then simmer 15-20 minutes",
				"Season to taste and add protein if desired",
				"Simmer 5 more minutes and serve hot",
			},
			PrepTime:   "35 minutes",
			Difficulty: "Easy",
		},
	}
}
