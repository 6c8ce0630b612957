package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"workspace-service/internal/client"
	"workspace-service/internal/domain"
	"workspace-service/internal/metrics"
	"workspace-service/internal/notify"
	"workspace-service/internal/repository"
	"workspace-service/internal/response"
)

var (
	ErrNoIngredients     = errors.New("workspace has no ingredients")
	ErrInvalidCompletion = errors.New("completion did not contain recipes")
)

const noIngredientsMessage = "No ingredients found. Please add some ingredients first."

const promptTemplate = `You are a professional chef and meal planning expert. I need you to create 3 creative, delicious recipes using the ingredients I have available. Please be creative and think outside the box while keeping recipes practical.

Available Ingredients: %s

Requirements:
- Maximize use of available ingredients (aim to use at least 60%% of listed ingredients per recipe)
- Suggest creative combinations and cooking techniques
- Provide practical substitutions for missing ingredients
- Include recipes of varying complexity and meal types
- Consider different cuisines and flavor profiles

For each recipe, provide:
1. An appealing recipe title that hints at the flavor profile
2. List of ingredients that ARE available from my provided ingredients
3. List of ingredients that are MISSING and need to be purchased (keep this minimal)
4. Practical substitutions for missing ingredients using common pantry items
5. Clear, numbered step-by-step instructions
6. Realistic prep + cook time
7. Difficulty level (Easy/Medium/Hard)
8. Brief description of the dish and why it's delicious
%s
Please respond ONLY with valid JSON in this exact format:
{
  "recipes": [
    {
      "title": "Recipe Name",
      "ingredients_available": ["ingredient1", "ingredient2"],
      "ingredients_missing": ["ingredient3", "ingredient4"],
      "substitutions": {
        "ingredient3": "alternative ingredient",
        "ingredient4": "another alternative"
      },
      "instructions": ["Step 1", "Step 2", "Step 3"],
      "prep_time": "30 minutes",
      "difficulty": "Easy"
    }
  ]
}`

// RecipeService generates and stores recipe suggestions
type RecipeService interface {
	Suggest(ctx context.Context, workspaceID, session string) (*domain.SuggestionContent, error)
	Latest(ctx context.Context, workspaceID string) (*domain.SuggestionContent, error)
}

// recipeServiceImpl is the implementation of RecipeService
type recipeServiceImpl struct {
	repo      repository.ItemRepository
	generator client.TextGenerator
	notifier  notify.Notifier
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewRecipeService creates a new instance of RecipeService
func NewRecipeService(
	repo repository.ItemRepository,
	generator client.TextGenerator,
	notifier notify.Notifier,
	m *metrics.Metrics,
	logger *zap.Logger,
) RecipeService {
	return &recipeServiceImpl{
		repo:      repo,
		generator: generator,
		notifier:  notifier,
		metrics:   m,
		logger:    logger,
	}
}

// Suggest builds a prompt from the workspace's ingredients and preferences,
// asks the generator for recipes and stores the result.
func (s *recipeServiceImpl) Suggest(ctx context.Context, workspaceID, session string) (*domain.SuggestionContent, error) {
	if err := validateWorkspace(workspaceID); err != nil {
		return nil, err
	}

	items, err := s.repo.FindByType(ctx, workspaceID, domain.ItemTypeIngredient)
	if err != nil {
		return nil, response.WrapAppError(response.ErrCodeInternal, "Failed to fetch workspace data", err)
	}

	ingredients := make([]string, 0, len(items))
	for _, item := range items {
		var c domain.IngredientContent
		if err := item.DecodeContent(&c); err != nil || c.Name == "" {
			continue
		}
		ingredients = append(ingredients, c.Name)
	}
	if len(ingredients) == 0 {
		s.metrics.RecordRecipeSuggestion("no_ingredients")
		return nil, response.WrapAppError(response.ErrCodeValidation, noIngredientsMessage, ErrNoIngredients)
	}

	prefItems, err := s.repo.FindByType(ctx, workspaceID, domain.ItemTypeUserPreference)
	if err != nil {
		s.logger.Warn("Failed to load preferences for prompt", zap.Error(err))
		prefItems = nil
	}

	prompt := BuildPrompt(ingredients, preferenceValues(prefItems))

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.metrics.RecordRecipeSuggestion("upstream_error")
		s.logger.Error("Recipe generation failed",
			zap.String("workspace_id", workspaceID),
			zap.Error(err),
		)
		return nil, response.WrapAppError(response.ErrCodeUpstream, "Failed to generate recipes", err)
	}

	recipes, err := ParseRecipes(text)
	if err != nil {
		s.metrics.RecordRecipeSuggestion("invalid_response")
		s.logger.Error("Invalid recipe completion",
			zap.String("workspace_id", workspaceID),
			zap.Int("text_length", len(text)),
			zap.Error(err),
		)
		return nil, response.WrapAppError(response.ErrCodeUpstream, "Failed to generate recipes", err)
	}

	suggestion := &domain.SuggestionContent{
		Recipes:                 recipes,
		GeneratedForIngredients: ingredients,
	}
	content, err := domain.NewContent(suggestion)
	if err != nil {
		return nil, response.WrapAppError(response.ErrCodeInternal, "Failed to encode suggestions", err)
	}

	item := &domain.WorkspaceItem{
		WorkspaceID: workspaceID,
		ItemType:    domain.ItemTypeRecipeSuggestion,
		Content:     content,
		CreatedBy:   session,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		s.metrics.RecordRecipeSuggestion("store_error")
		return nil, response.WrapAppError(response.ErrCodeInternal, "Failed to store suggestions", err)
	}

	s.metrics.RecordRecipeSuggestion("success")
	s.metrics.IncrementItemCreated(string(domain.ItemTypeRecipeSuggestion))
	s.logger.Info("Recipe suggestions stored",
		zap.String("workspace_id", workspaceID),
		zap.Int("recipes", len(recipes)),
		zap.Int("ingredients", len(ingredients)),
	)

	err = s.notifier.Publish(ctx, notify.Event{
		Topic:       notify.TopicItems,
		Type:        notify.EventCreated,
		WorkspaceID: workspaceID,
		Session:     session,
		ItemType:    string(domain.ItemTypeRecipeSuggestion),
	})
	s.metrics.RecordNotifierEvent(notify.TopicItems, notify.EventCreated, err)
	if err != nil {
		s.logger.Warn("Failed to publish suggestion event", zap.Error(err))
	}

	return suggestion, nil
}

// Latest returns the newest stored suggestion, or nil when none exists
func (s *recipeServiceImpl) Latest(ctx context.Context, workspaceID string) (*domain.SuggestionContent, error) {
	if err := validateWorkspace(workspaceID); err != nil {
		return nil, err
	}

	item, err := s.repo.FindLatestByType(ctx, workspaceID, domain.ItemTypeRecipeSuggestion)
	if err != nil {
		return nil, response.WrapAppError(response.ErrCodeInternal, "Failed to load suggestions", err)
	}
	if item == nil {
		return nil, nil
	}

	var suggestion domain.SuggestionContent
	if err := item.DecodeContent(&suggestion); err != nil {
		return nil, response.WrapAppError(response.ErrCodeInternal, "Stored suggestion is malformed", err)
	}
	return &suggestion, nil
}

// BuildPrompt renders the chef prompt. Preferences, when present, are listed
// as soft guidance.
func BuildPrompt(ingredients []string, preferences []string) string {
	prefs := ""
	if len(preferences) > 0 {
		prefs = "\nThe cooks in this kitchen prefer: " + strings.Join(preferences, ", ") + "\n"
	}
	return fmt.Sprintf(promptTemplate, strings.Join(ingredients, ", "), prefs)
}

// ParseRecipes extracts the recipes array from a completion. Text around the
// outermost JSON object, such as a markdown fence, is ignored.
func ParseRecipes(text string) ([]domain.Recipe, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, ErrInvalidCompletion
	}

	var parsed struct {
		Recipes []domain.Recipe `json:"recipes"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCompletion, err)
	}
	if parsed.Recipes == nil {
		return nil, ErrInvalidCompletion
	}
	return parsed.Recipes, nil
}

// preferenceValues returns distinct "type: value" labels in stored order
func preferenceValues(items []*domain.WorkspaceItem) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		var c domain.PreferenceContent
		if err := item.DecodeContent(&c); err != nil || c.Value == "" {
			continue
		}
		label := strings.ReplaceAll(c.PreferenceType, "_", " ") + ": " + c.Value
		if !seen[label] {
			seen[label] = true
			out = append(out, label)
		}
	}
	return out
}
